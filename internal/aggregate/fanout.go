package aggregate

import (
	"context"
	"fmt"

	"erp-bff/internal/proxy"
	apperrors "erp-bff/pkg/errors"

	"golang.org/x/sync/errgroup"
)

const (
	msgBranchStatusFmt    = "%s service returned status %d"
	msgBranchMalformedFmt = "%s service returned a malformed response"
)

// Branch is one leg of a fan-out. Decode receives the 2xx body.
type Branch struct {
	Call   proxy.Call
	Decode func(body []byte) error
}

// Fetcher performs a single outbound call.
type Fetcher interface {
	Do(ctx context.Context, call proxy.Call) (*proxy.Result, error)
}

// FanOut issues every branch concurrently and waits for all of them. The
// first failure cancels the remaining calls and is returned; no partial
// result is ever produced.
func FanOut(ctx context.Context, fetcher Fetcher, branches ...Branch) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, b := range branches {
		b := b
		g.Go(func() error {
			return runBranch(gctx, fetcher, b)
		})
	}

	return g.Wait()
}

func runBranch(ctx context.Context, fetcher Fetcher, b Branch) error {
	service := string(b.Call.Service)

	result, err := fetcher.Do(ctx, b.Call)
	if err != nil {
		return err
	}

	if !result.OK() {
		return apperrors.ServiceUnavailable(fmt.Sprintf(msgBranchStatusFmt, service, result.Status), apperrors.ErrBackend).
			WithDetails(service)
	}

	if err := b.Decode(result.Body); err != nil {
		return apperrors.ServiceUnavailable(fmt.Sprintf(msgBranchMalformedFmt, service), err).
			WithDetails(service)
	}

	return nil
}
