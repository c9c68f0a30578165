package profiling

import (
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

// PathPrefix is where the pprof endpoints are mounted.
const PathPrefix = "/debug/pprof"

var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Register mounts the Go pprof endpoints on g. The caller decides which
// middleware (if any) guards them.
func Register(g *echo.Group) {
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	for _, name := range namedProfiles {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
