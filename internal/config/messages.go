package config

import "fmt"

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
	errInvalidBaseURLFmt    = "%s must be an absolute http(s) URL, got %q"
	errInvalidValueFmt      = "%s must be %s, got %q"

	wantInteger  = "an integer"
	wantBool     = "a boolean"
	wantDuration = "a duration (e.g. 30s) or a number of minutes"
)

type messageBuilders struct {
	requiredEnvNotSet func(string) string
	invalidBaseURL    func(string, string) string
	invalidValue      func(string, string, string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		invalidBaseURL: func(key, value string) string {
			return fmt.Sprintf(errInvalidBaseURLFmt, key, value)
		},
		invalidValue: func(key, value, want string) string {
			return fmt.Sprintf(errInvalidValueFmt, key, want, value)
		},
	}
}

var messages = newMessageBuilders()
