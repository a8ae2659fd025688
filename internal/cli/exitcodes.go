package cli

import (
	"errors"

	"github.com/kbukum/netfoundation/httpclient"
)

// Exit codes for nfetch.
const (
	ExitSuccess = 0
	// ExitFailure covers everything without a more specific code.
	ExitFailure = 1
	// ExitDescriptorError means the descriptor could not be read or is invalid.
	ExitDescriptorError = 2
	// ExitConfigError means the configuration could not be loaded.
	ExitConfigError = 3
	// ExitNetworkError means no response was received.
	ExitNetworkError = 4
	// ExitClientError means the server answered 4xx.
	ExitClientError = 5
	// ExitServerError means the server answered 5xx or an unexpected status.
	ExitServerError = 6
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch httpclient.KindOf(err) {
	case httpclient.KindHost, httpclient.KindMissingURL:
		return ExitDescriptorError
	case httpclient.KindNetwork:
		return ExitNetworkError
	case httpclient.KindClientData, httpclient.KindClientModel:
		return ExitClientError
	case httpclient.KindServer, httpclient.KindUnexpectedStatus:
		return ExitServerError
	default:
		return ExitFailure
	}
}
