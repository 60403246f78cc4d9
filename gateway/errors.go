package gateway

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/go-routeros/routeros/v3"
)

var (
	// ErrConnectTimeout means the router did not accept a connection within
	// the connect budget. It is reported differently from a credentials
	// problem so the operator knows to check the network path first.
	ErrConnectTimeout = errors.New("router connection timed out")

	ErrCredentialsRejected = errors.New("router rejected the API credentials")

	ErrUnreachable = errors.New("router unreachable")
)

// RemoteError carries a failure reported by the router that is neither an
// authentication nor a network problem. Raw is meant for logs only.
type RemoteError struct {
	Command string
	Raw     string
}

func (e *RemoteError) Error() string {
	if e.Command == "" {
		return "router error: " + e.Raw
	}
	return fmt.Sprintf("router error on %s: %s", e.Command, e.Raw)
}

var authMarkers = []string{
	"cannot log in",
	"invalid user name or password",
	"invalid password",
	"not logged in",
}

var networkMarkers = []string{
	"connection refused",
	"no route to host",
	"network is unreachable",
	"host is down",
	"no such host",
	"connection reset",
	"broken pipe",
}

// Classify maps an error from the RouterOS client onto the gateway's error
// kinds. Already classified errors and nil pass through unchanged.
func Classify(command string, err error) error {
	if err == nil || isClassified(err) {
		return err
	}

	msg := err.Error()
	var devErr *routeros.DeviceError
	if errors.As(err, &devErr) && devErr.Sentence != nil {
		if m, ok := devErr.Sentence.Map["message"]; ok {
			msg = m
		}
	}

	lower := strings.ToLower(msg)
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", ErrCredentialsRejected, msg)
		}
	}

	if isNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	for _, marker := range networkMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", ErrUnreachable, msg)
		}
	}

	return &RemoteError{Command: command, Raw: msg}
}

func isClassified(err error) bool {
	var remote *RemoteError
	return errors.Is(err, ErrConnectTimeout) ||
		errors.Is(err, ErrCredentialsRejected) ||
		errors.Is(err, ErrUnreachable) ||
		errors.As(err, &remote)
}

func isNetworkError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// UserMessage is the text shown to portal users for a gateway error. The raw
// router message is never part of it.
func UserMessage(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConnectTimeout):
		return "The router did not respond in time. Check that it is reachable and try again."
	case errors.Is(err, ErrCredentialsRejected):
		return "The router rejected the portal's API credentials. Ask an administrator to update them."
	case errors.Is(err, ErrUnreachable):
		return "The router cannot be reached right now."
	case errors.As(err, &remote):
		return "The router reported an error while processing the request."
	default:
		return "Unexpected error while talking to the router."
	}
}
