package tui

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/pders01/kbsearch/internal/api"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeError turns err into a short line for a toast or the inline
// error state.
func describeError(err error) string {
	var apiErr *api.APIError
	var decodeErr *api.DecodeError
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("HTTP %d", apiErr.Status)
	case errors.As(err, &decodeErr):
		return "unexpected response from " + decodeErr.Path
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	default:
		return err.Error()
	}
}
