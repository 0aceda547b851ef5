package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
	"github.com/dmitrijs2005/qaforum/internal/client/services"
)

// UserMessage turns an error from any layer into the single line shown to
// the user.
func UserMessage(err error) string {
	var (
		ve    *services.ValidationError
		se    *client.ServerError
		usage usageError
	)

	switch {
	case errors.As(err, &usage):
		return "Usage: " + string(usage)
	case errors.As(err, &ve):
		return "Please fix: " + strings.Join(ve.Problems, "; ")
	case errors.Is(err, errSignInRequired), errors.Is(err, client.ErrNoCredential):
		return "Please sign in first (login or register)."
	case errors.Is(err, services.ErrNotVerified):
		return "The server did not accept the new session. Please try again."
	case errors.Is(err, confirm.ErrNotPending):
		return "Nothing to confirm."
	case errors.Is(err, confirm.ErrBusy):
		return "Still working on it."
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session is no longer valid. Please sign in again."
	case errors.Is(err, client.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, client.ErrUnavailable):
		return "The forum server cannot be reached. Try again later."
	case errors.Is(err, client.ErrMalformedResponse):
		return "The server sent an unexpected response."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}
