package auth

import (
	"errors"
	"fmt"
)

var (
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrAttemptFinished  = errors.New("this attempt has already succeeded")
	ErrAttachNotAllowed = errors.New("images can only be attached to seller sign-ups")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrImageType        = errors.New("image type not supported")
	ErrUnknownProvider  = errors.New("unknown identity provider")
	ErrFlowClosed       = errors.New("flow is closed")
)

// Messages shown for failures that carry no backend message
const (
	MsgSignInFailed   = "Sign in failed"
	MsgSignUpFailed   = "Sign up failed"
	MsgTransport      = "Could not reach the server. Please try again."
	MsgOfficialSignIn = "Please sign in with your official company email."
	MsgOfficialSignUp = "Please sign up with your official company email."
	MsgTerms          = "You must agree to the Terms and Privacy policy."
)

// ValidationError is a local, recoverable problem with the form input
type ValidationError struct {
	Field   string
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StatusError is returned by the backend client for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("auth backend returned status %d: %s", e.StatusCode, e.Message)
}
