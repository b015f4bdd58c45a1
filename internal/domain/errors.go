package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for consistent error handling across the BFF.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input). Message is the
// user-facing text; no remote call happened when this is returned.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrUnauthorized indicates a missing, invalid or expired session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates an authenticated user hitting a view of the other
// role. Redirect tells the frontend where that user belongs.
type ErrForbidden struct {
	Redirect string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("wrong role for this view, redirect to %s", e.Redirect)
}

// ErrConflict indicates a resource already exists (e.g. duplicate email).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// Provisioning step names, used in ErrProvisioning and metrics labels.
const (
	StepIdentity     = "identity"
	StepSignIn       = "signin"
	StepProfile      = "profile"
	StepProfessional = "professional"
)

// ErrProvisioning is a fatal failure of one provisioning step. Message is
// the user-facing text built from the remote error; Err keeps the cause.
type ErrProvisioning struct {
	Step    string
	Message string
	Err     error
}

func (e *ErrProvisioning) Error() string {
	return e.Message
}

func (e *ErrProvisioning) Unwrap() error {
	return e.Err
}

// RemoteError is a structured error returned by Supabase (PostgREST or
// GoTrue): an HTTP status plus the service's own code/message pair.
type RemoteError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("supabase error (status %d): %s", e.Status, e.Message)
}

// postgREST surfaces RLS rejections as 42501; GoTrue and older PostgREST
// builds spell it out in the message instead.
const pgInsufficientPrivilege = "42501"

// IsPolicyDenied reports whether e is a row-level-security rejection.
func (e *RemoteError) IsPolicyDenied() bool {
	return e.Code == pgInsufficientPrivilege ||
		strings.Contains(e.Message, "row-level security")
}

// IsInvalidCredentials reports whether e is GoTrue's bad-password rejection.
func (e *RemoteError) IsInvalidCredentials() bool {
	return strings.Contains(e.Message, "Invalid login credentials")
}

// IsPolicyDenied walks the chain looking for a row-level-security rejection.
func IsPolicyDenied(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.IsPolicyDenied()
}

// IsNotFound walks the chain looking for an ErrNotFound.
func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

// RemoteMessage extracts the service's own message from an error chain,
// falling back to the Go error text. User-facing messages are built from it.
func RemoteMessage(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return err.Error()
}
