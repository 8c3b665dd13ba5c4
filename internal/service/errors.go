package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/authz"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrNetworkNotFound is returned when a network is not found
	ErrNetworkNotFound = errors.New("network not found")

	// ErrSupplierNetworkNotFound is returned when a referenced supplier network does not exist
	ErrSupplierNetworkNotFound = errors.New("supplier network not found")

	// ErrProductNotFound is returned when a product is not found
	ErrProductNotFound = errors.New("product not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when registering an email that is already taken
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// authorize runs the permission engine for the request's actor and wraps
// a denial into ErrPermissionDenied with the engine's reason.
func authorize(ctx context.Context, action authz.Action, target authz.Target) error {
	actor := auth.UserFromContext(ctx)
	decision := authz.Authorize(actor, action, target)
	if !decision.Allowed {
		if decision.Reason != "" {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
		}
		return ErrPermissionDenied
	}
	return nil
}
