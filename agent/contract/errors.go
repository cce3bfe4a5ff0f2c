package contract

import "errors"

var (
	// ErrDownstream marks a failed or timed-out call to an external
	// collaborator (inference, catalog, payments). It is caught at the
	// orchestrator boundary and converted into a user-safe fallback reply.
	ErrDownstream = errors.New("downstream collaborator unavailable")

	ErrProductNotFound = errors.New("product not found")
	ErrValidation      = errors.New("validation failed")
)
