package core

import "errors"

// The error taxonomy of the client. Everything user-actionable funnels into
// one of these sentinels; RPC reasons are wrapped, never swallowed.
var (
	// ErrWalletUnavailable means no provider answered, or it answered with a
	// transport-level failure.
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrPermissionDenied means the wallet refused the grant request.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserRejected means the user declined a confirmation prompt
	// (EIP-1193 code 4001).
	ErrUserRejected = errors.New("user rejected")

	// ErrUnsupportedAction means the action kind is outside KnownKinds.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrExecutionFailed wraps any submission failure that is not a
	// rejection or an unavailable wallet; the original reason rides along.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrInsufficientPoints is raised locally, before any network call.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrNoPermission means no active permission record exists. Expiry is a
	// silent steady state, so an expired record reports this too.
	ErrNoPermission = errors.New("no active permission")
)
