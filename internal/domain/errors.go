package domain

import "errors"

var (
	// ErrUnauthorized means the provider rejected the credential (HTTP 401).
	// Terminal for the operation in progress; the user must resupply a token.
	ErrUnauthorized = errors.New("credential rejected by provider")

	// ErrCredentialRequired means no credential exists for the user, neither
	// live nor in the store.
	ErrCredentialRequired = errors.New("credential required")

	// ErrNoPlatformsEnabled means start was requested with every platform off.
	ErrNoPlatformsEnabled = errors.New("no platforms enabled")

	// ErrNoEligibleAccounts means no enabled platform has an eligible account.
	ErrNoEligibleAccounts = errors.New("no eligible accounts")

	// ErrSessionRunning guards config mutation while workers are live.
	ErrSessionRunning = errors.New("session is running")

	// ErrMessageNotFound means the control channel no longer knows the stored
	// message handle; the caller should clear it and send a fresh message.
	ErrMessageNotFound = errors.New("message to edit not found")
)
