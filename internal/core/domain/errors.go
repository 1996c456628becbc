package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrAlreadyAllocated = errors.New("user already has a generated license")
	ErrNoInventory      = errors.New("no available licenses found")
	ErrContention       = errors.New("license claim contention, retry later")
	ErrStorageFailure   = errors.New("storage failure")

	ErrLicenseNotFound   = errors.New("license not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStaleLicense is returned by a store when a conditional status update
	// finds the record no longer in the expected status.
	ErrStaleLicense = errors.New("license status changed concurrently")
	// ErrDuplicateClaim is returned by a store when a claim would give the
	// requester a second generated license.
	ErrDuplicateClaim = errors.New("requester already holds a generated license")
	// ErrDuplicateLicenseKey is returned when an insert collides on license_key.
	ErrDuplicateLicenseKey = errors.New("license key already exists")

	ErrRewardNotFound = errors.New("reward not found")
	// ErrIdempotencyInFlight is returned when another request holding the same
	// Idempotency-Key has not finished writing yet.
	ErrIdempotencyInFlight = errors.New("request with this Idempotency-Key is in progress")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrOperatorExists     = errors.New("operator already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// AlreadyAllocatedError carries the license the requester already holds so
// callers can recover without resubmitting.
type AlreadyAllocatedError struct {
	Existing *License
}

func (e *AlreadyAllocatedError) Error() string {
	return ErrAlreadyAllocated.Error()
}

func (e *AlreadyAllocatedError) Is(target error) bool {
	return target == ErrAlreadyAllocated
}

// NoInventoryError records the category that ran dry.
type NoInventoryError struct {
	NodeType NodeType
}

func (e *NoInventoryError) Error() string {
	if e.NodeType == "" {
		return ErrNoInventory.Error()
	}
	return fmt.Sprintf("%s for node type %s", ErrNoInventory, e.NodeType)
}

func (e *NoInventoryError) Is(target error) bool {
	return target == ErrNoInventory
}

// StorageError wraps an unexpected store failure.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageFailure, err))
}
