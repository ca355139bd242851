package services

import "errors"

// Kind classifies service failures so transport layers can map them to
// status codes without inspecting messages.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindNotFound
	KindConflict
	KindInternal
)

// Error is a typed service failure. All mutation paths roll back fully
// before returning one; raw storage errors are never surfaced directly.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrNotMember          = newError(KindAuthorization, "not an active member of this household")
	ErrPermissionDenied   = newError(KindAuthorization, "permission denied")
	ErrNotFound           = newError(KindNotFound, "record not found")
	ErrAlreadyMember      = newError(KindConflict, "already an active member of this household")
	ErrOwnerCannotLeave   = newError(KindConflict, "household owner cannot leave")
	ErrHouseholdInactive  = newError(KindConflict, "household is deactivated")
	ErrDuplicatePending   = newError(KindConflict, "an active pending assignment already exists for this task and assignee")
	ErrAssignmentInactive = newError(KindConflict, "assignment is cancelled")
	ErrAlreadyCompleted   = newError(KindConflict, "assignment already completed")
	ErrProofRequired      = newError(KindValidation, "this task requires photographic proof")
	ErrTaskInactive       = newError(KindConflict, "task is deactivated")
	ErrRewardInactive     = newError(KindConflict, "reward is not available")
	ErrRewardOutOfStock   = newError(KindConflict, "reward is out of stock")
	ErrInsufficientPoints = newError(KindConflict, "insufficient points")
	ErrClaimNotPending    = newError(KindConflict, "claim is not pending")
	ErrEditWindowClosed   = newError(KindConflict, "completion comment can no longer be edited")
)

// KindOf extracts the failure kind from err, defaulting to KindInternal for
// untyped errors such as storage failures.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
