package httperr

import "errors"

// ===============================
// Error kinds
// ===============================

type Kind string

const (
	KindInvalid         Kind = "invalid"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindCapacity        Kind = "capacity"
	KindPaymentRequired Kind = "payment_required"
	KindTransient       Kind = "transient"
)

// ErrRetryable marks a storage failure raised by a race guard (unique
// violation, serialization failure, deadlock, lock timeout). The failed
// attempt has been rolled back and may be run again.
var ErrRetryable = errors.New("retryable storage conflict")

// ===============================
// Business error
// ===============================

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Kind: KindInvalid, Code: code}
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func ErrConflict(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

func ErrCapacity(code string) error {
	return BusinessError{Kind: KindCapacity, Code: code}
}

func ErrPaymentRequired(code string) error {
	return BusinessError{Kind: KindPaymentRequired, Code: code}
}

func ErrTransient(code string) error {
	return BusinessError{Kind: KindTransient, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf returns the kind carried by err, or "" when err is not a
// BusinessError.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
