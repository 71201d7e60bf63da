package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrStockUnavailable = errors.New("stock unavailable")
	ErrBadCredentials   = errors.New("bad credentials")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidStep      = errors.New("invalid checkout step")
	ErrSubmitting       = errors.New("order submission in progress")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrUnknownLanguage  = errors.New("unknown language code")
)

// A ValidationError maps field names to user-facing messages.
// It is recovered locally and never fatal.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
