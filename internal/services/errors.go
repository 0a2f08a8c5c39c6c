package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrPriceMismatch       = errors.New("product price has changed")
	ErrOutOfStock          = errors.New("product is out of stock")
	ErrVoucherNotFound     = errors.New("invalid voucher code")
	ErrVoucherUnauthorized = errors.New("you are not allowed to use this voucher")
	ErrVoucherExists       = errors.New("voucher code already exists")
	ErrOrderNotFound       = errors.New("order not found")
	ErrForbidden           = errors.New("not authorized to access this resource")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrVersionConflict     = errors.New("order was modified by another request")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrSelfModification    = errors.New("admins cannot delete or demote their own account")
)

// ValidationError reports malformed input. Fields maps a field path to a message.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ItemError ties a line-item failure to the product it concerns.
type ItemError struct {
	Index       int
	ProductID   string
	ProductName string
	Err         error
}

func (e *ItemError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.ProductName)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.ProductID)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
