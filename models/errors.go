package models

import "errors"

// Domain error taxonomy. Services raise these for validation, business-rule
// and access violations; the HTTP layer maps them to status codes.

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewBadRequest(msg string) error { return &BadRequestError{Message: msg} }
func NewNotFound(msg string) error   { return &NotFoundError{Message: msg} }
func NewForbidden(msg string) error  { return &ForbiddenError{Message: msg} }

func IsBadRequest(err error) bool {
	var e *BadRequestError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}
