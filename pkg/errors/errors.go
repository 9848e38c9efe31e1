package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeAuthRequired       Code = "AUTH_REQUIRED"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNetwork            Code = "NETWORK_ERROR"
	CodeGateway            Code = "GATEWAY_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeStateConflict      Code = "STATE_CONFLICT"
	CodeConfirmationDenied Code = "CONFIRMATION_DECLINED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeAuthRequired: {
		Retryable:      false,
		PublicMessage:  "sign in required",
		DetailsAllowed: false,
	},
	CodeValidation: {
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNetwork: {
		Retryable:      true,
		PublicMessage:  "could not reach the server, please try again",
		DetailsAllowed: false,
	},
	CodeGateway: {
		Retryable:      true,
		PublicMessage:  "the server could not complete the request, please try again",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		Retryable:      false,
		PublicMessage:  "resource not found",
		DetailsAllowed: false,
	},
	CodeStateConflict: {
		Retryable:      false,
		PublicMessage:  "operation not allowed right now",
		DetailsAllowed: true,
	},
	CodeConfirmationDenied: {
		Retryable:      false,
		PublicMessage:  "",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Retryable:      false,
		PublicMessage:  "something went wrong",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsRetryable reports whether the error carries a code the user may retry.
func IsRetryable(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).Retryable
}

// HasCode reports whether err is a coded error with the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return typed.Code() == code
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
