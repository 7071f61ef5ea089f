package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of a CRM workflow.
type ErrorKind int

const (
	// KindNotFound means a referenced entity id does not exist.
	KindNotFound ErrorKind = iota
	// KindInvalidInput means the request is structurally invalid.
	KindInvalidInput
	// KindOperationFailed means the persistence layer or a transport failed.
	KindOperationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	case KindOperationFailed:
		return "OperationFailed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ServiceError is the error type returned by every service workflow.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind == kind
	}
	return false
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func NewInvalidInputError(message string) *ServiceError {
	return &ServiceError{Kind: KindInvalidInput, Message: message}
}

func NewOperationFailedError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindOperationFailed, Message: message, Err: err}
}
