package grammar

import (
	"errors"
	"fmt"
)

// CompileError represents a grammar error in one query parameter.
type CompileError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Param is the query parameter the error was found in.
	Param string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeMalformedGrammar indicates a required separator is missing or a
	// directive value cannot be interpreted.
	ErrCodeMalformedGrammar ErrorCode = "MALFORMED_GRAMMAR"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMalformed reports whether err is a MalformedGrammar compile error.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeMalformedGrammar
	}
	return false
}

func malformed(param, format string, args ...any) *CompileError {
	return &CompileError{
		Code:    ErrCodeMalformedGrammar,
		Param:   param,
		Message: fmt.Sprintf(format, args...),
	}
}
