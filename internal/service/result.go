package service

import "strings"

// Kind classifies a failed action.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound covers both a missing row and a row owned by someone else.
	KindNotFound Kind = "not_found"
	KindStorage  Kind = "storage"
)

// User-facing messages. Storage detail never reaches the caller.
const (
	msgValidation   = "Invalid input"
	msgUnauthorized = "You must be signed in"
	msgNotFound     = "Not found"
	msgStorage      = "Something went wrong. Please try again."
)

// FieldError is one rejected input field, keyed by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failure is the error half of a Result.
type Failure struct {
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (f *Failure) Error() string {
	if len(f.Fields) == 0 {
		return f.Message
	}
	parts := make([]string, 0, len(f.Fields))
	for _, fe := range f.Fields {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return f.Message + ": " + strings.Join(parts, "; ")
}

// Result is the uniform shape every action returns.
type Result[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Error   *Failure `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](f *Failure) Result[T] {
	return Result[T]{Error: f}
}

func unauthorized() *Failure {
	return &Failure{Kind: KindUnauthorized, Message: msgUnauthorized}
}

func notFound() *Failure {
	return &Failure{Kind: KindNotFound, Message: msgNotFound}
}

func invalid(fields ...FieldError) *Failure {
	return &Failure{Kind: KindValidation, Message: msgValidation, Fields: fields}
}

// InvalidInput is the failure adapters report for input they cannot decode.
func InvalidInput(fields ...FieldError) *Failure {
	return invalid(fields...)
}

// Unauthenticated is the failure for an anonymous caller.
func Unauthenticated() *Failure {
	return unauthorized()
}

type serviceError string

func (e serviceError) Error() string { return string(e) }

const errExportsDisabled = serviceError("object storage is not configured")
