package utils

import (
	"context"
	"errors"

	"cosmos-admin/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound   = errors.New("requestID not found in context")
	ErrRequestIDNotString  = errors.New("requestID in context is not a string")
	ErrDatabaseIDNotFound  = errors.New("databaseID not found in context")
	ErrDatabaseIDNotString = errors.New("databaseID in context is not a string")
	ErrSubjectNotFound     = errors.New("subject not found in context")
	ErrSubjectNotString    = errors.New("subject in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, missing, wrongType error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", missing
	}
	s, ok := val.(string)
	if !ok {
		return "", wrongType
	}
	return s, nil
}

// GetRequestIDFromContext retrieves the request (activity) ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetDatabaseIDFromContext retrieves the target database ID from the context.
func GetDatabaseIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.DatabaseIDKey, ErrDatabaseIDNotFound, ErrDatabaseIDNotString)
}

// GetSubjectFromContext retrieves the authenticated caller from the context.
func GetSubjectFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.SubjectKey, ErrSubjectNotFound, ErrSubjectNotString)
}

// Context builder functions

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithDatabaseID adds database ID to context
func WithDatabaseID(ctx context.Context, databaseID string) context.Context {
	return context.WithValue(ctx, contextkeys.DatabaseIDKey, databaseID)
}

// WithCollectionID adds collection ID to context
func WithCollectionID(ctx context.Context, collectionID string) context.Context {
	return context.WithValue(ctx, contextkeys.CollectionIDKey, collectionID)
}

// WithComponent adds component name to context
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation adds operation name to context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// WithSubject adds the authenticated caller to context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextkeys.SubjectKey, subject)
}

// WithTarget tags ctx with an operation and the resource ids it touches.
// An empty collectionID is left out.
func WithTarget(ctx context.Context, operation, databaseID, collectionID string) context.Context {
	ctx = WithOperation(ctx, operation)
	if databaseID != "" {
		ctx = WithDatabaseID(ctx, databaseID)
	}
	if collectionID != "" {
		ctx = WithCollectionID(ctx, collectionID)
	}
	return ctx
}

// Optional getters that return default values instead of errors

// GetRequestIDOrDefault retrieves the request ID from context or returns a default value
func GetRequestIDOrDefault(ctx context.Context, def string) string {
	if v, err := GetRequestIDFromContext(ctx); err == nil {
		return v
	}
	return def
}

// GetSubjectOrDefault retrieves the subject from context or returns a default value
func GetSubjectOrDefault(ctx context.Context, def string) string {
	if v, err := GetSubjectFromContext(ctx); err == nil {
		return v
	}
	return def
}

func HasRequestID(ctx context.Context) bool {
	_, err := GetRequestIDFromContext(ctx)
	return err == nil
}
