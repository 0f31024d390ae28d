// Package errors maps errors to stable tag values for metrics.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/esdeck/esdeck-api/internal/errors"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// Classify returns a low-cardinality error tag. Application errors tag by
// their ErrorCode and the auth/cluster sentinels by name; anything else
// falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}

	switch {
	case goerrors.Is(err, ports.ErrAuthenticationFailed):
		return "authentication_failed"
	case goerrors.Is(err, ports.ErrSessionNotFound):
		return "session_not_found"
	case goerrors.Is(err, ports.ErrClusterNotFound):
		return "cluster_not_found"
	}

	return typeName(err)
}

// typeName unwraps to the innermost error and snake_cases its type.
func typeName(err error) string {
	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
