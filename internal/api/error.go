package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError is the single error type surfaced by the client for any
// non-success outcome.
//
// Status carries the HTTP status code for application errors; 0 denotes a
// client-side failure (timeout, abort, network, encoding) that never produced
// a backend response. Data holds the parsed response body when one was
// available, typically a field -> message-list validation map.
type APIError struct {
	Message string
	Status  int
	Data    any
}

func (e *APIError) Error() string {
	return e.Message
}

// transportError builds a status-0 APIError for failures that happened
// before (or instead of) an HTTP response.
func transportError(msg string) *APIError {
	return &APIError{Message: msg, Status: 0}
}

// ExtractErrors flattens an error into a single human-readable string.
// APIError payloads are rendered as the backend validation shape suggests:
// strings pass through, arrays join with ", ", and objects become
// "field: messages" pairs joined with " | ". Anything else falls back to the
// error message.
func ExtractErrors(err error) string {
	if err == nil {
		return "Unknown error"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Data != nil {
		switch d := apiErr.Data.(type) {
		case string:
			return d
		case []any:
			return joinValues(d)
		case map[string]any:
			keys := make([]string, 0, len(d))
			for k := range d {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s: %s", k, renderValue(d[k])))
			}
			return strings.Join(parts, " | ")
		default:
			return fmt.Sprint(d)
		}
	}

	return err.Error()
}

func renderValue(v any) string {
	switch value := v.(type) {
	case []any:
		return joinValues(value)
	case map[string]any:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	default:
		return fmt.Sprint(value)
	}
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, ", ")
}
