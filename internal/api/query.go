package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// BuildQuery renders a parameter map into an encoded query string including
// the leading "?", or "" when nothing remains after filtering.
//
// Encoding rules: nil values are omitted, slices expand to repeated keys,
// maps and structs are JSON-stringified into the value, everything else is
// formatted with fmt. Keys are emitted in sorted order so URLs are stable.
func BuildQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(params))
	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				continue
			}
			rv = rv.Elem()
			v = rv.Interface()
		}

		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				parts = append(parts, encodePair(k, fmt.Sprint(rv.Index(i).Interface())))
			}
		case reflect.Map, reflect.Struct:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			parts = append(parts, encodePair(k, string(b)))
		default:
			parts = append(parts, encodePair(k, fmt.Sprint(v)))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func encodePair(k, v string) string {
	return url.QueryEscape(k) + "=" + url.QueryEscape(v)
}
