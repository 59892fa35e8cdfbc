package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"reflect"
)

// File is one part of a multipart upload.
type File struct {
	Name    string
	Content []byte
}

// Upload POSTs a multipart form to path. files maps a field name to one or
// more files appended under that same key; fields carries scalar or
// structured values, where scalars are stringified and anything structured
// is JSON-encoded into the part. The assembled body is delegated to Post
// with RawBody set, so the transport boundary header stays intact.
func (c *Client) Upload(ctx context.Context, path string, files map[string][]File, fields map[string]any, out any, opt *Options) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if v == nil {
			continue
		}
		value, err := stringifyField(v)
		if err != nil {
			return transportError("failed to encode form field " + k + ": " + err.Error())
		}
		if err := w.WriteField(k, value); err != nil {
			return transportError("failed to write form field " + k + ": " + err.Error())
		}
	}

	for key, group := range files {
		for _, f := range group {
			fw, err := w.CreateFormFile(key, f.Name)
			if err != nil {
				return transportError("failed to add file " + f.Name + ": " + err.Error())
			}
			if _, err := fw.Write(f.Content); err != nil {
				return transportError("failed to write file " + f.Name + ": " + err.Error())
			}
		}
	}

	if err := w.Close(); err != nil {
		return transportError("failed to finalize multipart body: " + err.Error())
	}

	uploadOpt := Options{}
	if opt != nil {
		uploadOpt = *opt
	}
	uploadOpt.RawBody = true

	headers := make(map[string]string, len(uploadOpt.Headers)+1)
	for k, v := range uploadOpt.Headers {
		headers[k] = v
	}
	headers["Content-Type"] = w.FormDataContentType()
	uploadOpt.Headers = headers

	return c.Post(ctx, path, buf.Bytes(), out, &uploadOpt)
}

// stringifyField renders a form value: maps, structs, and slices are
// JSON-encoded, plain scalars formatted with fmt.
func stringifyField(v any) (string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
		v = rv.Interface()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(v), nil
	}
}
