package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxBodySize caps JSON request bodies at 1 MB.
const MaxBodySize = 1 << 20

var (
	ErrMissingContentType   = errors.New("missing content type")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMalformedBody        = errors.New("malformed request body")
)

// JSON decodes the request body into v. It requires an application/json
// content type, rejects unknown fields and bodies over MaxBodySize, and
// reports every failure through one of the package sentinels so the HTTP
// layer can map them to a 400 uniformly.
func JSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if len(body) > MaxBodySize {
		return fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, MaxBodySize)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	// A second document after the first is as malformed as none.
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", ErrMalformedBody)
	}
	return nil
}
