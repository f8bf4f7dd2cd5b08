/*
Package req provides helpers for parsing HTTP request bodies.

It binds JSON payloads into destination structs and maps parse failures onto
the application error codes.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"socialnet/internal/pkg/errs"
)

// MaxRequestBodySize caps the size of a JSON request body (1 MB).
const MaxRequestBodySize int64 = 1 << 20

// BindJSON decodes the JSON body of r into dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
