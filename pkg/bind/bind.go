// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

// ErrBody is wrapped by every decode failure.
var ErrBody = errors.New("bind: bad request body")

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures and (nil, err) when
// the body is malformed or too large. An empty body decodes to dest's zero
// value so optional payloads (purchase quantity) can default.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	if r.Body != nil {
		dec := json.NewDecoder(r.Body)
		if err = dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, fmt.Errorf("%w: request body too large (max %d bytes)", ErrBody, maxErr.Limit)
			}
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrBody, err)
		}
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
