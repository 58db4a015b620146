// AngelaMos | 2026
// bind.go

package core

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Validator is shared by every handler; validator caches struct metadata.
var Validator = validator.New(validator.WithRequiredStructEnabled())

// Bind decodes a JSON body into dst and validates it. The returned error is
// already an AppError suitable for JSONError.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ValidationError("invalid request body")
	}

	if err := Validator.Struct(dst); err != nil {
		return ValidationError(FormatValidationError(err))
	}

	return nil
}
