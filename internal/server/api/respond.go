// Package api provides the REST handlers for cards, practice and calibration.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// maxBody caps request bodies. Calibration uploads carry several 21-point hands.
const maxBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator. Field names in messages follow json tags.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// decode reads a JSON body into T and validates it.
func decode[T any](r *http.Request) (T, error) {
	var zero, dst T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, errors.New("request body is empty")
		}
		return zero, errors.New("invalid JSON: " + err.Error())
	}

	if err := validatorInstance().Struct(dst); err != nil {
		return zero, validationMessage(err)
	}
	return dst, nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errors.New(fe.Field() + " is required")
	case "max":
		return errors.New(fe.Field() + " must be at most " + fe.Param())
	case "min":
		return errors.New(fe.Field() + " must be at least " + fe.Param())
	case "gt":
		return errors.New(fe.Field() + " must be greater than " + fe.Param())
	case "oneof":
		return errors.New(fe.Field() + " must be one of " + fe.Param())
	}
	return errors.New(fe.Field() + " is invalid")
}
