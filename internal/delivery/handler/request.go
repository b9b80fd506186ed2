package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"advert-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidPayload = errors.New("invalid request payload")
	errInvalidField   = errors.New("invalid field")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createAdvertRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Owner       string `json:"owner" validate:"required"`
}

func decodeCreateAdvert(w http.ResponseWriter, r *http.Request) (*createAdvertRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req createAdvertRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", errInvalidPayload)
	}

	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// decodePatch turns a JSON object into field updates ordered as domain.MutableFields.
// An empty body or {} yields no updates. Every key is checked before anything is returned.
//
// Updates are committed in domain.MutableFields order, not in the order keys appear in the
// body, so a conflicting title is rejected before description or owner are written.
func decodePatch(w http.ResponseWriter, r *http.Request) ([]domain.FieldUpdate, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}

	values := make(map[string]string, len(raw))
	for field, msg := range raw {
		if !domain.IsMutableField(field) {
			return nil, fmt.Errorf("%w: %s cannot be updated", errInvalidField, field)
		}

		var value *string
		if err := json.Unmarshal(msg, &value); err != nil || value == nil {
			return nil, fmt.Errorf("%w: %s must be a string", errInvalidField, field)
		}
		if err := validate.Var(*value, "required"); err != nil {
			return nil, fmt.Errorf("%w: %s must not be empty", errInvalidField, field)
		}
		values[field] = *value
	}

	updates := make([]domain.FieldUpdate, 0, len(values))
	for _, field := range domain.MutableFields {
		if v, ok := values[field]; ok {
			updates = append(updates, domain.FieldUpdate{Field: field, Value: v})
		}
	}
	return updates, nil
}

func describeDecodeError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return "missing required field: " + strings.Join(fields, ", ")
	}
	if errors.Is(err, errInvalidField) {
		return err.Error()
	}
	return msgInvalidPayload
}
