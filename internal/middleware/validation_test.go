package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProductRequest struct {
	ID    int64   `json:"id" validate:"required,gt=0"`
	Name  string  `json:"name" validate:"required"`
	Stock *int    `json:"stock" validate:"omitempty,gte=0"`
	State *string `json:"status" validate:"omitempty,order_status"`
}

func decodeMap(t *testing.T, body map[string]interface{}, v interface{}) error {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return DecodeAndValidate(req, v)
}

// Feature: storefront, Property: required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeID bool, includeName bool) bool {
			body := map[string]interface{}{}
			if includeID {
				body["id"] = 7
			}
			if includeName {
				body["name"] = "Lamp"
			}

			var req testProductRequest
			err := decodeMap(t, body, &req)
			if includeID && includeName {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidation_ReportsJSONFieldNames(t *testing.T) {
	var req testProductRequest
	err := decodeMap(t, map[string]interface{}{"id": 1, "name": "Lamp", "stock": -2}, &req)
	require.Error(t, err)

	validationErrors := FormatValidationErrors(err)
	require.Len(t, validationErrors, 1)
	assert.Equal(t, "stock", validationErrors[0].Field)
	assert.Equal(t, "Value must be greater than or equal to 0", validationErrors[0].Message)
}

func TestValidation_OrderStatus(t *testing.T) {
	var req testProductRequest
	assert.NoError(t, decodeMap(t, map[string]interface{}{"id": 1, "name": "Lamp", "status": "Shipped"}, &req))

	err := decodeMap(t, map[string]interface{}{"id": 1, "name": "Lamp", "status": "teleported"}, &req)
	require.Error(t, err)
	validationErrors := FormatValidationErrors(err)
	require.Len(t, validationErrors, 1)
	assert.Equal(t, "status", validationErrors[0].Field)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewBufferString("{"))
	var v testProductRequest
	err := DecodeAndValidate(req, &v)
	assert.ErrorIs(t, err, ErrMalformedBody)

	w := httptest.NewRecorder()
	RespondWithDecodeError(w, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}
