package transfer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
)

func rawBody(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestValidate_SolicitudValida(t *testing.T) {
	req, err := transfer.Validate(rawBody(t, `{
		"product_id": "p-1",
		"source_location_id": "loc-a",
		"destination_location_id": "loc-b",
		"quantity": 5
	}`))
	require.NoError(t, err)

	assert.Equal(t, "p-1", req.ProductID())
	assert.Equal(t, "loc-a", req.SourceLocationID())
	assert.Equal(t, "loc-b", req.DestinationLocationID())
	assert.Equal(t, int64(5), req.Quantity())
	assert.False(t, req.IsZero())
}

func TestValidate_Reglas(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		want  error
		field string
	}{
		{"sin product_id", `{"source_location_id":"a","destination_location_id":"b","quantity":1}`, domain.ErrMissingField, "product_id"},
		{"product_id nulo", `{"product_id":null,"source_location_id":"a","destination_location_id":"b","quantity":1}`, domain.ErrMissingField, "product_id"},
		{"product_id numérico", `{"product_id":7,"source_location_id":"a","destination_location_id":"b","quantity":1}`, domain.ErrMissingField, "product_id"},
		{"source en blanco", `{"product_id":"p","source_location_id":"  ","destination_location_id":"b","quantity":1}`, domain.ErrMissingField, "source_location_id"},
		{"sin destino", `{"product_id":"p","source_location_id":"a","quantity":1}`, domain.ErrMissingField, "destination_location_id"},
		{"sin quantity", `{"product_id":"p","source_location_id":"a","destination_location_id":"b"}`, domain.ErrMissingField, "quantity"},
		{"quantity como string", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":"5"}`, domain.ErrMissingField, "quantity"},
		{"quantity decimal", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":2.5}`, domain.ErrMissingField, "quantity"},
		{"quantity desborda int64", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":99999999999999999999}`, domain.ErrMissingField, "quantity"},
		{"quantity 1.0", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":1.0}`, domain.ErrMissingField, "quantity"},
		{"quantity con exponente", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":1e2}`, domain.ErrMissingField, "quantity"},
		{"quantity negativa desborda int64", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":-99999999999999999999}`, domain.ErrInvalidQuantity, "quantity"},
		{"quantity cero", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":0}`, domain.ErrInvalidQuantity, "quantity"},
		{"quantity negativa", `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":-3}`, domain.ErrInvalidQuantity, "quantity"},
		{"misma ubicación", `{"product_id":"p","source_location_id":"a","destination_location_id":"a","quantity":3}`, domain.ErrSameLocation, "destination_location_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := transfer.Validate(rawBody(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, req.IsZero(), "un fallo nunca produce una solicitud utilizable")

			var fe *transfer.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

// El primer fallo gana: un campo ausente se reporta aunque la cantidad también sea inválida.
func TestValidate_PrimerFalloGana(t *testing.T) {
	_, err := transfer.Validate(rawBody(t, `{"source_location_id":"a","destination_location_id":"a","quantity":-1}`))
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, err = transfer.Validate(rawBody(t, `{"product_id":"p","source_location_id":"a","destination_location_id":"a","quantity":0}`))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestNewRequest_RecortaEspacios(t *testing.T) {
	req, err := transfer.NewRequest(" p ", " a", "b ", 1)
	require.NoError(t, err)
	assert.Equal(t, "p", req.ProductID())
	assert.Equal(t, "a", req.SourceLocationID())
	assert.Equal(t, "b", req.DestinationLocationID())

	_, err = transfer.NewRequest("p", "a ", " a", 1)
	assert.ErrorIs(t, err, domain.ErrSameLocation)
}

func TestValidate_EsIdempotente(t *testing.T) {
	raw := rawBody(t, `{"product_id":"p","source_location_id":"a","destination_location_id":"b","quantity":2}`)
	first, err := transfer.Validate(raw)
	require.NoError(t, err)
	second, err := transfer.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
