// Package transfer valida solicitudes de traslado antes de tocar el almacenamiento.
// Todo lo de este paquete es puro: sin I/O ni estado compartido.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
)

// Nombres de los campos del cuerpo JSON de un traslado.
const (
	FieldProductID             = "product_id"
	FieldSourceLocationID      = "source_location_id"
	FieldDestinationLocationID = "destination_location_id"
	FieldQuantity              = "quantity"
)

// Request solicitud de traslado ya validada. Solo se construye con Validate o NewRequest,
// por eso el orquestador nunca recibe entrada sin tipar.
type Request struct {
	productID     string
	sourceID      string
	destinationID string
	quantity      int64
}

func (r Request) ProductID() string             { return r.productID }
func (r Request) SourceLocationID() string      { return r.sourceID }
func (r Request) DestinationLocationID() string { return r.destinationID }
func (r Request) Quantity() int64               { return r.quantity }

// IsZero indica si la solicitud no pasó por el validador.
func (r Request) IsZero() bool {
	return r == Request{}
}

// FieldError detalla qué campo falló. Unwrap devuelve el error de dominio.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewRequest valida campos ya tipados. Reglas en orden, gana el primer fallo:
// campos presentes, cantidad positiva, origen distinto de destino.
func NewRequest(productID, sourceID, destinationID string, quantity int64) (Request, error) {
	productID = strings.TrimSpace(productID)
	sourceID = strings.TrimSpace(sourceID)
	destinationID = strings.TrimSpace(destinationID)

	switch {
	case productID == "":
		return Request{}, &FieldError{Field: FieldProductID, Err: domain.ErrMissingField}
	case sourceID == "":
		return Request{}, &FieldError{Field: FieldSourceLocationID, Err: domain.ErrMissingField}
	case destinationID == "":
		return Request{}, &FieldError{Field: FieldDestinationLocationID, Err: domain.ErrMissingField}
	}
	if quantity <= 0 {
		return Request{}, &FieldError{Field: FieldQuantity, Err: domain.ErrInvalidQuantity}
	}
	if sourceID == destinationID {
		return Request{}, &FieldError{Field: FieldDestinationLocationID, Err: domain.ErrSameLocation}
	}
	return Request{
		productID:     productID,
		sourceID:      sourceID,
		destinationID: destinationID,
		quantity:      quantity,
	}, nil
}

// Validate valida un cuerpo JSON crudo ya decodificado a nivel de claves.
// Un campo ausente, nulo o de otro tipo (ej. quantity 2.5, 1.0, "5" o un entero que no cabe
// en int64) se reporta como ErrMissingField. Un entero negativo fuera de rango es ErrInvalidQuantity.
func Validate(raw map[string]json.RawMessage) (Request, error) {
	productID, err := stringField(raw, FieldProductID)
	if err != nil {
		return Request{}, err
	}
	sourceID, err := stringField(raw, FieldSourceLocationID)
	if err != nil {
		return Request{}, err
	}
	destinationID, err := stringField(raw, FieldDestinationLocationID)
	if err != nil {
		return Request{}, err
	}
	quantity, err := integerField(raw, FieldQuantity)
	if err != nil {
		return Request{}, err
	}
	return NewRequest(productID, sourceID, destinationID, quantity)
}

func stringField(raw map[string]json.RawMessage, name string) (string, error) {
	v, ok := raw[name]
	if !ok {
		return "", &FieldError{Field: name, Err: domain.ErrMissingField}
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || isNull(v) || strings.TrimSpace(s) == "" {
		return "", &FieldError{Field: name, Err: domain.ErrMissingField}
	}
	return s, nil
}

func integerField(raw map[string]json.RawMessage, name string) (int64, error) {
	v, ok := raw[name]
	if !ok || !isNumberLiteral(v) {
		return 0, &FieldError{Field: name, Err: domain.ErrMissingField}
	}
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, &FieldError{Field: name, Err: domain.ErrMissingField}
	}
	i, err := n.Int64()
	if err != nil {
		// Un entero negativo fuera de rango sigue siendo un entero no positivo.
		if isIntegerLiteral(n) && strings.HasPrefix(n.String(), "-") {
			return 0, &FieldError{Field: name, Err: domain.ErrInvalidQuantity}
		}
		return 0, &FieldError{Field: name, Err: domain.ErrMissingField}
	}
	return i, nil
}

// isIntegerLiteral sin parte fraccionaria ni exponente: 1.0 y 1e2 no son enteros.
func isIntegerLiteral(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}

// isNumberLiteral descarta cadenas como "5", que json.Number aceptaría.
func isNumberLiteral(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	if len(t) == 0 {
		return false
	}
	return t[0] == '-' || (t[0] >= '0' && t[0] <= '9')
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
