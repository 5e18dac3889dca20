package table

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Modelo de claves single-table: todos los registros de un care recipient
// viven bajo la misma partition key, con sort keys tipadas por prefijo.
//
//	PK = CARE#<careRecipientID>
//	SK = MED#<medicationID>                      (medicamento)
//	SK = DOSE#<medicationID>#<dueAt ISO-8601>    (dosis)
//
// El timestamp del SK de dosis se renderiza siempre con TimestampLayout
// (UTC, milisegundos, sufijo Z): ancho fijo, así el orden lexicográfico
// del SK coincide con el orden cronológico dentro de cada medicamento.

const (
	carePrefix = "CARE#"
	medPrefix  = "MED#"
	dosePrefix = "DOSE#"

	// TimestampLayout es el único formato válido para dueAt dentro de un SK.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var ErrInvalidKey = errors.New("invalid key")

func CarePK(careRecipientID string) string {
	return carePrefix + careRecipientID
}

func MedicationSK(medicationID string) string {
	return medPrefix + medicationID
}

// DoseSKPrefix es el prefijo de rango para consultar todas las dosis
// de una partición (begins_with / LIKE).
func DoseSKPrefix() string {
	return dosePrefix
}

func DoseSK(medicationID string, dueAt time.Time) string {
	return dosePrefix + medicationID + "#" + FormatTimestamp(dueAt)
}

// FormatTimestamp normaliza a UTC antes de renderizar; todos los writers
// deben pasar por aquí para que el invariante de orden se mantenga.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// ParseCarePK recupera el careRecipientID de una partition key.
func ParseCarePK(pk string) (string, error) {
	id, ok := strings.CutPrefix(pk, carePrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: partition key %q", ErrInvalidKey, pk)
	}
	return id, nil
}

// ParseMedicationSK recupera el medicationID de un SK de medicamento.
func ParseMedicationSK(sk string) (string, error) {
	id, ok := strings.CutPrefix(sk, medPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: medication sort key %q", ErrInvalidKey, sk)
	}
	return id, nil
}

// ParseDoseSK recupera (medicationID, dueAt) de un SK de dosis.
// El medicationID puede contener '#'? No: son UUIDs, pero igual cortamos
// por el último separador para no depender de eso.
func ParseDoseSK(sk string) (string, time.Time, error) {
	rest, ok := strings.CutPrefix(sk, dosePrefix)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: dose sort key %q", ErrInvalidKey, sk)
	}

	i := strings.LastIndex(rest, "#")
	if i <= 0 || i == len(rest)-1 {
		return "", time.Time{}, fmt.Errorf("%w: dose sort key %q", ErrInvalidKey, sk)
	}

	medicationID := rest[:i]
	dueAt, err := ParseTimestamp(rest[i+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: dose sort key %q: %v", ErrInvalidKey, sk, err)
	}

	return medicationID, dueAt, nil
}
