package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind clasifica los errores que la capa de búsqueda devuelve al caller.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindStorage         Kind = "storage"
	KindMapping         Kind = "mapping"
)

// ---------- Errores de dominio ----------
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorage         = errors.New("storage error")
	ErrMapping         = errors.New("mapping error")
)

// SearchError etiqueta un error con su Kind y el contexto necesario para diagnosticarlo.
type SearchError struct {
	Kind  Kind
	Op    string // ej. "search_page", "fetch_rows"
	Field string // campo afectado, si lo hay
	Shape string // "search" o "count"
	Err   error
}

func (e *SearchError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" [op=" + e.Op)
		if e.Shape != "" {
			b.WriteString(" shape=" + e.Shape)
		}
		if e.Field != "" {
			b.WriteString(" field=" + e.Field)
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *SearchError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage) y similares.
func (e *SearchError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func sentinelFor(k Kind) error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindStorage:
		return ErrStorage
	case KindMapping:
		return ErrMapping
	}
	return nil
}

// ---------- Constructores ----------

func InvalidArgument(op, field, format string, args ...interface{}) error {
	return &SearchError{Kind: KindInvalidArgument, Op: op, Field: field, Err: fmt.Errorf(format, args...)}
}

func MappingError(field string, err error) error {
	return &SearchError{Kind: KindMapping, Op: "map_row", Field: field, Err: err}
}

// StorageError envuelve un fallo del colaborador de almacenamiento.
// Si el error ya está clasificado se devuelve tal cual.
func StorageError(op, shape string, err error) error {
	if err == nil {
		return nil
	}
	var se *SearchError
	if errors.As(err, &se) {
		return err
	}
	return &SearchError{Kind: KindStorage, Op: op, Shape: shape, Err: err}
}

// KindOf devuelve el Kind de un error, o "" si no está clasificado.
func KindOf(err error) Kind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
