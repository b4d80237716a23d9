package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
)

// MemberTeamDto es la proyección plana (miembro + equipo) que devuelve la búsqueda.
// TeamID/TeamName son nil cuando el miembro no tiene equipo.
type MemberTeamDto struct {
	MemberID int64   `json:"member_id"`
	Username string  `json:"username"`
	Age      int     `json:"age"`
	TeamID   *int64  `json:"team_id"`
	TeamName *string `json:"team_name"`
}

// ProjectionColumns es el orden posicional de las columnas seleccionadas.
var ProjectionColumns = []string{FieldMemberID, FieldUsername, FieldAge, FieldTeamID, FieldTeamName}

// Row es una fila del LEFT JOIN tal cual llega del almacenamiento; cualquier
// columna puede venir a nil.
type Row struct {
	MemberID *int64
	Username *string
	Age      *int64
	TeamID   *int64
	TeamName *string
}

var errUnexpectedNull = errors.New("unexpected null in non-nullable column")

// MapRow es el único mapeo canónico de fila a proyección.
func MapRow(r Row) (MemberTeamDto, error) {
	switch {
	case r.MemberID == nil:
		return MemberTeamDto{}, sharedDomain.MappingError(FieldMemberID, errUnexpectedNull)
	case r.Username == nil:
		return MemberTeamDto{}, sharedDomain.MappingError(FieldUsername, errUnexpectedNull)
	case r.Age == nil:
		return MemberTeamDto{}, sharedDomain.MappingError(FieldAge, errUnexpectedNull)
	}

	dto := MemberTeamDto{
		MemberID: *r.MemberID,
		Username: *r.Username,
		Age:      int(*r.Age),
	}
	// Sin equipo: ambos campos quedan a nil, nunca un cero inventado.
	if r.TeamID != nil {
		id := *r.TeamID
		dto.TeamID = &id
	}
	if r.TeamName != nil {
		name := *r.TeamName
		dto.TeamName = &name
	}
	return dto, nil
}

// ProjectConstructor construye la proyección a partir de valores posicionales,
// en el orden de ProjectionColumns.
func ProjectConstructor(values ...interface{}) (MemberTeamDto, error) {
	if len(values) != len(ProjectionColumns) {
		return MemberTeamDto{}, sharedDomain.MappingError("", fmt.Errorf("expected %d columns, got %d", len(ProjectionColumns), len(values)))
	}
	fields := make(map[string]interface{}, len(values))
	for i, col := range ProjectionColumns {
		fields[col] = values[i]
	}
	return ProjectFields(fields)
}

// ProjectFields construye la proyección asignando campo a campo por nombre.
// Una clave ausente equivale a nil.
func ProjectFields(fields map[string]interface{}) (MemberTeamDto, error) {
	var r Row
	var err error

	if r.MemberID, err = asInt64(fields[FieldMemberID]); err != nil {
		return MemberTeamDto{}, sharedDomain.MappingError(FieldMemberID, err)
	}
	if r.Username, err = asString(fields[FieldUsername]); err != nil {
		return MemberTeamDto{}, sharedDomain.MappingError(FieldUsername, err)
	}
	if r.Age, err = asInt64(fields[FieldAge]); err != nil {
		return MemberTeamDto{}, sharedDomain.MappingError(FieldAge, err)
	}
	if r.TeamID, err = asInt64(fields[FieldTeamID]); err != nil {
		return MemberTeamDto{}, sharedDomain.MappingError(FieldTeamID, err)
	}
	if r.TeamName, err = asString(fields[FieldTeamName]); err != nil {
		return MemberTeamDto{}, sharedDomain.MappingError(FieldTeamName, err)
	}

	return MapRow(r)
}

// ---------------- Conversores ----------------

func asInt64(v interface{}) (*int64, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int:
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("non-integral number %v", x)
		}
		n = int64(x)
	case *int64:
		if x == nil {
			return nil, nil
		}
		n = *x
	case sql.NullInt64:
		if !x.Valid {
			return nil, nil
		}
		n = x.Int64
	case []byte:
		parsed, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", x, err)
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", x, err)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("unsupported integer type %T", v)
	}
	return &n, nil
}

func asString(v interface{}) (*string, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = x
	case []byte:
		s = string(x)
	case *string:
		if x == nil {
			return nil, nil
		}
		s = *x
	case sql.NullString:
		if !x.Valid {
			return nil, nil
		}
		s = x.String
	default:
		return nil, fmt.Errorf("unsupported string type %T", v)
	}
	return &s, nil
}
