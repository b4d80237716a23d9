package query

import (
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
)

// ---------- Tipos de filtrado / paginación / ordenamiento ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Validate rechaza límites que violan el contrato antes de tocar el almacenamiento.
func (p OffsetPagination) Validate() error {
	if p.Offset < 0 {
		return sharedDomain.InvalidArgument("paginate", "offset", "offset must be >= 0, got %d", p.Offset)
	}
	if p.Limit <= 0 {
		return sharedDomain.InvalidArgument("paginate", "limit", "limit must be > 0, got %d", p.Limit)
	}
	return nil
}

// Sort indica campo lógico y dirección.
type Sort struct {
	Field string // ej. "username", "age"
	Desc  bool
}

// ---------- Forma de la consulta ----------

type Shape string

const (
	ShapeSearch Shape = "search"
	ShapeCount  Shape = "count"
)

// Join describe una unión con otra tabla. Left = LEFT JOIN.
type Join struct {
	Table string
	Alias string
	On    string
	Left  bool
}

// Column es una columna proyectada con su alias de salida.
type Column struct {
	Expr  string
	Alias string
}

// Spec es la consulta ensamblada, neutral respecto del motor.
// Fields traduce nombres lógicos (los de Criterion/Sort) a expresiones SQL.
type Spec struct {
	Shape   Shape
	Table   string
	Alias   string
	Joins   []Join
	Columns []Column
	Fields  map[string]string
	Filter  sharedDomain.Conjunction
	Order   []Sort
}

// CountShape devuelve la misma consulta (joins y filtro) proyectando un COUNT.
func (s Spec) CountShape() Spec {
	c := s
	c.Shape = ShapeCount
	c.Columns = nil
	c.Order = nil
	return c
}
