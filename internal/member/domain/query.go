package domain

import (
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

// Tablas y alias del join miembro ⋈ equipo.
const (
	MemberTable = "member"
	TeamTable   = "team"
	memberAlias = "m"
	teamAlias   = "t"
)

// memberTeamFields traduce los campos lógicos a columnas del join.
var memberTeamFields = map[string]string{
	FieldMemberID: "m.id",
	FieldUsername: "m.username",
	FieldAge:      "m.age",
	FieldTeamID:   "t.id",
	FieldTeamName: "t.name",
}

// DefaultSort es el orden de inserción.
var DefaultSort = sharedQuery.Sort{Field: FieldMemberID}

// NewSearchQuery ensambla la consulta de búsqueda: LEFT JOIN de miembro con
// equipo, filtro con los predicados presentes y proyección plana directa.
// Sin sorts se ordena por inserción. La forma de count se obtiene con CountShape().
func NewSearchQuery(cond MemberSearchCond, sorts ...sharedQuery.Sort) (sharedQuery.Spec, error) {
	order := []sharedQuery.Sort{DefaultSort}
	if len(sorts) > 0 {
		order = order[:0]
		for _, s := range sorts {
			if _, ok := memberTeamFields[s.Field]; !ok {
				return sharedQuery.Spec{}, sharedDomain.InvalidArgument("assemble", s.Field, "unsupported sort field %q", s.Field)
			}
			order = append(order, s)
		}
		// Desempate estable por id para que las páginas sean deterministas.
		if order[len(order)-1].Field != FieldMemberID {
			order = append(order, DefaultSort)
		}
	}

	columns := make([]sharedQuery.Column, 0, len(ProjectionColumns))
	for _, f := range ProjectionColumns {
		columns = append(columns, sharedQuery.Column{Expr: memberTeamFields[f], Alias: f})
	}

	return sharedQuery.Spec{
		Shape: sharedQuery.ShapeSearch,
		Table: MemberTable,
		Alias: memberAlias,
		Joins: []sharedQuery.Join{{
			Table: TeamTable,
			Alias: teamAlias,
			On:    "m.team_id = t.id",
			Left:  true,
		}},
		Columns: columns,
		Fields:  memberTeamFields,
		Filter:  sharedDomain.And(BuildPredicates(cond)...),
		Order:   order,
	}, nil
}
