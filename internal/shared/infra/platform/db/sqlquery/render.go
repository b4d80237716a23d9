package sqlquery

import (
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
	sharedUtils "github.com/davicafu/memberquery/internal/shared/infra/utils"
)

// Dialect define las diferencias de SQL entre motores.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// placeholder devuelve el marcador del n-ésimo argumento (1-based).
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Render traduce una Spec a SQL y argumentos.
// limit == 0 significa sin límite. Sin condiciones no se emite WHERE.
func Render(spec sharedQuery.Spec, d Dialect, offset, limit int) (string, []interface{}, error) {
	var b strings.Builder
	var args []interface{}

	b.WriteString("SELECT ")
	if spec.Shape == sharedQuery.ShapeCount {
		b.WriteString("COUNT(*)")
	} else {
		if len(spec.Columns) == 0 {
			return "", nil, fmt.Errorf("search shape without columns on %s", spec.Table)
		}
		cols := make([]string, 0, len(spec.Columns))
		for _, c := range spec.Columns {
			cols = append(cols, c.Expr+" AS "+c.Alias)
		}
		b.WriteString(strings.Join(cols, ", "))
	}

	b.WriteString(" FROM " + spec.Table)
	if spec.Alias != "" {
		b.WriteString(" " + spec.Alias)
	}
	for _, j := range spec.Joins {
		b.WriteString(sharedUtils.Ternary(j.Left, " LEFT JOIN ", " JOIN "))
		b.WriteString(j.Table + " " + j.Alias + " ON " + j.On)
	}

	whereSQL, whereArgs, err := applyCriteria(spec, d, spec.Filter)
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		b.WriteString(" WHERE " + whereSQL)
		args = append(args, whereArgs...)
	}

	if spec.Shape == sharedQuery.ShapeCount {
		return b.String(), args, nil
	}

	if len(spec.Order) > 0 {
		var parts []string
		for _, s := range spec.Order {
			expr, ok := spec.Fields[s.Field]
			if !ok {
				return "", nil, sharedDomain.InvalidArgument("render", s.Field, "unknown sort field %q", s.Field)
			}
			parts = append(parts, expr+" "+sharedUtils.Ternary(s.Desc, "DESC", "ASC"))
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	switch {
	case limit > 0:
		args = append(args, limit, offset)
		b.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", d.placeholder(len(args)-1), d.placeholder(len(args))))
	case offset > 0:
		args = append(args, offset)
		// SQLite no admite OFFSET sin LIMIT; -1 equivale a "sin límite".
		b.WriteString(sharedUtils.Ternary(d == SQLite, " LIMIT -1", "") + " OFFSET " + d.placeholder(len(args)))
	}

	return b.String(), args, nil
}

// applyCriteria traduce criterios neutrales a SQL del dialecto.
func applyCriteria(spec sharedQuery.Spec, d Dialect, conj sharedDomain.Conjunction) (string, []interface{}, error) {
	conds := conj.ToConditions()
	if len(conds) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		expr, ok := spec.Fields[c.Field]
		if !ok {
			return "", nil, sharedDomain.InvalidArgument("render", c.Field, "unknown filter field %q", c.Field)
		}
		args = append(args, c.Value)
		ph := d.placeholder(len(args))
		switch c.Op {
		case sharedDomain.OpILike:
			if d == Postgres {
				clauses = append(clauses, fmt.Sprintf("%s ILIKE %s", expr, ph))
			} else {
				clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", expr, ph))
			}
		default:
			clauses = append(clauses, fmt.Sprintf("%s %s %s", expr, c.Op, ph))
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}
