package domain

import (
	"regexp"
	"strings"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Field es un nombre lógico; cada adapter lo traduce a su columna o path.
// Partner indica la entidad del join que debe existir para que la condición
// pueda cumplirse (vacío si la condición es sobre la entidad raíz).
type Criterion struct {
	Field   string
	Op      Operator
	Value   interface{}
	Partner string
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Conjunction ----------------

// Conjunction es un AND de condiciones presentes. Vacía significa "sin filtro".
type Conjunction []Criterion

func (c Conjunction) ToConditions() []Criterion {
	return c
}

// IsEmpty indica que no hay ninguna condición que aplicar.
func (c Conjunction) IsEmpty() bool {
	return len(c) == 0
}

// And pliega los predicados opcionales en una conjunción.
// Los nil se omiten por completo: nunca se añaden como un "true" vacío.
func And(preds ...*Criterion) Conjunction {
	var conj Conjunction
	for _, p := range preds {
		if p == nil {
			continue
		}
		conj = append(conj, *p)
	}
	return conj
}

// LikePattern traduce un patrón LIKE a una expresión regular anclada:
// % equivale a cualquier secuencia y _ a un único carácter.
func LikePattern(like string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range like {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// MatchLike evalúa un patrón LIKE (o ILIKE si fold) sobre s.
func MatchLike(s, like string, fold bool) bool {
	expr := LikePattern(like)
	if fold {
		expr = "(?is)" + expr
	} else {
		expr = "(?s)" + expr
	}
	return regexp.MustCompile(expr).MatchString(s)
}
