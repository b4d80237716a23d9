package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	memberDomain "github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

// MemberRepoMemory implementa Store en memoria. Útil para tests y como
// almacenamiento local sin dependencias.
type MemberRepoMemory struct {
	mu      sync.RWMutex
	teams   map[int64]*memberDomain.Team
	members []*memberDomain.Member // orden de inserción
	nextID  int64
}

// Verificación estática
var _ memberDomain.Store = (*MemberRepoMemory)(nil)

func NewMemberRepoMemory() *MemberRepoMemory {
	return &MemberRepoMemory{
		teams: make(map[int64]*memberDomain.Team),
	}
}

// ------------------ Escritura ------------------

func (r *MemberRepoMemory) SaveTeam(ctx context.Context, t *memberDomain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return fmt.Errorf("insert team %q: %w", t.Name, memberDomain.ErrTeamExists)
		}
	}
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.teams[t.ID] = &cp
	return nil
}

func (r *MemberRepoMemory) SaveMember(ctx context.Context, m *memberDomain.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.TeamID != nil {
		if _, ok := r.teams[*m.TeamID]; !ok {
			return fmt.Errorf("member %q references missing team %d: %w", m.Username, *m.TeamID, memberDomain.ErrTeamNotFound)
		}
	}
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.members = append(r.members, &cp)
	return nil
}

// ------------------ Lectura ------------------

func (r *MemberRepoMemory) FindTeamByName(ctx context.Context, name string) (*memberDomain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, memberDomain.ErrTeamNotFound
}

func (r *MemberRepoMemory) GetByID(ctx context.Context, id int64) (*memberDomain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, memberDomain.ErrMemberNotFound
}

func (r *MemberRepoMemory) FindByUsername(ctx context.Context, username string) (*memberDomain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.Username == username {
			cp := *m
			return &cp, nil
		}
	}
	return nil, memberDomain.ErrMemberNotFound
}

func (r *MemberRepoMemory) ListMembers(ctx context.Context, offset, limit int) ([]*memberDomain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*memberDomain.Member
	for _, m := range paginate(r.members, offset, limit) {
		cp := *m
		list = append(list, &cp)
	}
	return list, nil
}

func (r *MemberRepoMemory) CountMembers(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.members)), nil
}

// ------------------ Consultas de búsqueda ------------------

// FetchRows resuelve el LEFT JOIN en memoria y materializa cada fila por
// asignación de campos.
func (r *MemberRepoMemory) FetchRows(ctx context.Context, spec sharedQuery.Spec, offset, limit int) ([]memberDomain.MemberTeamDto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	joined, err := r.filter(spec)
	if err != nil {
		return nil, err
	}

	sortRows(joined, spec.Order)

	var out []memberDomain.MemberTeamDto
	for _, rw := range paginate(joined, offset, limit) {
		dto, err := memberDomain.ProjectFields(rw)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func (r *MemberRepoMemory) FetchCount(ctx context.Context, spec sharedQuery.Spec) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	joined, err := r.filter(spec)
	if err != nil {
		return 0, err
	}
	return int64(len(joined)), nil
}

type row = map[string]interface{}

func (r *MemberRepoMemory) filter(spec sharedQuery.Spec) ([]row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []row
	for _, m := range r.members {
		rw := row{
			memberDomain.FieldMemberID: m.ID,
			memberDomain.FieldUsername: m.Username,
			memberDomain.FieldAge:      int64(m.Age),
		}
		if m.TeamID != nil {
			if t, ok := r.teams[*m.TeamID]; ok {
				rw[memberDomain.FieldTeamID] = t.ID
				rw[memberDomain.FieldTeamName] = t.Name
			}
		}

		ok, err := matchAll(rw, spec.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rw)
		}
	}
	return out, nil
}

func matchAll(rw row, conj sharedDomain.Conjunction) (bool, error) {
	for _, c := range conj.ToConditions() {
		ok, err := matchCriterion(rw, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchCriterion evalúa una condición con semántica SQL: comparar contra
// NULL nunca se cumple.
func matchCriterion(rw row, c sharedDomain.Criterion) (bool, error) {
	v, ok := rw[c.Field]
	if !ok {
		if c.Partner != "" || c.Field == memberDomain.FieldTeamID || c.Field == memberDomain.FieldTeamName {
			return false, nil
		}
		return false, sharedDomain.InvalidArgument("fetch_rows", c.Field, "unknown filter field %q", c.Field)
	}

	switch actual := v.(type) {
	case int64:
		expected, ok := toInt64(c.Value)
		if !ok {
			return false, sharedDomain.InvalidArgument("fetch_rows", c.Field, "non-integer value %v", c.Value)
		}
		return compareInts(actual, expected, c.Op), nil
	case string:
		expected := fmt.Sprintf("%v", c.Value)
		switch c.Op {
		case sharedDomain.OpEq:
			return actual == expected, nil
		case sharedDomain.OpLike:
			return sharedDomain.MatchLike(actual, expected, false), nil
		case sharedDomain.OpILike:
			return sharedDomain.MatchLike(actual, expected, true), nil
		default:
			return compareStrings(actual, expected, c.Op), nil
		}
	}
	return false, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func compareInts(a, b int64, op sharedDomain.Operator) bool {
	switch op {
	case sharedDomain.OpEq:
		return a == b
	case sharedDomain.OpGt:
		return a > b
	case sharedDomain.OpGte:
		return a >= b
	case sharedDomain.OpLt:
		return a < b
	case sharedDomain.OpLte:
		return a <= b
	}
	return false
}

func compareStrings(a, b string, op sharedDomain.Operator) bool {
	switch op {
	case sharedDomain.OpGt:
		return a > b
	case sharedDomain.OpGte:
		return a >= b
	case sharedDomain.OpLt:
		return a < b
	case sharedDomain.OpLte:
		return a <= b
	}
	return false
}

// sortRows ordena como SQLite: los NULL van primero en ASC.
func sortRows(rows []row, order []sharedQuery.Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range order {
			c := compareValues(rows[i][s.Field], rows[j][s.Field])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case int64:
		y := b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

func paginate[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
