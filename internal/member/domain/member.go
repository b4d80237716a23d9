package domain

import (
	"context"
	"errors"
	"fmt"

	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

// Team representa un equipo al que pueden pertenecer varios miembros.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Member representa un miembro; TeamID es nil si no pertenece a ningún equipo.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Age      int    `json:"age"`
	TeamID   *int64 `json:"team_id,omitempty"`
}

// ---------- Errores de dominio ----------
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamExists     = errors.New("team already exists")
	ErrInvalidMember  = errors.New("invalid member")
)

// ---------- Interfaces (Ports) ----------

// MemberQueryStore es el colaborador de almacenamiento que ejecuta las consultas ensambladas.
type MemberQueryStore interface {
	// FetchRows devuelve las filas proyectadas; limit == 0 significa sin límite.
	FetchRows(ctx context.Context, spec sharedQuery.Spec, offset, limit int) ([]MemberTeamDto, error)

	// FetchCount devuelve el total de filas que cumplen el filtro de la spec.
	FetchCount(ctx context.Context, spec sharedQuery.Spec) (int64, error)
}

// MemberRepository define las operaciones persistentes para Member y Team.
type MemberRepository interface {
	// SaveTeam devuelve ErrTeamExists si ya hay un equipo con ese nombre.
	SaveTeam(ctx context.Context, t *Team) error
	SaveMember(ctx context.Context, m *Member) error

	// Debe devolver ErrTeamNotFound si no existe.
	FindTeamByName(ctx context.Context, name string) (*Team, error)

	// Debe devolver ErrMemberNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Member, error)

	// Debe devolver ErrMemberNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (*Member, error)

	// ListMembers devuelve miembros por orden de inserción.
	ListMembers(ctx context.Context, offset, limit int) ([]*Member, error)
	CountMembers(ctx context.Context) (int64, error)
}

// Store agrupa ambos puertos; cada adapter de almacenamiento implementa los dos.
type Store interface {
	MemberQueryStore
	MemberRepository
}

// Validate comprueba las invariantes mínimas antes de persistir.
func (m *Member) Validate() error {
	if m.Username == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidMember)
	}
	if m.Age < 0 {
		return fmt.Errorf("%w: negative age %d", ErrInvalidMember, m.Age)
	}
	return nil
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByUsername forma una key consistente para cache usando el username.
func CacheKeyByUsername(username string) string {
	return fmt.Sprintf("member:username:%s", username)
}
