package postgre

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/memberquery/internal/member/domain"
	"github.com/davicafu/memberquery/internal/shared/infra/platform/db/sqlquery"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

type MemberRepoPostgres struct {
	db *sql.DB
}

var _ domain.Store = (*MemberRepoPostgres)(nil)

func NewMemberRepoPostgres(db *sql.DB) *MemberRepoPostgres {
	return &MemberRepoPostgres{db: db}
}

// ------------------ Escritura ------------------

func (r *MemberRepoPostgres) SaveTeam(ctx context.Context, t *domain.Team) error {
	err := r.db.QueryRowContext(ctx, `INSERT INTO team (name) VALUES ($1) RETURNING id`, t.Name).Scan(&t.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("insert team %q: %w", t.Name, domain.ErrTeamExists)
	}
	if err != nil {
		return fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	return nil
}

func (r *MemberRepoPostgres) SaveMember(ctx context.Context, m *domain.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO member (username, age, team_id) VALUES ($1,$2,$3) RETURNING id`,
		m.Username, m.Age, m.TeamID,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert member %q: %w", m.Username, err)
	}
	return nil
}

// ------------------ Lectura ------------------

func (r *MemberRepoPostgres) FindTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM team WHERE name = $1 ORDER BY id LIMIT 1`, name).
		Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team %q: %w", name, err)
	}
	return &t, nil
}

func (r *MemberRepoPostgres) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	return r.getOne(ctx, `SELECT id, username, age, team_id FROM member WHERE id = $1`, id)
}

func (r *MemberRepoPostgres) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.getOne(ctx, `SELECT id, username, age, team_id FROM member WHERE username = $1 ORDER BY id LIMIT 1`, username)
}

func (r *MemberRepoPostgres) getOne(ctx context.Context, query string, arg interface{}) (*domain.Member, error) {
	var m domain.Member
	var teamID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&m.ID, &m.Username, &m.Age, &teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if teamID.Valid {
		m.TeamID = &teamID.Int64
	}
	return &m, nil
}

func (r *MemberRepoPostgres) ListMembers(ctx context.Context, offset, limit int) ([]*domain.Member, error) {
	query := `SELECT id, username, age, team_id FROM member ORDER BY id OFFSET $1`
	args := []interface{}{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var list []*domain.Member
	for rows.Next() {
		var m domain.Member
		var teamID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Username, &m.Age, &teamID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if teamID.Valid {
			m.TeamID = &teamID.Int64
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MemberRepoPostgres) CountMembers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM member`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// ------------------ Consultas de búsqueda ------------------

// FetchRows materializa cada fila por nombre de columna con ProjectFields,
// de modo que el orden del SELECT no importa.
func (r *MemberRepoPostgres) FetchRows(ctx context.Context, spec sharedQuery.Spec, offset, limit int) ([]domain.MemberTeamDto, error) {
	query, args, err := sqlquery.Render(spec, sqlquery.Postgres, offset, limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("search columns: %w", err)
	}

	var out []domain.MemberTeamDto
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}

		fields := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			fields[c] = values[i]
		}
		dto, err := domain.ProjectFields(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return out, nil
}

func (r *MemberRepoPostgres) FetchCount(ctx context.Context, spec sharedQuery.Spec) (int64, error) {
	query, args, err := sqlquery.Render(spec.CountShape(), sqlquery.Postgres, 0, 0)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// ------------------ Inicialización ------------------

func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS team (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS member (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		age INTEGER NOT NULL,
		team_id BIGINT REFERENCES team(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_name ON team(name)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_member_username ON member(username)`)
	return err
}
