package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/davicafu/memberquery/internal/member/domain"
	"github.com/davicafu/memberquery/internal/shared/infra/platform/db/sqlquery"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

type MemberRepoSQLite struct {
	db *sql.DB
}

var _ domain.Store = (*MemberRepoSQLite)(nil)

func NewMemberRepoSQLite(db *sql.DB) *MemberRepoSQLite {
	return &MemberRepoSQLite{db: db}
}

// ------------------ Escritura ------------------

func (r *MemberRepoSQLite) SaveTeam(ctx context.Context, t *domain.Team) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO team (name) VALUES (?)`, t.Name)
	var sqlErr *moderncsqlite.Error
	if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("insert team %q: %w", t.Name, domain.ErrTeamExists)
	}
	if err != nil {
		return fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("team id: %w", err)
	}
	return nil
}

func (r *MemberRepoSQLite) SaveMember(ctx context.Context, m *domain.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO member (username, age, team_id) VALUES (?,?,?)`,
		m.Username, m.Age, m.TeamID,
	)
	if err != nil {
		return fmt.Errorf("insert member %q: %w", m.Username, err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("member id: %w", err)
	}
	return nil
}

// ------------------ Lectura ------------------

func (r *MemberRepoSQLite) FindTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM team WHERE name = ? ORDER BY id LIMIT 1`, name).
		Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find team %q: %w", name, err)
	}
	return &t, nil
}

func (r *MemberRepoSQLite) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, username, age, team_id FROM member WHERE id = ?`, id)
	return scanMember(row)
}

func (r *MemberRepoSQLite) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, age, team_id FROM member WHERE username = ? ORDER BY id LIMIT 1`, username)
	return scanMember(row)
}

func (r *MemberRepoSQLite) ListMembers(ctx context.Context, offset, limit int) ([]*domain.Member, error) {
	if limit <= 0 {
		limit = -1 // sin límite en SQLite
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, age, team_id FROM member ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var list []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *MemberRepoSQLite) CountMembers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM member`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(s scanner) (*domain.Member, error) {
	var m domain.Member
	var teamID sql.NullInt64
	err := s.Scan(&m.ID, &m.Username, &m.Age, &teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	if teamID.Valid {
		m.TeamID = &teamID.Int64
	}
	return &m, nil
}

// ------------------ Consultas de búsqueda ------------------

// FetchRows materializa cada fila por posición con ProjectConstructor.
func (r *MemberRepoSQLite) FetchRows(ctx context.Context, spec sharedQuery.Spec, offset, limit int) ([]domain.MemberTeamDto, error) {
	query, args, err := sqlquery.Render(spec, sqlquery.SQLite, offset, limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	var out []domain.MemberTeamDto
	values := make([]interface{}, len(domain.ProjectionColumns))
	ptrs := make([]interface{}, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		dto, err := domain.ProjectConstructor(values...)
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

func (r *MemberRepoSQLite) FetchCount(ctx context.Context, spec sharedQuery.Spec) (int64, error) {
	query, args, err := sqlquery.Render(spec.CountShape(), sqlquery.SQLite, 0, 0)
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

func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS team (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS member (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		age INTEGER NOT NULL,
		team_id INTEGER REFERENCES team(id)
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
