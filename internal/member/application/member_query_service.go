package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedCache "github.com/davicafu/memberquery/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

// MemberQueryService expone los casos de uso de búsqueda y el alta mínima de miembros.
type MemberQueryService struct {
	store    domain.Store
	cache    sharedCache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewMemberQueryService recibe el almacenamiento, una caché opcional (nil la desactiva) y el logger.
func NewMemberQueryService(store domain.Store, cache sharedCache.Cache, cacheTTL time.Duration, log *zap.Logger) *MemberQueryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemberQueryService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// ---------------- Búsqueda ----------------

// Search devuelve todas las filas que cumplen cond, sin paginar.
func (s *MemberQueryService) Search(ctx context.Context, cond domain.MemberSearchCond, sorts ...sharedQuery.Sort) ([]domain.MemberTeamDto, error) {
	spec, err := domain.NewSearchQuery(cond, sorts...)
	if err != nil {
		return nil, err
	}

	log := s.queryLogger(sharedQuery.ShapeSearch)
	rows, err := s.store.FetchRows(ctx, spec, 0, 0)
	if err != nil {
		err = sharedDomain.StorageError("fetch_rows", string(sharedQuery.ShapeSearch), err)
		log.Warn("Search failed", zap.Error(err))
		return nil, err
	}
	if rows == nil {
		rows = []domain.MemberTeamDto{}
	}

	log.Debug("Search executed", zap.Int("rows", len(rows)))
	return rows, nil
}

// SearchPage devuelve una página y solo cuenta cuando el total no se deduce de ella.
func (s *MemberQueryService) SearchPage(ctx context.Context, cond domain.MemberSearchCond, p sharedQuery.OffsetPagination, sorts ...sharedQuery.Sort) (sharedQuery.Page[domain.MemberTeamDto], error) {
	return s.searchPage(ctx, cond, p, true, sorts)
}

// SearchPageSimple devuelve una página ejecutando siempre la consulta de count.
func (s *MemberQueryService) SearchPageSimple(ctx context.Context, cond domain.MemberSearchCond, p sharedQuery.OffsetPagination, sorts ...sharedQuery.Sort) (sharedQuery.Page[domain.MemberTeamDto], error) {
	return s.searchPage(ctx, cond, p, false, sorts)
}

func (s *MemberQueryService) searchPage(ctx context.Context, cond domain.MemberSearchCond, p sharedQuery.OffsetPagination, optimize bool, sorts []sharedQuery.Sort) (sharedQuery.Page[domain.MemberTeamDto], error) {
	spec, err := domain.NewSearchQuery(cond, sorts...)
	if err != nil {
		return sharedQuery.Page[domain.MemberTeamDto]{}, err
	}
	countSpec := spec.CountShape()

	log := s.queryLogger(sharedQuery.ShapeSearch).With(
		zap.Int("offset", p.Offset),
		zap.Int("limit", p.Limit),
	)

	counted := false
	fetch := func(ctx context.Context, offset, limit int) ([]domain.MemberTeamDto, error) {
		return s.store.FetchRows(ctx, spec, offset, limit)
	}
	count := func(ctx context.Context) (int64, error) {
		counted = true
		return s.store.FetchCount(ctx, countSpec)
	}

	run := sharedQuery.FetchPageWithCount[domain.MemberTeamDto]
	if optimize {
		run = sharedQuery.FetchPage[domain.MemberTeamDto]
	}

	page, err := run(ctx, p, fetch, count)
	if err != nil {
		if errors.Is(err, sharedDomain.ErrStorage) {
			log.Warn("Paged search failed", zap.Error(err))
		}
		return page, err
	}

	log.Debug("Paged search executed",
		zap.Int("rows", page.Size()),
		zap.Int64("total", page.Total),
		zap.Bool("count_skipped", !counted),
	)
	return page, nil
}

// ---------------- Consultas simples ----------------

// FindByUsername consulta primero la caché y la rellena en background tras un miss.
func (s *MemberQueryService) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	key := domain.CacheKeyByUsername(username)

	if s.cache != nil {
		var cached domain.Member
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	m, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		sharedCache.AsyncCacheSet(s.cache, key, m, s.cacheTTL, s.log)
	}
	return m, nil
}

// FindAll pagina todos los miembros por orden de inserción.
func (s *MemberQueryService) FindAll(ctx context.Context, p sharedQuery.OffsetPagination) (sharedQuery.Page[*domain.Member], error) {
	page, err := sharedQuery.FetchPage[*domain.Member](ctx, p,
		func(ctx context.Context, offset, limit int) ([]*domain.Member, error) {
			return s.store.ListMembers(ctx, offset, limit)
		},
		s.store.CountMembers,
	)
	if err != nil {
		s.log.Warn("List members failed", zap.Error(err))
	}
	return page, err
}

// ---------------- Escritura ----------------

// Register crea el miembro y, si se indica un equipo que no existe, también el equipo.
func (s *MemberQueryService) Register(ctx context.Context, username string, age int, teamName *string) (*domain.Member, error) {
	m := &domain.Member{Username: username, Age: age}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if teamName != nil && *teamName != "" {
		team, err := s.resolveTeam(ctx, *teamName)
		if err != nil {
			return nil, err
		}
		m.TeamID = &team.ID
	}

	if err := s.store.SaveMember(ctx, m); err != nil {
		return nil, err
	}

	// Una entrada previa con el mismo username podría quedar obsoleta.
	if s.cache != nil {
		sharedCache.AsyncCacheDelete(s.cache, domain.CacheKeyByUsername(m.Username), s.log)
	}

	s.log.Info("Member registered", zap.Int64("member_id", m.ID), zap.String("username", m.Username))
	return m, nil
}

// resolveTeam busca el equipo por nombre y lo crea si no existe. Si otra
// alta lo crea entre medias, el índice único lo rechaza y se vuelve a leer.
func (s *MemberQueryService) resolveTeam(ctx context.Context, name string) (*domain.Team, error) {
	team, err := s.store.FindTeamByName(ctx, name)
	if !errors.Is(err, domain.ErrTeamNotFound) {
		return team, err
	}

	team = &domain.Team{Name: name}
	err = s.store.SaveTeam(ctx, team)
	if errors.Is(err, domain.ErrTeamExists) {
		return s.store.FindTeamByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("Team created", zap.Int64("team_id", team.ID), zap.String("name", team.Name))
	return team, nil
}

func (s *MemberQueryService) queryLogger(shape sharedQuery.Shape) *zap.Logger {
	return s.log.With(
		zap.String("query_id", uuid.NewString()),
		zap.String("shape", string(shape)),
	)
}
