package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/memberquery/internal/config"
	"github.com/davicafu/memberquery/internal/member/application"
	"github.com/davicafu/memberquery/internal/member/domain"
	memberCache "github.com/davicafu/memberquery/internal/member/infra/outbound/cache"
	"github.com/davicafu/memberquery/internal/member/infra/outbound/db/memory"
	memberMongo "github.com/davicafu/memberquery/internal/member/infra/outbound/db/mongodb"
	memberPostgres "github.com/davicafu/memberquery/internal/member/infra/outbound/db/postgre"
	memberSQLite "github.com/davicafu/memberquery/internal/member/infra/outbound/db/sqlite"
	sharedCache "github.com/davicafu/memberquery/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/memberquery/internal/shared/infra/utils"
)

// closer agrupa las liberaciones de recursos en orden inverso.
type closer []func()

func (c *closer) add(fn func()) { *c = append(*c, fn) }

func (c closer) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// openStore abre el almacenamiento elegido por STORE_DRIVER e inicializa su esquema.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, cl *closer) (domain.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Info("Using in-memory store")
		return memory.NewMemberRepoMemory(), nil

	case config.DriverSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		cl.add(func() { db.Close() })
		if cfg.SQLitePath == ":memory:" {
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		if err := memberSQLite.InitSQLite(db); err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		log.Info("Using SQLite store", zap.String("path", cfg.SQLitePath))
		return memberSQLite.NewMemberRepoSQLite(db), nil

	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		cl.add(func() { db.Close() })
		if err := sharedUtils.Retry(ctx, 5, 500*time.Millisecond, func() error { return db.PingContext(ctx) }); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := memberPostgres.InitPostgres(db); err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		log.Info("Using Postgres store")
		return memberPostgres.NewMemberRepoPostgres(db), nil

	case config.DriverMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		cl.add(func() { _ = client.Disconnect(context.Background()) })
		repo, err := memberMongo.NewMemberRepoMongoDB(connectCtx, client, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		log.Info("Using MongoDB store", zap.String("db", cfg.MongoDB))
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openCache usa Redis si REDIS_ADDR está definido y responde; si no, caché en memoria.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger, cl *closer) sharedCache.Cache {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rc := memberCache.NewRedisMemberCache(rdb, "memberquery:", cfg.CacheTTL)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rc.Ping(pingCtx)
		if err == nil {
			cl.add(func() { rdb.Close() })
			log.Info("Redis connected, cache enabled", zap.String("addr", cfg.RedisAddr))
			return rc
		}
		log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		rdb.Close()
	}

	mc := memberCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	cl.add(mc.Stop)
	return mc
}

func buildService(ctx context.Context, cfg *config.Config, log *zap.Logger, cl *closer) (*application.MemberQueryService, error) {
	store, err := openStore(ctx, cfg, log, cl)
	if err != nil {
		return nil, err
	}
	cache := openCache(ctx, cfg, log, cl)
	return application.NewMemberQueryService(store, cache, cfg.CacheTTL, log), nil
}
