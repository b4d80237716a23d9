package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// asyncTimeout acota cada escritura en background.
const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet actualiza la caché en background sin bloquear al llamante.
// Devuelve un canal que se cierra al terminar; los callers normales lo ignoran.
func AsyncCacheSet(c Cache, key string, value interface{}, ttl time.Duration, log *zap.Logger) <-chan struct{} {
	return async(log, "set", key, func(ctx context.Context) error {
		return c.Set(ctx, key, value, ttl)
	}, c == nil)
}

// AsyncCacheDelete invalida la key en background.
func AsyncCacheDelete(c Cache, key string, log *zap.Logger) <-chan struct{} {
	return async(log, "delete", key, func(ctx context.Context) error {
		return c.Delete(ctx, key)
	}, c == nil)
}

func async(log *zap.Logger, op, key string, fn func(ctx context.Context) error, skip bool) <-chan struct{} {
	done := make(chan struct{})
	if skip {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		// Contexto propio: la petición original puede haber terminado ya.
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := fn(ctx); err != nil && log != nil {
			log.Warn("Cache operation failed",
				zap.String("op", op),
				zap.String("key", key),
				zap.Error(err))
		}
	}()
	return done
}
