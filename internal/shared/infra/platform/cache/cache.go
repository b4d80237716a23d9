package cache

import (
	"context"
	"time"
)

// Cache es una caché clave-valor con serialización a cargo de la implementación.
type Cache interface {
	// Get rellena dest (puntero) y devuelve true si hay hit; (false, nil) en un miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda val con el TTL indicado; ttl <= 0 usa el TTL por defecto de la implementación.
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
