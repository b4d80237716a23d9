package query

import (
	"context"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
)

// FetchFunc obtiene como máximo limit filas a partir de offset.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// CountFunc obtiene el total exacto de coincidencias del mismo filtro.
type CountFunc func(ctx context.Context) (int64, error)

// CanSkipCount indica si el total se deduce de la página ya obtenida.
// Una página incompleta es la última: total = offset + filas.
// Una página vacía con offset > 0 no prueba nada (el offset puede estar
// pasado del final), así que en ese caso hay que contar.
func CanSkipCount(p OffsetPagination, fetched int) bool {
	if fetched >= p.Limit {
		return false
	}
	if p.Offset == 0 {
		return true
	}
	return fetched > 0
}

// FetchPage ejecuta la consulta paginada y solo lanza el count cuando
// el total no puede deducirse de la propia página.
func FetchPage[T any](ctx context.Context, p OffsetPagination, fetch FetchFunc[T], count CountFunc) (Page[T], error) {
	return fetchPage(ctx, p, fetch, count, true)
}

// FetchPageWithCount ejecuta siempre ambas consultas (ruta combinada).
func FetchPageWithCount[T any](ctx context.Context, p OffsetPagination, fetch FetchFunc[T], count CountFunc) (Page[T], error) {
	return fetchPage(ctx, p, fetch, count, false)
}

func fetchPage[T any](ctx context.Context, p OffsetPagination, fetch FetchFunc[T], count CountFunc, optimize bool) (Page[T], error) {
	if err := p.Validate(); err != nil {
		return Page[T]{}, err
	}

	content, err := fetch(ctx, p.Offset, p.Limit)
	if err != nil {
		return Page[T]{}, sharedDomain.StorageError("fetch_rows", string(ShapeSearch), err)
	}
	if content == nil {
		content = []T{}
	}

	var total int64
	if optimize && CanSkipCount(p, len(content)) {
		total = int64(p.Offset) + int64(len(content))
	} else {
		total, err = count(ctx)
		if err != nil {
			return Page[T]{}, sharedDomain.StorageError("fetch_count", string(ShapeCount), err)
		}
	}

	return Page[T]{
		Content: content,
		Offset:  p.Offset,
		Limit:   p.Limit,
		Total:   total,
	}, nil
}
