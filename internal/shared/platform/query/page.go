package query

// Page es un tramo ordenado de resultados junto con el total exacto de coincidencias.
type Page[T any] struct {
	Content []T   `json:"content"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
}

// HasNext indica si existen resultados más allá de esta página. La suma se
// hace en int64 para que un offset cercano a MaxInt no desborde.
func (p Page[T]) HasNext() bool {
	end := int64(p.Offset) + int64(p.Limit)
	if end < int64(p.Offset) {
		return false
	}
	return end < p.Total
}

func (p Page[T]) IsLast() bool {
	return !p.HasNext()
}

func (p Page[T]) Size() int {
	return len(p.Content)
}
