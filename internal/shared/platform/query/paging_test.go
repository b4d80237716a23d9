package query

import (
	"context"
	"errors"
	"math"
	"testing"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource simula un almacenamiento de n filas y cuenta las llamadas a count.
type fakeSource struct {
	rows       []int
	fetchCalls int
	countCalls int
	fetchErr   error
	countErr   error
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{}
	for i := 1; i <= n; i++ {
		s.rows = append(s.rows, i)
	}
	return s
}

func (s *fakeSource) fetch(ctx context.Context, offset, limit int) ([]int, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func (s *fakeSource) count(ctx context.Context) (int64, error) {
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.rows)), nil
}

func TestFetchPage_FirstPageRunsCount(t *testing.T) {
	src := newFakeSource(4)

	page, err := FetchPage(context.Background(), OffsetPagination{Offset: 0, Limit: 2}, src.fetch, src.count)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, page.Content)
	assert.Equal(t, int64(4), page.Total)
	assert.True(t, page.HasNext())
	assert.Equal(t, 1, src.countCalls)
}

func TestFetchPage_LastPageSkipsCount(t *testing.T) {
	src := newFakeSource(4)

	page, err := FetchPage(context.Background(), OffsetPagination{Offset: 3, Limit: 2}, src.fetch, src.count)
	require.NoError(t, err)

	assert.Equal(t, []int{4}, page.Content)
	assert.Equal(t, int64(4), page.Total)
	assert.False(t, page.HasNext())
	assert.True(t, page.IsLast())
	assert.Equal(t, 0, src.countCalls)
}

func TestFetchPage_SmallFirstPageSkipsCount(t *testing.T) {
	src := newFakeSource(3)

	page, err := FetchPage(context.Background(), OffsetPagination{Offset: 0, Limit: 10}, src.fetch, src.count)
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 0, src.countCalls)
}

func TestFetchPage_EmptyPageBeyondEndCounts(t *testing.T) {
	src := newFakeSource(4)

	page, err := FetchPage(context.Background(), OffsetPagination{Offset: 10, Limit: 2}, src.fetch, src.count)
	require.NoError(t, err)

	assert.Empty(t, page.Content)
	assert.NotNil(t, page.Content)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 1, src.countCalls)
}

func TestFetchPage_OptimizationNeverChangesTotal(t *testing.T) {
	for n := 0; n <= 7; n++ {
		for limit := 1; limit <= 5; limit++ {
			for offset := 0; offset <= 8; offset++ {
				p := OffsetPagination{Offset: offset, Limit: limit}

				optimized, err := FetchPage(context.Background(), p, newFakeSource(n).fetch, newFakeSource(n).count)
				require.NoError(t, err)
				combined, err := FetchPageWithCount(context.Background(), p, newFakeSource(n).fetch, newFakeSource(n).count)
				require.NoError(t, err)

				assert.Equal(t, combined, optimized, "n=%d offset=%d limit=%d", n, offset, limit)
				assert.Equal(t, int64(n), optimized.Total, "n=%d offset=%d limit=%d", n, offset, limit)
			}
		}
	}
}

func TestFetchPageWithCount_AlwaysCounts(t *testing.T) {
	src := newFakeSource(4)

	_, err := FetchPageWithCount(context.Background(), OffsetPagination{Offset: 3, Limit: 2}, src.fetch, src.count)
	require.NoError(t, err)
	assert.Equal(t, 1, src.countCalls)
}

func TestFetchPage_InvalidBoundsRejectedBeforeStorage(t *testing.T) {
	tests := []struct {
		name  string
		p     OffsetPagination
		field string
	}{
		{name: "offset negativo", p: OffsetPagination{Offset: -1, Limit: 2}, field: "offset"},
		{name: "limit cero", p: OffsetPagination{Offset: 0, Limit: 0}, field: "limit"},
		{name: "limit negativo", p: OffsetPagination{Offset: 0, Limit: -5}, field: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(4)
			_, err := FetchPage(context.Background(), tt.p, src.fetch, src.count)

			assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
			var se *sharedDomain.SearchError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, 0, src.fetchCalls)
			assert.Equal(t, 0, src.countCalls)
		})
	}
}

func TestFetchPage_StorageErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")

	src := newFakeSource(4)
	src.fetchErr = boom
	_, err := FetchPage(context.Background(), OffsetPagination{Offset: 0, Limit: 2}, src.fetch, src.count)
	assert.ErrorIs(t, err, sharedDomain.ErrStorage)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.fetchCalls, "no retries")

	src = newFakeSource(4)
	src.countErr = boom
	page, err := FetchPage(context.Background(), OffsetPagination{Offset: 0, Limit: 2}, src.fetch, src.count)
	assert.ErrorIs(t, err, sharedDomain.ErrStorage)
	assert.Nil(t, page.Content, "no partial page on error")

	var se *sharedDomain.SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "count", se.Shape)
}

func TestPage_HasNextHugeOffsetDoesNotOverflow(t *testing.T) {
	page := Page[int]{Offset: math.MaxInt, Limit: 20, Total: 4}
	assert.False(t, page.HasNext())
	assert.True(t, page.IsLast())

	src := newFakeSource(4)
	got, err := FetchPage(context.Background(), OffsetPagination{Offset: math.MaxInt, Limit: 20}, src.fetch, src.count)
	require.NoError(t, err)
	assert.Empty(t, got.Content)
	assert.Equal(t, int64(4), got.Total)
	assert.False(t, got.HasNext())
}

func TestPage_HasNextBoundaries(t *testing.T) {
	assert.True(t, Page[int]{Offset: 0, Limit: 2, Total: 3}.HasNext())
	assert.False(t, Page[int]{Offset: 0, Limit: 3, Total: 3}.HasNext())
	assert.False(t, Page[int]{Offset: 2, Limit: 2, Total: 3}.HasNext())
}
