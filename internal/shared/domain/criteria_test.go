package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnd_SkipsAbsentPredicates(t *testing.T) {
	name := &Criterion{Field: "username", Op: OpEq, Value: "member1"}
	age := &Criterion{Field: "age", Op: OpGte, Value: 10}

	conj := And(nil, name, nil, age)

	assert.Len(t, conj, 2)
	assert.Equal(t, []Criterion{*name, *age}, conj.ToConditions())
}

func TestAnd_AllAbsentIsEmpty(t *testing.T) {
	conj := And(nil, nil)

	assert.True(t, conj.IsEmpty())
	assert.Empty(t, conj.ToConditions())
}

func TestSearchError_KindsMatchSentinels(t *testing.T) {
	cause := errors.New("timeout")

	storage := StorageError("fetch_rows", "search", cause)
	assert.ErrorIs(t, storage, ErrStorage)
	assert.ErrorIs(t, storage, cause)
	assert.NotErrorIs(t, storage, ErrMapping)
	assert.Equal(t, KindStorage, KindOf(storage))
	assert.Contains(t, storage.Error(), "shape=search")

	invalid := InvalidArgument("paginate", "limit", "limit must be > 0, got %d", 0)
	assert.ErrorIs(t, invalid, ErrInvalidArgument)
	assert.Contains(t, invalid.Error(), "field=limit")

	mapping := MappingError("username", errors.New("unexpected null"))
	assert.ErrorIs(t, mapping, ErrMapping)
	assert.Equal(t, KindMapping, KindOf(mapping))
}

func TestStorageError_KeepsClassifiedErrors(t *testing.T) {
	mapping := MappingError("age", errors.New("unexpected null"))

	wrapped := StorageError("fetch_rows", "search", mapping)

	assert.Same(t, mapping, wrapped)
	assert.Equal(t, KindMapping, KindOf(wrapped))
	assert.Nil(t, StorageError("fetch_rows", "search", nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestLikePattern_AnchoredTranslation(t *testing.T) {
	assert.Equal(t, "^abc.*$", LikePattern("abc%"))
	assert.Equal(t, `^a\.b.$`, LikePattern("a.b_"))

	assert.True(t, MatchLike("abcdef", "abc%", false))
	assert.False(t, MatchLike("xabcx", "abc%", false))
	assert.True(t, MatchLike("xabcx", "%abc%", false))
	assert.False(t, MatchLike("ABC", "abc", false))
	assert.True(t, MatchLike("ABC", "abc", true))
	assert.False(t, MatchLike("a+b", "a.b", false))
}
