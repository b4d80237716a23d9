package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedThenSearch_SQLite(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	path := filepath.Join(t.TempDir(), "members.db")
	base := []string{"--driver", "sqlite", "--sqlite-path", path, "--log-level", "error"}

	out, err := run(t, append(base, "seed")...)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 members")

	out, err = run(t, append(base, "search", "--age-goe", "35", "--age-loe", "40", "--team-name", "teamB")...)
	require.NoError(t, err)

	var page sharedQuery.Page[domain.MemberTeamDto]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, "member4", page.Content[0].Username)
	assert.Equal(t, int64(1), page.Total)

	out, err = run(t, append(base, "search", "--offset", "3", "--limit", "2", "--simple")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(4), page.Total)
}

func TestSearch_InvalidDriver(t *testing.T) {
	_, err := run(t, "--driver", "oracle", "search")
	assert.Error(t, err)
}

func TestSearch_UnknownSortField(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	_, err := run(t, "--driver", "memory", "--log-level", "error", "search", "--sort", "password")
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
}
