package domain

import (
	"testing"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func presentCount(preds []*sharedDomain.Criterion) int {
	n := 0
	for _, p := range preds {
		if p != nil {
			n++
		}
	}
	return n
}

func TestBuildPredicates_EmptyCond(t *testing.T) {
	preds := BuildPredicates(MemberSearchCond{})

	assert.Len(t, preds, 4)
	assert.Equal(t, 0, presentCount(preds))
	assert.Empty(t, MemberSearchCond{}.ToConditions())
}

func TestBuildPredicates_ExactlyOneFieldSet(t *testing.T) {
	tests := []struct {
		name     string
		cond     MemberSearchCond
		slot     int
		expected sharedDomain.Criterion
	}{
		{
			name:     "username",
			cond:     MemberSearchCond{Username: strPtr("member1")},
			slot:     0,
			expected: sharedDomain.Criterion{Field: FieldUsername, Op: sharedDomain.OpEq, Value: "member1"},
		},
		{
			name:     "age goe",
			cond:     MemberSearchCond{AgeGoe: intPtr(35)},
			slot:     1,
			expected: sharedDomain.Criterion{Field: FieldAge, Op: sharedDomain.OpGte, Value: 35},
		},
		{
			name:     "age loe",
			cond:     MemberSearchCond{AgeLoe: intPtr(40)},
			slot:     2,
			expected: sharedDomain.Criterion{Field: FieldAge, Op: sharedDomain.OpLte, Value: 40},
		},
		{
			name:     "team name",
			cond:     MemberSearchCond{TeamName: strPtr("teamB")},
			slot:     3,
			expected: sharedDomain.Criterion{Field: FieldTeamName, Op: sharedDomain.OpEq, Value: "teamB", Partner: PartnerTeam},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := BuildPredicates(tt.cond)

			assert.Equal(t, 1, presentCount(preds))
			require.NotNil(t, preds[tt.slot])
			assert.Equal(t, tt.expected, *preds[tt.slot])
			assert.Len(t, tt.cond.ToConditions(), 1)
		})
	}
}

func TestBuildPredicates_ZeroValuesArePresent(t *testing.T) {
	// Un valor cero explícito sigue siendo un filtro.
	preds := BuildPredicates(MemberSearchCond{Username: strPtr(""), AgeGoe: intPtr(0)})

	assert.Equal(t, 2, presentCount(preds))
}

func TestNewSearchQuery_Shape(t *testing.T) {
	cond := MemberSearchCond{AgeGoe: intPtr(35), AgeLoe: intPtr(40), TeamName: strPtr("teamB")}

	spec, err := NewSearchQuery(cond)
	require.NoError(t, err)

	assert.Equal(t, sharedQuery.ShapeSearch, spec.Shape)
	assert.Equal(t, MemberTable, spec.Table)
	require.Len(t, spec.Joins, 1)
	assert.True(t, spec.Joins[0].Left)
	assert.Equal(t, TeamTable, spec.Joins[0].Table)
	assert.Len(t, spec.Filter, 3)
	assert.Equal(t, []sharedQuery.Sort{DefaultSort}, spec.Order)

	var aliases []string
	for _, c := range spec.Columns {
		aliases = append(aliases, c.Alias)
	}
	assert.Equal(t, ProjectionColumns, aliases)

	count := spec.CountShape()
	assert.Equal(t, sharedQuery.ShapeCount, count.Shape)
	assert.Equal(t, spec.Filter, count.Filter)
	assert.Equal(t, spec.Joins, count.Joins)
	assert.Empty(t, count.Columns)
	assert.Empty(t, count.Order)
}

func TestNewSearchQuery_NoPredicatesNoFilter(t *testing.T) {
	spec, err := NewSearchQuery(MemberSearchCond{})
	require.NoError(t, err)

	assert.True(t, spec.Filter.IsEmpty())
}

func TestNewSearchQuery_Sorts(t *testing.T) {
	spec, err := NewSearchQuery(MemberSearchCond{}, sharedQuery.Sort{Field: FieldAge, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []sharedQuery.Sort{{Field: FieldAge, Desc: true}, DefaultSort}, spec.Order)

	spec, err = NewSearchQuery(MemberSearchCond{}, sharedQuery.Sort{Field: FieldMemberID, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []sharedQuery.Sort{{Field: FieldMemberID, Desc: true}}, spec.Order)

	_, err = NewSearchQuery(MemberSearchCond{}, sharedQuery.Sort{Field: "password"})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
}

func TestMember_Validate(t *testing.T) {
	assert.NoError(t, (&Member{Username: "member1", Age: 10}).Validate())
	assert.ErrorIs(t, (&Member{Age: 10}).Validate(), ErrInvalidMember)
	assert.ErrorIs(t, (&Member{Username: "x", Age: -1}).Validate(), ErrInvalidMember)
}
