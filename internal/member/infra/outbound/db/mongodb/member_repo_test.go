package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func stageNames(p mongo.Pipeline) []string {
	var names []string
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestBuildPipeline_SearchShape(t *testing.T) {
	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{AgeGoe: intPtr(35), AgeLoe: intPtr(40), TeamName: strPtr("teamB")})
	require.NoError(t, err)

	p, err := BuildPipeline(spec, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"$lookup", "$unwind", "$match", "$sort", "$skip", "$limit", "$project"}, stageNames(p))

	match := p[2][0].Value.(bson.D)
	require.Len(t, match, 1)
	assert.Equal(t, "$and", match[0].Key)
	clauses := match[0].Value.(bson.A)
	assert.Len(t, clauses, 3)
	assert.Equal(t, bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: 35}}}}, clauses[0])
	assert.Equal(t, bson.D{{Key: "age", Value: bson.D{{Key: "$lte", Value: 40}}}}, clauses[1])
	assert.Equal(t, bson.D{{Key: "team.name", Value: bson.D{{Key: "$eq", Value: "teamB"}}}}, clauses[2])
}

func TestBuildPipeline_NoFilterNoMatchStage(t *testing.T) {
	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{})
	require.NoError(t, err)

	p, err := BuildPipeline(spec, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"$lookup", "$unwind", "$sort", "$project"}, stageNames(p))
}

func TestBuildPipeline_CountShape(t *testing.T) {
	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{Username: strPtr("member1")})
	require.NoError(t, err)

	p, err := BuildPipeline(spec.CountShape(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"$lookup", "$unwind", "$match", "$count"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: "username", Value: bson.D{{Key: "$eq", Value: "member1"}}}}, p[2][0].Value)
}

func TestBuildPipeline_UnknownFieldIsInvalidArgument(t *testing.T) {
	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{})
	require.NoError(t, err)
	spec.Filter = sharedDomain.And(&sharedDomain.Criterion{Field: "password", Op: sharedDomain.OpEq, Value: "x"})

	_, err = BuildPipeline(spec, 0, 0)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
}

func TestBuildPipeline_LikeBecomesAnchoredRegex(t *testing.T) {
	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{})
	require.NoError(t, err)
	spec.Filter = sharedDomain.And(&sharedDomain.Criterion{Field: domain.FieldTeamName, Op: sharedDomain.OpILike, Value: "team_%"})

	p, err := BuildPipeline(spec.CountShape(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "team.name", Value: bson.D{
		{Key: "$regex", Value: "^team..*$"},
		{Key: "$options", Value: "is"},
	}}}, p[2][0].Value)
}

// ---------------- Integración ----------------

func setupRepo(t *testing.T) *MemberRepoMongoDB {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI no está configurada, saltando test de integración con MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := fmt.Sprintf("memberquery_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo, err := NewMemberRepoMongoDB(ctx, client, dbName)
	require.NoError(t, err)

	teamA := &domain.Team{Name: "teamA"}
	teamB := &domain.Team{Name: "teamB"}
	require.NoError(t, repo.SaveTeam(ctx, teamA))
	require.NoError(t, repo.SaveTeam(ctx, teamB))
	for i, teamID := range []int64{teamA.ID, teamA.ID, teamB.ID, teamB.ID} {
		id := teamID
		m := &domain.Member{Username: []string{"member1", "member2", "member3", "member4"}[i], Age: (i + 1) * 10, TeamID: &id}
		require.NoError(t, repo.SaveMember(ctx, m))
	}
	require.NoError(t, repo.SaveMember(ctx, &domain.Member{Username: "loner", Age: 50}))
	return repo
}

func TestMongoIntegration_SearchPage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	spec, err := domain.NewSearchQuery(domain.MemberSearchCond{AgeGoe: intPtr(35), AgeLoe: intPtr(40), TeamName: strPtr("teamB")})
	require.NoError(t, err)
	rows, err := repo.FetchRows(ctx, spec, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "member4", rows[0].Username)

	all, err := domain.NewSearchQuery(domain.MemberSearchCond{})
	require.NoError(t, err)
	page, err := sharedQuery.FetchPage[domain.MemberTeamDto](ctx, sharedQuery.OffsetPagination{Offset: 4, Limit: 2},
		func(ctx context.Context, offset, limit int) ([]domain.MemberTeamDto, error) {
			return repo.FetchRows(ctx, all, offset, limit)
		},
		func(ctx context.Context) (int64, error) { return repo.FetchCount(ctx, all) },
	)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "loner", page.Content[0].Username)
	assert.Nil(t, page.Content[0].TeamID)
	assert.Equal(t, int64(5), page.Total)

	n, err := repo.FetchCount(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMongoIntegration_Lookups(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	m, err := repo.FindByUsername(ctx, "member1")
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = repo.FindTeamByName(ctx, "teamZ")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	err = repo.SaveTeam(ctx, &domain.Team{Name: "teamA"})
	assert.ErrorIs(t, err, domain.ErrTeamExists)

	n, err := repo.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
