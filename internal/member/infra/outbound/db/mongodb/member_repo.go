package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
)

const (
	membersColl  = "members"
	teamsColl    = "teams"
	countersColl = "counters"
)

// memberDocFields traduce los campos lógicos a rutas del documento tras el $lookup.
var memberDocFields = map[string]string{
	domain.FieldMemberID: "_id",
	domain.FieldUsername: "username",
	domain.FieldAge:      "age",
	domain.FieldTeamID:   "team._id",
	domain.FieldTeamName: "team.name",
}

// MemberRepoMongoDB resuelve el join miembro-equipo con una agregación $lookup.
type MemberRepoMongoDB struct {
	members  *mongo.Collection
	teams    *mongo.Collection
	counters *mongo.Collection
}

var _ domain.Store = (*MemberRepoMongoDB)(nil)

func NewMemberRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*MemberRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	r := &MemberRepoMongoDB{
		members:  db.Collection(membersColl),
		teams:    db.Collection(teamsColl),
		counters: db.Collection(countersColl),
	}

	_, err := r.members.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}})
	if err != nil {
		return nil, fmt.Errorf("create username index: %w", err)
	}
	_, err = r.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create team name index: %w", err)
	}
	return r, nil
}

// --- Structs de BSON ---

type mongoTeam struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

type mongoMember struct {
	ID       int64  `bson:"_id"`
	Username string `bson:"username"`
	Age      int    `bson:"age"`
	TeamID   *int64 `bson:"teamId,omitempty"`
}

func fromMongoMember(mm *mongoMember) *domain.Member {
	return &domain.Member{ID: mm.ID, Username: mm.Username, Age: mm.Age, TeamID: mm.TeamID}
}

// nextID obtiene ids enteros crecientes por colección, como un autoincremento.
func (r *MemberRepoMongoDB) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// --- Escritura ---

func (r *MemberRepoMongoDB) SaveTeam(ctx context.Context, t *domain.Team) error {
	id, err := r.nextID(ctx, teamsColl)
	if err != nil {
		return err
	}
	_, err = r.teams.InsertOne(ctx, mongoTeam{ID: id, Name: t.Name})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert team %q: %w", t.Name, domain.ErrTeamExists)
	}
	if err != nil {
		return fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	t.ID = id
	return nil
}

func (r *MemberRepoMongoDB) SaveMember(ctx context.Context, m *domain.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	id, err := r.nextID(ctx, membersColl)
	if err != nil {
		return err
	}
	doc := mongoMember{ID: id, Username: m.Username, Age: m.Age, TeamID: m.TeamID}
	if _, err := r.members.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert member %q: %w", m.Username, err)
	}
	m.ID = id
	return nil
}

// --- Lectura ---

func (r *MemberRepoMongoDB) FindTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	var mt mongoTeam
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.teams.FindOne(ctx, bson.M{"name": name}, opts).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("find team %q: %w", name, err)
	}
	return &domain.Team{ID: mt.ID, Name: mt.Name}, nil
}

func (r *MemberRepoMongoDB) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MemberRepoMongoDB) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MemberRepoMongoDB) findOne(ctx context.Context, filter bson.M) (*domain.Member, error) {
	var mm mongoMember
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.members.FindOne(ctx, filter, opts).Decode(&mm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return fromMongoMember(&mm), nil
}

func (r *MemberRepoMongoDB) ListMembers(ctx context.Context, offset, limit int) ([]*domain.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.members.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer cursor.Close(ctx)

	var list []*domain.Member
	for cursor.Next(ctx) {
		var mm mongoMember
		if err := cursor.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		list = append(list, fromMongoMember(&mm))
	}
	return list, cursor.Err()
}

func (r *MemberRepoMongoDB) CountMembers(ctx context.Context) (int64, error) {
	n, err := r.members.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// --- Consultas de búsqueda ---

// FetchRows ejecuta el pipeline y materializa cada documento por nombre con ProjectFields.
func (r *MemberRepoMongoDB) FetchRows(ctx context.Context, spec sharedQuery.Spec, offset, limit int) ([]domain.MemberTeamDto, error) {
	pipeline, err := BuildPipeline(spec, offset, limit)
	if err != nil {
		return nil, err
	}

	cursor, err := r.members.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.MemberTeamDto
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode search row: %w", err)
		}
		dto, err := domain.ProjectFields(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return out, nil
}

func (r *MemberRepoMongoDB) FetchCount(ctx context.Context, spec sharedQuery.Spec) (int64, error) {
	spec = spec.CountShape()
	pipeline, err := BuildPipeline(spec, 0, 0)
	if err != nil {
		return 0, err
	}

	cursor, err := r.members.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	defer cursor.Close(ctx)

	// $count no emite documento si no hay coincidencias.
	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	var doc struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.Decode(&doc); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return doc.Total, nil
}

// BuildPipeline traduce una Spec a un pipeline de agregación:
// $lookup + $unwind conservando huérfanos equivale al LEFT JOIN.
func BuildPipeline(spec sharedQuery.Spec, offset, limit int) (mongo.Pipeline, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: teamsColl},
			{Key: "localField", Value: "teamId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "team"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$team"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	match, err := criteriaToMongoFilter(spec.Filter)
	if err != nil {
		return nil, err
	}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	if spec.Shape == sharedQuery.ShapeCount {
		return append(pipeline, bson.D{{Key: "$count", Value: "total"}}), nil
	}

	if len(spec.Order) > 0 {
		sortDoc := bson.D{}
		for _, s := range spec.Order {
			path, ok := memberDocFields[s.Field]
			if !ok {
				return nil, sharedDomain.InvalidArgument("render", s.Field, "unknown sort field %q", s.Field)
			}
			dir := 1
			if s.Desc {
				dir = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: path, Value: dir})
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortDoc}})
	}

	if offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(offset)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}

	project := bson.D{{Key: "_id", Value: 0}}
	for _, f := range domain.ProjectionColumns {
		project = append(project, bson.E{Key: f, Value: "$" + memberDocFields[f]})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: project}}), nil
}

// criteriaToMongoFilter combina las condiciones con $and para que dos
// condiciones sobre el mismo campo (rango de edad) no se pisen.
func criteriaToMongoFilter(conj sharedDomain.Conjunction) (bson.D, error) {
	conds := conj.ToConditions()
	if len(conds) == 0 {
		return bson.D{}, nil
	}

	clauses := bson.A{}
	for _, c := range conds {
		path, ok := memberDocFields[c.Field]
		if !ok {
			return nil, sharedDomain.InvalidArgument("render", c.Field, "unknown filter field %q", c.Field)
		}

		var cond bson.D
		switch c.Op {
		case sharedDomain.OpEq:
			cond = bson.D{{Key: "$eq", Value: c.Value}}
		case sharedDomain.OpGt:
			cond = bson.D{{Key: "$gt", Value: c.Value}}
		case sharedDomain.OpGte:
			cond = bson.D{{Key: "$gte", Value: c.Value}}
		case sharedDomain.OpLt:
			cond = bson.D{{Key: "$lt", Value: c.Value}}
		case sharedDomain.OpLte:
			cond = bson.D{{Key: "$lte", Value: c.Value}}
		case sharedDomain.OpLike, sharedDomain.OpILike:
			opts := "s"
			if c.Op == sharedDomain.OpILike {
				opts = "is"
			}
			cond = bson.D{
				{Key: "$regex", Value: sharedDomain.LikePattern(fmt.Sprintf("%v", c.Value))},
				{Key: "$options", Value: opts},
			}
		default:
			return nil, sharedDomain.InvalidArgument("render", c.Field, "unsupported operator %q", c.Op)
		}
		clauses = append(clauses, bson.D{{Key: path, Value: cond}})
	}

	if len(clauses) == 1 {
		return clauses[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}
