// Package mongopostings is the MongoDB-backed discovery store. Relevance is
// the server-side textScore of a text index over title and tags.
package mongopostings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "jobs"

type salaryDoc struct {
	Amount  int64 `bson:"amount"`
	Visible bool  `bson:"visible"`
}

type postingDoc struct {
	ID          string    `bson:"_id"`
	EmployerID  string    `bson:"employer_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Tags        []string  `bson:"tags"`
	City        string    `bson:"city"`
	Region      string    `bson:"region"`
	JobType     string    `bson:"job_type"`
	Category    string    `bson:"category"`
	Salary      salaryDoc `bson:"salary"`
	Tier        string    `bson:"tier"`
	TierRank    int       `bson:"tier_rank"`
	Status      string    `bson:"status"`
	IsDeleted   bool      `bson:"is_deleted"`
	PostedAt    time.Time `bson:"posted_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
	Score       float64   `bson:"score,omitempty"`
}

func toDoc(p *models.Posting) postingDoc {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postingDoc{
		ID: p.ID, EmployerID: p.EmployerID, Title: p.Title, Description: p.Description, Tags: tags,
		City: p.City, Region: p.Region, JobType: p.JobType, Category: p.Category,
		Salary: salaryDoc{Amount: p.Salary.Amount, Visible: p.Salary.Visible},
		Tier:   string(p.Tier), TierRank: p.Tier.Rank(), Status: string(p.Status), IsDeleted: p.IsDeleted,
		PostedAt: p.PostedAt.UTC(), UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func (d *postingDoc) posting() models.Posting {
	return models.Posting{
		ID: d.ID, EmployerID: d.EmployerID, Title: d.Title, Description: d.Description, Tags: d.Tags,
		City: d.City, Region: d.Region, JobType: d.JobType, Category: d.Category,
		Salary: models.Salary{Amount: d.Salary.Amount, Visible: d.Salary.Visible},
		Tier:   models.Tier(d.Tier), Status: models.Status(d.Status), IsDeleted: d.IsDeleted,
		PostedAt: d.PostedAt, UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepository implements discovery.Store over a single collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the text and filter indexes searches rely on.
// Creating an index that already exists is a no-op on the server.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	idx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "tags", Value: "text"}},
			Options: options.Index().SetName("title_tags_text").SetWeights(bson.D{{Key: "title", Value: 2}, {Key: "tags", Value: 1}}),
		},
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "posted_at", Value: -1}}},
		{Keys: bson.D{{Key: "tier_rank", Value: -1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}}},
		{Keys: bson.D{{Key: "employer_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "posted_at", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("create indexes: %w", wrap(err))
	}
	return nil
}

// Upsert replaces the document only when the stored updated_at is not newer.
// When it is, the filter misses, the implied insert collides on _id and the
// duplicate key error marks the write as stale.
func (r *MongoRepository) Upsert(ctx context.Context, p *models.Posting) error {
	doc := toDoc(p)
	filter := bson.D{{Key: "_id", Value: doc.ID}, {Key: "updated_at", Value: bson.D{{Key: "$lte", Value: doc.UpdatedAt}}}}

	_, err := r.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("db error: %w", wrap(err))
	}
	return nil
}

func (r *MongoRepository) Remove(ctx context.Context, id string, at time.Time) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "is_deleted", Value: false},
		{Key: "updated_at", Value: bson.D{{Key: "$lte", Value: at.UTC()}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "is_deleted", Value: true}, {Key: "updated_at", Value: at.UTC()}}}}

	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("db error: %w", wrap(err))
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Posting, error) {
	var doc postingDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", wrap(err))
	}
	p := doc.posting()
	return &p, nil
}

func (r *MongoRepository) Search(ctx context.Context, q discovery.Query) ([]discovery.Hit, error) {
	result := []discovery.Hit{}

	f := q.Filter
	if f.Status != "" && f.Status != models.StatusActive {
		return result, nil
	}

	filter, hasText := buildFilter(f)
	opts := options.Find().
		SetSort(buildSort(q.Sort, hasText)).
		SetSkip(int64(q.Page.Offset)).
		SetLimit(int64(q.Page.Limit))
	if hasText {
		opts.SetProjection(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search postings: %w", wrap(err))
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc postingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode posting: %w", err)
		}
		result = append(result, discovery.Hit{Posting: doc.posting(), Score: doc.Score})
	}
	if err := cur.Err(); err != nil {
		return nil, wrap(err)
	}
	return result, nil
}

// buildFilter always starts with the exclusion predicates.
func buildFilter(f discovery.Filter) (bson.D, bool) {
	filter := bson.D{
		{Key: "is_deleted", Value: false},
		{Key: "status", Value: string(models.StatusActive)},
	}
	terms := discovery.Terms(f.Text)
	if len(terms) > 0 {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: strings.Join(terms, " ")}}})
	}
	for _, e := range []struct{ key, val string }{
		{"city", f.City}, {"category", f.Category}, {"job_type", f.JobType}, {"employer_id", f.EmployerID},
	} {
		if e.val != "" {
			filter = append(filter, bson.E{Key: e.key, Value: e.val})
		}
	}
	if !f.PostedFrom.IsZero() || !f.PostedTo.IsZero() {
		rng := bson.D{}
		if !f.PostedFrom.IsZero() {
			rng = append(rng, bson.E{Key: "$gte", Value: f.PostedFrom.UTC()})
		}
		if !f.PostedTo.IsZero() {
			rng = append(rng, bson.E{Key: "$lte", Value: f.PostedTo.UTC()})
		}
		filter = append(filter, bson.E{Key: "posted_at", Value: rng})
	}
	return filter, len(terms) > 0
}

func buildSort(s discovery.Sort, hasText bool) bson.D {
	if s == discovery.SortRecent {
		return bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: 1}}
	}
	sort := bson.D{{Key: "tier_rank", Value: -1}}
	if hasText {
		sort = append(sort, bson.E{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}})
	}
	return append(sort, bson.E{Key: "posted_at", Value: -1}, bson.E{Key: "_id", Value: 1})
}

func wrap(err error) error {
	if mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", common.ErrTimeout, err)
	}
	return err
}
