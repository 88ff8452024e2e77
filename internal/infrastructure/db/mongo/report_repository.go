package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const collectionReports = "reports"

// ReportRepository implements ports.ReportRepository using MongoDB.
// Reports reference their owner by the users collection ObjectID.
type ReportRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		col: db.Collection(collectionReports),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

type reportDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id"`
	Category    string              `bson:"category"`
	Location    string              `bson:"location"`
	Description string              `bson:"description"`
	Coordinates *domain.Coordinates `bson:"coordinates,omitempty"`
	PhotoURL    string              `bson:"photo_url"`
	Status      string              `bson:"status"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

// reportViewDoc is a report joined with its author by the listing pipeline.
type reportViewDoc struct {
	reportDoc `bson:",inline"`
	Author    []struct {
		Name string `bson:"name"`
	} `bson:"author"`
}

func (d reportDoc) toDomain() domain.Report {
	return domain.Report{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Category:    d.Category,
		Location:    d.Location,
		Description: d.Description,
		Coordinates: d.Coordinates,
		PhotoURL:    d.PhotoURL,
		Status:      domain.ReportStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (d reportViewDoc) toView(withAuthor bool) domain.ReportView {
	v := domain.ReportView{Report: d.reportDoc.toDomain()}
	if withAuthor {
		v.AuthorName = domain.AuthorNotFound
		if len(d.Author) > 0 && d.Author[0].Name != "" {
			v.AuthorName = d.Author[0].Name
		}
	}
	return v
}

// Create stores r as a pending report and fills in its id and timestamps.
func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(rep.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid owner id %q: %w", rep.UserID, err)
	}

	now := r.now()
	doc := reportDoc{
		ID:          primitive.NewObjectID(),
		UserID:      owner,
		Category:    rep.Category,
		Location:    rep.Location,
		Description: rep.Description,
		Coordinates: rep.Coordinates,
		PhotoURL:    rep.PhotoURL,
		Status:      string(domain.StatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}

	rep.ID = doc.ID.Hex()
	rep.Status = domain.StatusPending
	rep.CreatedAt = now
	rep.UpdatedAt = now
	return rep.ID, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReportNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	rep := doc.toDomain()
	return &rep, nil
}

// ListByUser returns the user's reports, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]domain.Report, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Report{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ListAll returns one page of reports, newest first, together with the number
// of reports matching the filter. withAuthor joins the author display name.
func (r *ReportRepository) ListAll(ctx context.Context, f ports.ListReportsFilter, withAuthor bool) ([]domain.ReportView, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := listFilter(f)
	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.col.Aggregate(ctx, listPipeline(match, f, withAuthor))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []reportViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	out := make([]domain.ReportView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toView(withAuthor))
	}
	return out, total, nil
}

func listFilter(f ports.ListReportsFilter) bson.M {
	match := bson.M{}
	if f.Status != "" {
		match["status"] = string(f.Status)
	}
	if f.Category != "" {
		match["category"] = f.Category
	}
	return match
}

func listPipeline(match bson.M, f ports.ListReportsFilter, withAuthor bool) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64((page - 1) * f.Limit)}},
			bson.D{{Key: "$limit", Value: int64(f.Limit)}},
		)
	}
	if withAuthor {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}})
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D{
			{Key: "author.password_hash", Value: 0},
			{Key: "author.email", Value: 0},
		}}})
	}
	return pipeline
}

// CountByStatus groups the whole collection by status in one aggregation.
func (r *ReportRepository) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return domain.StatusCounts{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domain.StatusCounts{}, err
	}

	var counts domain.StatusCounts
	for _, row := range rows {
		counts.Add(domain.ReportStatus(row.Status), row.Count)
	}
	return counts, nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReportNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": r.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc reportDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	rep := doc.toDomain()
	return &rep, nil
}

// Delete removes a report and returns what was removed.
func (r *ReportRepository) Delete(ctx context.Context, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReportNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	rep := doc.toDomain()
	return &rep, nil
}

// EnsureIndexes creates necessary indexes on the reports collection.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
