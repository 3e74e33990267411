package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Misakait/hullwatch/models"
)

// ErrNotFound reports that an id did not match any stored document.
var ErrNotFound = errors.New("document not found")

// ReportService owns the reports collection.
type ReportService struct {
	col *mongo.Collection
}

func NewReportService(col *mongo.Collection) *ReportService {
	return &ReportService{col: col}
}

// Insert writes a new report with the enrichment text absent and returns the
// generated id. The caller must not acknowledge the create before this
// returns.
func (s *ReportService) Insert(ctx context.Context, in models.ReportInput, photoPaths []string) (primitive.ObjectID, error) {
	if photoPaths == nil {
		photoPaths = []string{}
	}
	doc := models.Report{
		ID:         primitive.NewObjectID(),
		CreatedAt:  time.Now().UTC(),
		PhotoPaths: photoPaths,
		Detail:     in.Detail,
		Title:      in.Title,
		Rust:       in.Rust,
		Covering:   in.Covering,
		Damage:     in.Damage,
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert report: %w", err)
	}
	return doc.ID, nil
}

// SetAIReport attaches the generated summary to one report. A repeated call
// overwrites; the enricher schedules at most one job per report, so that path
// is unreachable in normal operation. Returns ErrNotFound when the report was
// deleted while the summary was in flight.
func (s *ReportService) SetAIReport(ctx context.Context, id primitive.ObjectID, text string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"aiReport": text}})
	if err != nil {
		return fmt.Errorf("set ai report: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns nil without error when the id matches nothing.
func (s *ReportService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var r models.Report
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &r, nil
}

// GetLatest returns the most recently created report, or nil when the
// collection is empty.
func (s *ReportService) GetLatest(ctx context.Context) (*models.Report, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var r models.Report
	err := s.col.FindOne(ctx, bson.M{}, opts).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest report: %w", err)
	}
	return &r, nil
}

func (s *ReportService) GetAll(ctx context.Context) ([]models.Report, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Report, 0)
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func (s *ReportService) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every report and returns how many were deleted.
func (s *ReportService) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete reports: %w", err)
	}
	return res.DeletedCount, nil
}
