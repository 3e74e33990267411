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

// TrackService owns the track segments collection. TotalPoints is maintained
// here and always equals the stored coordinate count.
type TrackService struct {
	col *mongo.Collection
}

func NewTrackService(col *mongo.Collection) *TrackService {
	return &TrackService{col: col}
}

// Create stores a new track segment and returns its id. StartTime defaults to
// now when the client omits it; the point count is computed, never trusted.
func (s *TrackService) Create(ctx context.Context, in models.TrackInput) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	start := now
	if in.StartTime != nil {
		start = in.StartTime.UTC()
	}
	doc := models.ShipTrack{
		ID:          primitive.NewObjectID(),
		StartTime:   start,
		LastUpdate:  now,
		Track:       normalizeLine(in.Track),
		TotalPoints: len(in.Track.Coordinates),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert track: %w", err)
	}
	return doc.ID, nil
}

// Get returns nil without error when the id matches nothing.
func (s *TrackService) Get(ctx context.Context, id primitive.ObjectID) (*models.ShipTrack, error) {
	var t models.ShipTrack
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find track: %w", err)
	}
	return &t, nil
}

// Update replaces the whole path. StartTime defaults to now when omitted,
// LastUpdate is refreshed, and the count is recomputed.
func (s *TrackService) Update(ctx context.Context, id primitive.ObjectID, in models.TrackInput) error {
	now := time.Now().UTC()
	start := now
	if in.StartTime != nil {
		start = in.StartTime.UTC()
	}
	doc := models.ShipTrack{
		ID:          id,
		StartTime:   start,
		LastUpdate:  now,
		Track:       normalizeLine(in.Track),
		TotalPoints: len(in.Track.Coordinates),
	}
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace track: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TrackService) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete track: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLatest returns the most recently touched track, or nil when the
// collection is empty.
func (s *TrackService) GetLatest(ctx context.Context) (*models.ShipTrack, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "lastUpdate", Value: -1}})
	var t models.ShipTrack
	err := s.col.FindOne(ctx, bson.M{}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest track: %w", err)
	}
	return &t, nil
}

// AppendAndFetch concatenates coords onto the stored path as one server-side
// update and returns the post-image, so concurrent appends never lose points
// and the caller sees the result without a second round trip. A nil result
// means the id matched nothing; an empty batch is permitted and only advances
// LastUpdate.
func (s *TrackService) AppendAndFetch(ctx context.Context, id primitive.ObjectID, coords [][2]float64) (*models.ShipTrack, error) {
	if coords == nil {
		coords = [][2]float64{}
	}
	update := bson.M{
		"$push": bson.M{"track.coordinates": bson.M{"$each": coords}},
		"$inc":  bson.M{"totalPoints": len(coords)},
		"$set":  bson.M{"lastUpdate": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.ShipTrack
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("append track points: %w", err)
	}
	return &t, nil
}

func normalizeLine(line models.TrackLine) models.TrackLine {
	if line.Type == "" {
		line.Type = "LineString"
	}
	if line.Coordinates == nil {
		line.Coordinates = [][2]float64{}
	}
	return line
}
