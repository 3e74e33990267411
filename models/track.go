package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackLine is the GeoJSON-ish path subdocument. Coordinate order is the path
// order.
type TrackLine struct {
	Type        string       `bson:"type" json:"type"`
	Coordinates [][2]float64 `bson:"coordinates" json:"coordinates"`
}

// ShipTrack is one recorded vessel track segment. TotalPoints always equals
// len(Track.Coordinates); the service layer maintains that on every mutation.
type ShipTrack struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	StartTime   time.Time          `bson:"startTime" json:"startTime"`
	LastUpdate  time.Time          `bson:"lastUpdate" json:"lastUpdate"`
	Track       TrackLine          `bson:"track" json:"track"`
	TotalPoints int                `bson:"totalPoints" json:"totalPoints"`
}

// TrackInput is the payload for creating or replacing a track. StartTime is
// optional; the server defaults it. The point count is always recomputed
// server-side from the coordinates.
type TrackInput struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	Track     TrackLine  `json:"track"`
}

// AppendPointsInput is the payload for appending coordinates to a track.
type AppendPointsInput struct {
	Coordinates [][2]float64 `json:"coordinates"`
}
