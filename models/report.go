package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a persisted hull inspection record. AiReport stays nil until the
// background analyzer fills it in; a client polling right after creation will
// see it absent.
type Report struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	PhotoPaths []string           `bson:"photoPaths" json:"photoPaths"`
	Detail     string             `bson:"detail" json:"detail"`
	Title      string             `bson:"title" json:"title"`
	Rust       float64            `bson:"rust" json:"rust"`
	Covering   float64            `bson:"covering" json:"covering"`
	Damage     float64            `bson:"damage" json:"damage"`
	AiReport   *string            `bson:"aiReport" json:"ai_report"`
}

// ReportInput is the client-supplied part of a new report. The three metrics
// are fractions of the inspected surface, each in [0,1].
type ReportInput struct {
	Detail   string  `json:"detail"`
	Title    string  `json:"title"`
	Rust     float64 `json:"rust"`
	Covering float64 `json:"covering"`
	Damage   float64 `json:"damage"`
}
