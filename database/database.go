package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client
var db *mongo.Database

// Collection names.
const (
	ReportsCol = "reportRaws"
	TracksCol  = "trackSegments"
)

// Connect establishes a singleton MongoDB connection, pings it, and creates
// the indexes the read paths rely on.
func Connect(ctx context.Context, uri, dbname string) error {
	if client != nil && db != nil {
		return nil
	}

	start := time.Now()
	log.Printf("mongo: connecting uri=%s db=%s", redactURI(uri), dbname)

	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	c, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err = c.Ping(dctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}

	client = c
	db = c.Database(dbname)

	if err := createIndexes(); err != nil {
		log.Printf("mongo: index creation warnings: %v", err)
	}

	log.Printf("mongo: connected ok in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	defer func() { client, db = nil, nil }()
	return client.Disconnect(ctx)
}

func Col(name string) *mongo.Collection {
	if db == nil {
		panic("database not connected: call database.Connect first")
	}
	return db.Collection(name)
}

func createIndexes() error {
	if db == nil {
		return errors.New("db is nil")
	}
	ctxIdx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []string

	// get_latest on reports sorts by creation time
	if _, err := Col(ReportsCol).Indexes().CreateOne(ctxIdx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		errs = append(errs, "createdAt: "+err.Error())
	}
	// latest-track lookup sorts by lastUpdate
	if _, err := Col(TracksCol).Indexes().CreateOne(ctxIdx, mongo.IndexModel{
		Keys: bson.D{{Key: "lastUpdate", Value: -1}},
	}); err != nil {
		errs = append(errs, "lastUpdate: "+err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// redactURI masks credentials before the URI reaches a log line.
func redactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}
