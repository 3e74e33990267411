package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testCollection connects to the Mongo instance named by MONGO_TEST_URI and
// hands back a throwaway collection. Tests using it are skipped when the env
// var is unset.
func testCollection(t *testing.T, prefix string) *mongo.Collection {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping Mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	col := client.Database("hullwatch_test").Collection(prefix + "_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = col.Drop(context.Background()) })
	return col
}
