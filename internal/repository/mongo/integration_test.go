//go:build integration
// +build integration

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"alcyxob/liftlog/internal/repository/mongo"
	"alcyxob/liftlog/internal/repository/repotest"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

// TestMongoRepositories needs a replica set, e.g.
// LIFTLOG_TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
func TestMongoRepositories(t *testing.T) {
	uri := os.Getenv("LIFTLOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LIFTLOG_TEST_MONGO_URI not set")
	}
	client, err := mongo.ConnectDB(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mongo.DisconnectDB(client) })

	n := 0
	repotest.Run(t, func(t *testing.T) repotest.Backend {
		ctx := context.Background()
		n++
		db := client.Database(fmt.Sprintf("liftlog_test_%d_%d", time.Now().UnixNano(), n))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })
		require.NoError(t, mongo.EnsureIndexes(ctx, db))

		return repotest.Backend{
			Repos: mongo.NewRepositories(client, db),
			Counts: func(t *testing.T) (int, int, int) {
				return count(t, db, "workouts"), count(t, db, "workout_exercises"), count(t, db, "sets")
			},
			Precision: time.Millisecond,
		}
	})
}

func count(t *testing.T, db *mongodrv.Database, collection string) int {
	t.Helper()
	n, err := db.Collection(collection).CountDocuments(context.Background(), bson.M{})
	require.NoError(t, err)
	return int(n)
}
