package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fluyo/backend/internal/db"
)

type MongoContainer struct {
	URI       string
	Client    *mongo.Client
	Terminate func()
}

// Start container with a standalone mongo server
func StartMongoContainer(t *testing.T) MongoContainer {
	t.Helper()
	requireDocker(t)

	container, err := mongodb.Run(t.Context(), "mongo:7")
	require.NoError(t, err, "Error happened when starting container with mongo")

	uri, err := container.ConnectionString(t.Context())
	require.NoError(t, err, "Error happened when getting connection string from container with mongo")
	t.Logf("Container with mongo started, URI=%v", uri)

	client, err := db.ConnectMongo(t.Context(), uri)
	require.NoError(t, err, "Error happened when connecting to mongo")

	return MongoContainer{
		URI:    uri,
		Client: client,
		Terminate: func() {
			_ = client.Disconnect(context.Background())
			testcontainers.CleanupContainer(t, container)
		},
	}
}

// Fresh database dropped when the test ends
// Mongo counterpart of WithTx
func WithDatabase(client *mongo.Client, t *testing.T, testFunc func(db *mongo.Database)) {
	database := client.Database("test_" + strings.ToLower(ulid.Make().String()))

	defer func() {
		err := database.Drop(context.Background())
		require.NoError(t, err)
	}()

	testFunc(database)
}
