package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testMongoURIEnv names the variable pointing at a disposable MongoDB for
// store-backed tests.
const testMongoURIEnv = "MONGO_URI_TEST"

// GetTestMongoURI returns the test MongoDB URI, reading the project .env if present.
func GetTestMongoURI() string {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		_ = godotenv.Load()
	}
	return os.Getenv(testMongoURIEnv)
}

// SetupTestDB connects to the test MongoDB and drops the given collections so
// each test starts clean. Tests are skipped when no test database is configured.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()
	uri := GetTestMongoURI()
	if uri == "" {
		t.Skipf("%s not set, skipping MongoDB-backed test", testMongoURIEnv)
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(dbName)
	for _, collection := range collections {
		_ = db.Collection(collection).Drop(context.Background())
	}

	return db
}
