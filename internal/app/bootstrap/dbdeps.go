// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Uploads stores avatars and post images.
	Uploads uploads.Store
}
