package mongodb

import (
	"encoding/base64"
	"fmt"

	"cosmos-admin/internal/cosmos/domain/model"

	"github.com/google/uuid"
)

// Catalog collection names
const (
	databasesCollection   = "databases"
	collectionsCollection = "collections"
	offersCollection      = "offers"
)

// databaseRecord is keyed by the database id so a duplicate insert is a conflict.
type databaseRecord struct {
	Key            string `bson:"_id"`
	model.Database `bson:",inline"`
}

// collectionRecord is keyed by "{db}/{coll}".
type collectionRecord struct {
	Key              string `bson:"_id"`
	DatabaseID       string `bson:"databaseId"`
	model.Collection `bson:",inline"`
}

// offerRecord is keyed by the offer's resource id.
type offerRecord struct {
	Key         string `bson:"_id"`
	model.Offer `bson:",inline"`
}

func collectionKey(databaseID, collectionID string) string {
	return databaseID + "/" + collectionID
}

func newRID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:6])
}

func newETag() string {
	return fmt.Sprintf("%q", uuid.NewString())
}
