package repository

import (
	"context"

	"cosmos-admin/internal/cosmos/domain/model"
)

// DatabaseClient covers the dbs feed.
type DatabaseClient interface {
	// QueryDatabases returns the databases whose id equals id.
	QueryDatabases(ctx context.Context, id string) ([]model.Database, error)
	CreateDatabase(ctx context.Context, db *model.Database) (*model.Database, error)
	ReadDatabase(ctx context.Context, link string) (*model.Database, error)
	// ReadDatabases lists every database, following continuation tokens to the end.
	ReadDatabases(ctx context.Context) ([]model.Database, error)
	DeleteDatabase(ctx context.Context, link string) error
}

// CollectionClient covers the colls feed of a database.
type CollectionClient interface {
	QueryCollections(ctx context.Context, databaseLink, id string) ([]model.Collection, error)
	// CreateCollection provisions the collection with throughput request units.
	CreateCollection(ctx context.Context, databaseLink string, coll *model.Collection, throughput int) (*model.Collection, error)
	ReadCollection(ctx context.Context, link string) (*model.Collection, error)
	ReadCollections(ctx context.Context, databaseLink string) ([]model.Collection, error)
	DeleteCollection(ctx context.Context, link string) error
}

// OfferClient covers the offers feed. Offers are never created or deleted by
// this client, only located and replaced.
type OfferClient interface {
	// QueryOffers returns the offers whose resource field equals resourceSelf.
	QueryOffers(ctx context.Context, resourceSelf string) ([]model.Offer, error)
	ReplaceOffer(ctx context.Context, offer *model.Offer) (*model.Offer, error)
}

// DocumentClient covers the docs feed of a collection.
type DocumentClient interface {
	CreateDocument(ctx context.Context, collectionLink string, doc model.Document) (model.Document, error)
	ReadDocuments(ctx context.Context, collectionLink string) ([]model.Document, error)
}

// ResourceClient is the remote resource-management service. Implementations
// return *errors.AppError values classified by kind.
type ResourceClient interface {
	DatabaseClient
	CollectionClient
	OfferClient
	DocumentClient

	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// EventPublisher receives audit events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.AuditEvent) error
}
