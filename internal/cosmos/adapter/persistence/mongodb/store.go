package mongodb

import (
	"context"
	"strings"
	"time"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/resourcepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.ResourceClient = (*Store)(nil)

// Options names the catalog database and the prefix of per-database storage.
type Options struct {
	CatalogDatabase string
	DatabasePrefix  string
}

// Store emulates the resource service on MongoDB. Resource metadata lives in a
// catalog database; each emulated database maps to a MongoDB database and each
// collection to a MongoDB collection whose unique indexes carry the unique keys.
type Store struct {
	client  *mongo.Client
	catalog *mongo.Database
	prefix  string
	logger  logger.Logger
	now     func() time.Time
	owned   bool
}

// Connect dials uri and returns a store that disconnects on Close.
func Connect(ctx context.Context, uri string, opts Options, log logger.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewInfrastructureError("failed to connect to MongoDB").WithCause(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewInfrastructureError("failed to ping MongoDB").WithCause(err)
	}
	store := NewStore(client, opts, log)
	store.owned = true
	return store, nil
}

// NewStore wraps an existing client. The caller keeps ownership of client.
func NewStore(client *mongo.Client, opts Options, log logger.Logger) *Store {
	if opts.CatalogDatabase == "" {
		opts.CatalogDatabase = "cosmos_catalog"
	}
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		client:  client,
		catalog: client.Database(opts.CatalogDatabase),
		prefix:  opts.DatabasePrefix,
		logger:  log.WithComponent("mongodb"),
		now:     time.Now,
	}
}

func (s *Store) databases() *mongo.Collection   { return s.catalog.Collection(databasesCollection) }
func (s *Store) collections() *mongo.Collection { return s.catalog.Collection(collectionsCollection) }
func (s *Store) offers() *mongo.Collection      { return s.catalog.Collection(offersCollection) }

// storage returns the MongoDB database backing databaseID.
func (s *Store) storage(databaseID string) *mongo.Database {
	return s.client.Database(s.prefix + databaseID)
}

func (s *Store) stamp(r *model.Resource, rid, self string) {
	r.ResourceID = rid
	r.Self = self
	r.ETag = newETag()
	r.Timestamp = s.now().Unix()
}

func parse(link string) (*resourcepath.PathInfo, error) {
	return resourcepath.Parse(link)
}

// Databases

func (s *Store) QueryDatabases(ctx context.Context, id string) ([]model.Database, error) {
	return s.findDatabases(ctx, bson.M{"_id": id})
}

func (s *Store) findDatabases(ctx context.Context, filter bson.M) ([]model.Database, error) {
	cursor, err := s.databases().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_ts", Value: 1}}))
	if err != nil {
		return nil, mapError(err, resourcepath.Databases, "query databases")
	}
	var records []databaseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, mapError(err, resourcepath.Databases, "decode databases")
	}
	result := make([]model.Database, 0, len(records))
	for _, r := range records {
		result = append(result, r.Database)
	}
	return result, nil
}

func (s *Store) CreateDatabase(ctx context.Context, db *model.Database) (*model.Database, error) {
	if err := resourcepath.ValidateID(db.ID); err != nil {
		return nil, err
	}
	created := model.Database{Resource: model.Resource{ID: db.ID}, Collections: "colls/", Users: "users/"}
	rid := newRID()
	s.stamp(&created.Resource, rid, "dbs/"+rid+"/")

	if _, err := s.databases().InsertOne(ctx, databaseRecord{Key: db.ID, Database: created}); err != nil {
		return nil, mapError(err, resourcepath.DatabaseLink(db.ID), "create database")
	}
	s.logger.WithFields(map[string]interface{}{"database_id": db.ID, "rid": rid}).Debug("database created")
	return &created, nil
}

func (s *Store) ReadDatabase(ctx context.Context, link string) (*model.Database, error) {
	info, err := parse(link)
	if err != nil {
		return nil, err
	}
	var record databaseRecord
	if err := s.databases().FindOne(ctx, bson.M{"_id": info.DatabaseID}).Decode(&record); err != nil {
		return nil, mapError(err, link, "read database")
	}
	return &record.Database, nil
}

func (s *Store) ReadDatabases(ctx context.Context) ([]model.Database, error) {
	return s.findDatabases(ctx, bson.M{})
}

// DeleteDatabase removes the database, its collections and their offers.
func (s *Store) DeleteDatabase(ctx context.Context, link string) error {
	db, err := s.ReadDatabase(ctx, link)
	if err != nil {
		return err
	}

	colls, err := s.ReadCollections(ctx, link)
	if err != nil {
		return err
	}
	selfs := make([]string, 0, len(colls))
	for _, c := range colls {
		selfs = append(selfs, c.Self)
	}
	if len(selfs) > 0 {
		if _, err := s.offers().DeleteMany(ctx, bson.M{"resource": bson.M{"$in": selfs}}); err != nil {
			return mapError(err, link, "delete offers")
		}
		if _, err := s.collections().DeleteMany(ctx, bson.M{"databaseId": db.ID}); err != nil {
			return mapError(err, link, "delete collections")
		}
	}
	res, err := s.databases().DeleteOne(ctx, bson.M{"_id": db.ID})
	if err != nil {
		return mapError(err, link, "delete database")
	}
	if res.DeletedCount == 0 {
		return mapError(mongo.ErrNoDocuments, link, "delete database")
	}
	if err := s.storage(db.ID).Drop(ctx); err != nil {
		return mapError(err, link, "drop database storage")
	}
	return nil
}

// Collections

func (s *Store) QueryCollections(ctx context.Context, databaseLink, id string) ([]model.Collection, error) {
	info, err := parse(databaseLink)
	if err != nil {
		return nil, err
	}
	if _, err := s.ReadDatabase(ctx, databaseLink); err != nil {
		return nil, err
	}
	return s.findCollections(ctx, bson.M{"_id": collectionKey(info.DatabaseID, id)})
}

func (s *Store) findCollections(ctx context.Context, filter bson.M) ([]model.Collection, error) {
	cursor, err := s.collections().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_ts", Value: 1}}))
	if err != nil {
		return nil, mapError(err, resourcepath.Collections, "query collections")
	}
	var records []collectionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, mapError(err, resourcepath.Collections, "decode collections")
	}
	result := make([]model.Collection, 0, len(records))
	for _, r := range records {
		result = append(result, r.Collection)
	}
	return result, nil
}

func (s *Store) CreateCollection(ctx context.Context, databaseLink string, coll *model.Collection, throughput int) (*model.Collection, error) {
	db, err := s.ReadDatabase(ctx, databaseLink)
	if err != nil {
		return nil, err
	}
	if err := resourcepath.ValidateID(coll.ID); err != nil {
		return nil, err
	}

	created := *coll
	if created.IndexingPolicy == nil {
		created.IndexingPolicy = &model.IndexingPolicy{IndexingMode: model.IndexingModeConsistent, Automatic: true}
	}
	rid := newRID()
	s.stamp(&created.Resource, rid, db.Self+"colls/"+rid+"/")
	created.Docs = "docs/"
	created.Sprocs = "sprocs/"
	created.Triggers = "triggers/"
	created.Udfs = "udfs/"
	created.Conflicts = "conflicts/"

	link := resourcepath.CollectionLink(db.ID, coll.ID)
	record := collectionRecord{Key: collectionKey(db.ID, coll.ID), DatabaseID: db.ID, Collection: created}
	if _, err := s.collections().InsertOne(ctx, record); err != nil {
		return nil, mapError(err, link, "create collection")
	}

	if err := s.provisionStorage(ctx, db.ID, &created); err != nil {
		s.discardCollection(ctx, db.ID, coll.ID)
		return nil, err
	}

	if throughput > 0 {
		offerRID := newRID()
		offer := model.Offer{
			OfferVersion:    model.OfferVersionV2,
			OfferType:       model.OfferTypeInvalid,
			OfferResourceID: rid,
			ResourceLink:    created.Self,
			Content:         model.OfferContent{OfferThroughput: throughput},
		}
		offer.ID = offerRID
		s.stamp(&offer.Resource, offerRID, "offers/"+offerRID+"/")
		if _, err := s.offers().InsertOne(ctx, offerRecord{Key: offerRID, Offer: offer}); err != nil {
			s.discardCollection(ctx, db.ID, coll.ID)
			return nil, mapError(err, link, "provision offer")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"database_id":   db.ID,
		"collection_id": coll.ID,
		"throughput":    throughput,
	}).Debug("collection created")
	return &created, nil
}

// discardCollection removes the catalog record and storage of a collection
// whose create failed part way.
func (s *Store) discardCollection(ctx context.Context, databaseID, collectionID string) {
	log := s.logger.WithFields(map[string]interface{}{
		"database_id":   databaseID,
		"collection_id": collectionID,
	})
	if _, err := s.collections().DeleteOne(ctx, bson.M{"_id": collectionKey(databaseID, collectionID)}); err != nil {
		log.Warnf("Failed to remove catalog record of partial collection: %v", err)
	}
	if err := s.storage(databaseID).Collection(collectionID).Drop(ctx); err != nil {
		log.Warnf("Failed to drop storage of partial collection: %v", err)
	}
}

// provisionStorage creates the backing collection and one unique index per unique key.
func (s *Store) provisionStorage(ctx context.Context, databaseID string, coll *model.Collection) error {
	link := resourcepath.CollectionLink(databaseID, coll.ID)
	if err := s.storage(databaseID).CreateCollection(ctx, coll.ID); err != nil {
		return mapError(err, link, "create collection storage")
	}
	if coll.UniqueKeyPolicy == nil || len(coll.UniqueKeyPolicy.UniqueKeys) == 0 {
		return nil
	}

	models := make([]mongo.IndexModel, 0, len(coll.UniqueKeyPolicy.UniqueKeys))
	for _, key := range coll.UniqueKeyPolicy.UniqueKeys {
		if len(key.Paths) == 0 {
			continue
		}
		keys := bson.D{}
		for _, path := range key.Paths {
			keys = append(keys, bson.E{Key: fieldPath(path), Value: 1})
		}
		models = append(models, mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)})
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := s.storage(databaseID).Collection(coll.ID).Indexes().CreateMany(ctx, models); err != nil {
		return mapError(err, link, "create unique keys")
	}
	return nil
}

// fieldPath turns /field1/field2 into field1.field2.
func fieldPath(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
}

func (s *Store) ReadCollection(ctx context.Context, link string) (*model.Collection, error) {
	info, err := parse(link)
	if err != nil {
		return nil, err
	}
	var record collectionRecord
	if err := s.collections().FindOne(ctx, bson.M{"_id": collectionKey(info.DatabaseID, info.CollectionID)}).Decode(&record); err != nil {
		return nil, mapError(err, link, "read collection")
	}
	return &record.Collection, nil
}

func (s *Store) ReadCollections(ctx context.Context, databaseLink string) ([]model.Collection, error) {
	db, err := s.ReadDatabase(ctx, databaseLink)
	if err != nil {
		return nil, err
	}
	return s.findCollections(ctx, bson.M{"databaseId": db.ID})
}

func (s *Store) DeleteCollection(ctx context.Context, link string) error {
	info, err := parse(link)
	if err != nil {
		return err
	}
	coll, err := s.ReadCollection(ctx, link)
	if err != nil {
		return err
	}
	if _, err := s.offers().DeleteMany(ctx, bson.M{"resource": coll.Self}); err != nil {
		return mapError(err, link, "delete offer")
	}
	res, err := s.collections().DeleteOne(ctx, bson.M{"_id": collectionKey(info.DatabaseID, info.CollectionID)})
	if err != nil {
		return mapError(err, link, "delete collection")
	}
	if res.DeletedCount == 0 {
		return mapError(mongo.ErrNoDocuments, link, "delete collection")
	}
	if err := s.storage(info.DatabaseID).Collection(info.CollectionID).Drop(ctx); err != nil {
		return mapError(err, link, "drop collection storage")
	}
	return nil
}

// Offers

func (s *Store) QueryOffers(ctx context.Context, resourceSelf string) ([]model.Offer, error) {
	cursor, err := s.offers().Find(ctx, bson.M{"resource": resourceSelf})
	if err != nil {
		return nil, mapError(err, resourcepath.Offers, "query offers")
	}
	var records []offerRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, mapError(err, resourcepath.Offers, "decode offers")
	}
	result := make([]model.Offer, 0, len(records))
	for _, r := range records {
		result = append(result, r.Offer)
	}
	return result, nil
}

// ReplaceOffer updates only the throughput of an existing offer.
func (s *Store) ReplaceOffer(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	link := resourcepath.OfferLink(offer.ResourceID)
	update := bson.M{"$set": bson.M{
		"content.offerThroughput": offer.Content.OfferThroughput,
		"_etag":                   newETag(),
		"_ts":                     s.now().Unix(),
	}}
	filter := bson.M{"_id": offer.ResourceID, "resource": offer.ResourceLink}

	var record offerRecord
	err := s.offers().FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&record)
	if err != nil {
		return nil, mapError(err, link, "replace offer")
	}
	return &record.Offer, nil
}

// Documents

func (s *Store) CreateDocument(ctx context.Context, collectionLink string, doc model.Document) (model.Document, error) {
	info, err := parse(collectionLink)
	if err != nil {
		return nil, err
	}
	coll, err := s.ReadCollection(ctx, collectionLink)
	if err != nil {
		return nil, err
	}

	created := doc.StripSystemProperties()
	if created.ID() == "" {
		created["id"] = newRID()
	}
	rid := newRID()
	created["_rid"] = rid
	created["_self"] = coll.Self + "docs/" + rid + "/"
	created["_etag"] = newETag()
	created["_ts"] = s.now().Unix()

	stored := bson.M{"_id": created.ID()}
	for k, v := range created {
		stored[k] = v
	}
	if _, err := s.storage(info.DatabaseID).Collection(info.CollectionID).InsertOne(ctx, stored); err != nil {
		return nil, mapError(err, resourcepath.DocumentLink(info.DatabaseID, info.CollectionID, created.ID()), "create document")
	}
	return created, nil
}

func (s *Store) ReadDocuments(ctx context.Context, collectionLink string) ([]model.Document, error) {
	info, err := parse(collectionLink)
	if err != nil {
		return nil, err
	}
	if _, err := s.ReadCollection(ctx, collectionLink); err != nil {
		return nil, err
	}

	cursor, err := s.storage(info.DatabaseID).Collection(info.CollectionID).Find(ctx, bson.M{})
	if err != nil {
		return nil, mapError(err, collectionLink, "read documents")
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, mapError(err, collectionLink, "decode documents")
	}
	result := make([]model.Document, 0, len(raw))
	for _, r := range raw {
		delete(r, "_id")
		result = append(result, model.Document(r))
	}
	return result, nil
}

// Close disconnects the client when the store dialed it.
func (s *Store) Close() error {
	if !s.owned || s.client == nil {
		return nil
	}
	client := s.client
	s.client = nil
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return errors.NewInfrastructureError("failed to disconnect MongoDB").WithCause(err)
	}
	return nil
}

// Ping checks the connection to MongoDB.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.NewInfrastructureError("store is closed").WithComponent("mongodb")
	}
	return mapError(s.client.Ping(ctx, nil), "", "ping MongoDB")
}
