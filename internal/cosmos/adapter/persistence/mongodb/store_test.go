package mongodb

import (
	"context"
	"testing"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const catalogNS = "cosmos_catalog.databases"

func newTestStore(mt *mtest.T) *Store {
	return NewStore(mt.Client, Options{CatalogDatabase: "cosmos_catalog", DatabasePrefix: "cosmos_"}, logger.NewLoggerWithConfig("error", "text"))
}

func TestStore_Databases(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		db, err := store.CreateDatabase(context.Background(), model.NewDatabase("Contoso"))
		require.NoError(t, err)
		assert.Equal(t, "Contoso", db.ID)
		assert.Equal(t, "dbs/"+db.ResourceID+"/", db.Self)
	})

	mt.Run("create_conflict", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		_, err := store.CreateDatabase(context.Background(), model.NewDatabase("Contoso"))
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
	})

	mt.Run("create_invalid_id", func(mt *mtest.T) {
		store := newTestStore(mt)
		_, err := store.CreateDatabase(context.Background(), model.NewDatabase("a/b"))
		assert.True(t, errors.IsValidation(err))
	})

	mt.Run("query", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "Contoso"},
			{Key: "id", Value: "Contoso"},
			{Key: "_rid", Value: "abc="},
			{Key: "_self", Value: "dbs/abc=/"},
		}))

		dbs, err := store.QueryDatabases(context.Background(), "Contoso")
		require.NoError(t, err)
		require.Len(t, dbs, 1)
		assert.Equal(t, "Contoso", dbs[0].ID)
		assert.Equal(t, "dbs/abc=/", dbs[0].Self)
	})

	mt.Run("read_not_found", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch))

		_, err := store.ReadDatabase(context.Background(), "dbs/Missing")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	mt.Run("delete_not_found", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch))

		err := store.DeleteDatabase(context.Background(), "dbs/Missing")
		assert.True(t, errors.IsNotFound(err))
	})

	mt.Run("server_error", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := store.ReadDatabases(context.Background())
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeService, errors.TypeOf(err))
	})
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestStore_CreateCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	dbDoc := bson.D{
		{Key: "_id", Value: "Contoso"},
		{Key: "id", Value: "Contoso"},
		{Key: "_rid", Value: "abc="},
		{Key: "_self", Value: "dbs/abc=/"},
	}

	mt.Run("create", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch, dbDoc),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		coll, err := store.CreateCollection(context.Background(), "dbs/Contoso", model.DefaultCollectionSpec("Orders"), model.DefaultOfferThroughput)
		require.NoError(t, err)
		assert.Equal(t, "Orders", coll.ID)
		assert.Equal(t, "dbs/abc=/colls/"+coll.ResourceID+"/", coll.Self)
		assert.Equal(t, []string{"find", "insert", "create", "createIndexes", "insert"}, commandNames(mt))
	})

	mt.Run("offer_failure_discards_collection", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch, dbDoc),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutdown in progress"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		_, err := store.CreateCollection(context.Background(), "dbs/Contoso", model.DefaultCollectionSpec("Orders"), model.DefaultOfferThroughput)
		require.Error(t, err)
		assert.Equal(t, []string{"find", "insert", "create", "createIndexes", "insert", "delete", "drop"}, commandNames(mt))

		started := mt.GetAllStartedEvents()
		assert.Equal(t, "cosmos_catalog", started[5].DatabaseName)
		assert.Equal(t, "Orders", started[6].Command.Lookup("drop").StringValue())
		assert.Equal(t, "cosmos_Contoso", started[6].DatabaseName)
	})

	mt.Run("index_failure_discards_collection", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, catalogNS, mtest.FirstBatch, dbDoc),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 67, Message: "cannot create index"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		_, err := store.CreateCollection(context.Background(), "dbs/Contoso", model.DefaultCollectionSpec("Orders"), model.DefaultOfferThroughput)
		require.Error(t, err)
		assert.Equal(t, []string{"find", "insert", "create", "createIndexes", "delete", "drop"}, commandNames(mt))
	})
}

func TestStore_Offers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	offerDoc := bson.D{
		{Key: "_id", Value: "Xq2c"},
		{Key: "id", Value: "Xq2c"},
		{Key: "_rid", Value: "Xq2c"},
		{Key: "_self", Value: "offers/Xq2c/"},
		{Key: "resource", Value: "dbs/abc=/colls/def=/"},
		{Key: "offerVersion", Value: "V2"},
		{Key: "content", Value: bson.D{{Key: "offerThroughput", Value: int32(400)}}},
	}

	mt.Run("query", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "cosmos_catalog.offers", mtest.FirstBatch, offerDoc))

		offers, err := store.QueryOffers(context.Background(), "dbs/abc=/colls/def=/")
		require.NoError(t, err)
		require.Len(t, offers, 1)
		assert.Equal(t, 400, offers[0].Throughput())
		assert.Equal(t, "dbs/abc=/colls/def=/", offers[0].ResourceLink)
	})

	mt.Run("query_empty", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "cosmos_catalog.offers", mtest.FirstBatch))

		offers, err := store.QueryOffers(context.Background(), "dbs/abc=/colls/def=/")
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	mt.Run("replace", func(mt *mtest.T) {
		store := newTestStore(mt)
		updated := bson.D{}
		for _, e := range offerDoc {
			if e.Key == "content" {
				e.Value = bson.D{{Key: "offerThroughput", Value: int32(500)}}
			}
			updated = append(updated, e)
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		offer := &model.Offer{ResourceLink: "dbs/abc=/colls/def=/", Content: model.OfferContent{OfferThroughput: 500}}
		offer.ResourceID = "Xq2c"
		replaced, err := store.ReplaceOffer(context.Background(), offer)
		require.NoError(t, err)
		assert.Equal(t, 500, replaced.Throughput())
	})
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "field1.field2", fieldPath("/field1/field2"))
	assert.Equal(t, "field3", fieldPath("/field3"))
}

func TestClose_NotOwned(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("close", func(mt *mtest.T) {
		store := newTestStore(mt)
		assert.NoError(t, store.Close())
	})
}
