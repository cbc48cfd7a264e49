package memory

import (
	"context"
	"testing"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) (*Store, *model.Collection) {
	t.Helper()
	store := NewStore()
	ctx := context.Background()
	_, err := store.CreateDatabase(ctx, model.NewDatabase("Contoso"))
	require.NoError(t, err)
	coll, err := store.CreateCollection(ctx, "dbs/Contoso", model.DefaultCollectionSpec("Orders"), model.DefaultOfferThroughput)
	require.NoError(t, err)
	return store, coll
}

func TestDatabaseLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	created, err := store.CreateDatabase(ctx, model.NewDatabase("Contoso"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ResourceID)
	assert.Equal(t, "dbs/"+created.ResourceID+"/", created.Self)

	_, err = store.CreateDatabase(ctx, model.NewDatabase("Contoso"))
	assert.True(t, errors.IsConflict(err))

	found, err := store.QueryDatabases(ctx, "Contoso")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := store.QueryDatabases(ctx, "contoso")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.DeleteDatabase(ctx, "dbs/Contoso"))
	_, err = store.ReadDatabase(ctx, "dbs/Contoso")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(store.DeleteDatabase(ctx, "dbs/Contoso")))

	all, err := store.ReadDatabases(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateCollection_ProvisionsOffer(t *testing.T) {
	store, coll := seeded(t)
	ctx := context.Background()

	assert.Equal(t, model.IndexingModeLazy, coll.IndexingPolicy.IndexingMode)
	assert.False(t, coll.IndexingPolicy.Automatic)

	offers, err := store.QueryOffers(ctx, coll.Self)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, coll.Self, offers[0].ResourceLink)
	assert.Equal(t, 400, offers[0].Throughput())

	replaced, err := store.ReplaceOffer(ctx, offers[0].WithThroughput(500))
	require.NoError(t, err)
	assert.Equal(t, 500, replaced.Throughput())

	again, err := store.QueryOffers(ctx, coll.Self)
	require.NoError(t, err)
	assert.Equal(t, 500, again[0].Throughput())

	_, err = store.ReplaceOffer(ctx, offers[0].WithThroughput(450))
	assert.Equal(t, errors.ErrorTypeService, errors.TypeOf(err))

	_, err = store.CreateCollection(ctx, "dbs/Contoso", model.DefaultCollectionSpec("Orders"), 400)
	assert.True(t, errors.IsConflict(err))

	_, err = store.CreateCollection(ctx, "dbs/Missing", model.DefaultCollectionSpec("Orders"), 400)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteCollection_DropsOffer(t *testing.T) {
	store, coll := seeded(t)
	ctx := context.Background()

	require.NoError(t, store.DeleteCollection(ctx, "dbs/Contoso/colls/Orders"))
	offers, err := store.QueryOffers(ctx, coll.Self)
	require.NoError(t, err)
	assert.Empty(t, offers)

	colls, err := store.ReadCollections(ctx, "dbs/Contoso")
	require.NoError(t, err)
	assert.Empty(t, colls)

	assert.True(t, errors.IsNotFound(store.DeleteCollection(ctx, "dbs/Contoso/colls/Orders")))
}

func TestDocuments_UniqueConstraints(t *testing.T) {
	store, _ := seeded(t)
	ctx := context.Background()
	link := "dbs/Contoso/colls/Orders"

	first, err := store.CreateDocument(ctx, link, model.Document{
		"id": "o1", "field1": map[string]interface{}{"field2": "a"}, "field3": "x",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first["_rid"])

	_, err = store.CreateDocument(ctx, link, model.Document{"id": "o1", "field3": "y"})
	assert.True(t, errors.IsConflict(err))

	_, err = store.CreateDocument(ctx, link, model.Document{
		"id": "o2", "field1": map[string]interface{}{"field2": "a"}, "field3": "x",
	})
	assert.True(t, errors.IsConflict(err))

	generated, err := store.CreateDocument(ctx, link, model.Document{
		"field1": map[string]interface{}{"field2": "b"}, "field3": "x",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID())

	docs, err := store.ReadDocuments(ctx, link)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestClose(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	_, err := store.ReadDatabases(context.Background())
	assert.Equal(t, errors.ErrorTypeInfrastructure, errors.TypeOf(err))
}

func TestInvalidLink(t *testing.T) {
	store := NewStore()
	_, err := store.ReadDatabase(context.Background(), "databases/Contoso")
	assert.True(t, errors.IsValidation(err))
}
