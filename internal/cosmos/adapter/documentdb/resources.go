package documentdb

import (
	"context"
	"encoding/json"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/resourcepath"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

var _ repository.ResourceClient = (*Client)(nil)

const (
	queryByID  = `SELECT * FROM root r WHERE r.id = @id`
	queryAll   = `SELECT * FROM root r`
	queryItems = `SELECT * FROM c`
)

func byID(id string) []azcosmos.QueryParameter {
	return []azcosmos.QueryParameter{{Name: "@id", Value: id}}
}

func (c *Client) database(link string) (*azcosmos.DatabaseClient, string, error) {
	info, err := resourcepath.Parse(link)
	if err != nil {
		return nil, "", err
	}
	database, err := c.cosmos.NewDatabase(info.DatabaseID)
	return database, info.DatabaseID, err
}

func (c *Client) container(link string) (*azcosmos.ContainerClient, containerRef, error) {
	info, err := resourcepath.Parse(link)
	if err != nil {
		return nil, containerRef{}, err
	}
	if info.CollectionID == "" {
		return nil, containerRef{}, errors.NewValidationError("not a collection link").WithDetail("link", link)
	}
	ref := containerRef{database: info.DatabaseID, collection: info.CollectionID}
	container, err := c.cosmos.NewContainer(ref.database, ref.collection)
	return container, ref, err
}

// Databases

func (c *Client) QueryDatabases(ctx context.Context, id string) (dbs []model.Database, err error) {
	ctx, done := c.begin(ctx, "query databases", resourcepath.Databases)
	defer done(&err)

	pager := c.cosmos.NewQueryDatabasesPager(queryByID, &azcosmos.QueryDatabasesOptions{QueryParameters: byID(id)})
	return drain(ctx, pager, databasesOf)
}

func (c *Client) CreateDatabase(ctx context.Context, db *model.Database) (created *model.Database, err error) {
	ctx, done := c.begin(ctx, "create database", resourcepath.DatabaseLink(db.ID))
	defer done(&err)

	resp, err := c.cosmos.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: db.ID}, nil)
	if err != nil {
		return nil, err
	}
	return toDatabase(resp.DatabaseProperties), nil
}

func (c *Client) ReadDatabase(ctx context.Context, link string) (db *model.Database, err error) {
	ctx, done := c.begin(ctx, "read database", link)
	defer done(&err)

	database, _, err := c.database(link)
	if err != nil {
		return nil, err
	}
	resp, err := database.Read(ctx, nil)
	if err != nil {
		return nil, err
	}
	return toDatabase(resp.DatabaseProperties), nil
}

func (c *Client) ReadDatabases(ctx context.Context) (dbs []model.Database, err error) {
	ctx, done := c.begin(ctx, "read databases", resourcepath.Databases)
	defer done(&err)

	pager := c.cosmos.NewQueryDatabasesPager(queryAll, &azcosmos.QueryDatabasesOptions{})
	return drain(ctx, pager, databasesOf)
}

func (c *Client) DeleteDatabase(ctx context.Context, link string) (err error) {
	ctx, done := c.begin(ctx, "delete database", link)
	defer done(&err)

	database, id, err := c.database(link)
	if err != nil {
		return err
	}
	if _, err := database.Delete(ctx, nil); err != nil {
		return err
	}
	c.forget(containerRef{database: id})
	return nil
}

// Collections

func (c *Client) QueryCollections(ctx context.Context, databaseLink, id string) (colls []model.Collection, err error) {
	ctx, done := c.begin(ctx, "query collections", databaseLink)
	defer done(&err)

	database, databaseID, err := c.database(databaseLink)
	if err != nil {
		return nil, err
	}
	pager := database.NewQueryContainersPager(queryByID, &azcosmos.QueryContainersOptions{QueryParameters: byID(id)})
	return drain(ctx, pager, c.collectionsOf(databaseID))
}

func (c *Client) CreateCollection(ctx context.Context, databaseLink string, coll *model.Collection, throughput int) (created *model.Collection, err error) {
	ctx, done := c.begin(ctx, "create collection", databaseLink)
	defer done(&err)

	database, id, err := c.database(databaseLink)
	if err != nil {
		return nil, err
	}

	var opts *azcosmos.CreateContainerOptions
	if throughput > 0 {
		offer := azcosmos.NewManualThroughputProperties(int32(throughput))
		opts = &azcosmos.CreateContainerOptions{ThroughputProperties: &offer}
	}
	resp, err := database.CreateContainer(ctx, toContainerProperties(coll), opts)
	if err != nil {
		return nil, err
	}

	created = toCollection(resp.ContainerProperties)
	c.remember(created.Self, containerRef{database: id, collection: created.ID})
	return created, nil
}

func (c *Client) ReadCollection(ctx context.Context, link string) (coll *model.Collection, err error) {
	ctx, done := c.begin(ctx, "read collection", link)
	defer done(&err)

	container, ref, err := c.container(link)
	if err != nil {
		return nil, err
	}
	resp, err := container.Read(ctx, nil)
	if err != nil {
		return nil, err
	}

	coll = toCollection(resp.ContainerProperties)
	c.remember(coll.Self, ref)
	return coll, nil
}

func (c *Client) ReadCollections(ctx context.Context, databaseLink string) (colls []model.Collection, err error) {
	ctx, done := c.begin(ctx, "read collections", databaseLink)
	defer done(&err)

	database, id, err := c.database(databaseLink)
	if err != nil {
		return nil, err
	}
	pager := database.NewQueryContainersPager(queryAll, &azcosmos.QueryContainersOptions{})
	return drain(ctx, pager, c.collectionsOf(id))
}

func (c *Client) DeleteCollection(ctx context.Context, link string) (err error) {
	ctx, done := c.begin(ctx, "delete collection", link)
	defer done(&err)

	container, ref, err := c.container(link)
	if err != nil {
		return err
	}
	if _, err := container.Delete(ctx, nil); err != nil {
		return err
	}
	c.forget(ref)
	return nil
}

// Offers

// QueryOffers returns the offer of the collection whose self-link is
// resourceSelf. The collection must have been read or created through this
// client; any other link has no offers.
func (c *Client) QueryOffers(ctx context.Context, resourceSelf string) (offers []model.Offer, err error) {
	ctx, done := c.begin(ctx, "query offers", resourceSelf)
	defer done(&err)

	ref, ok := c.lookup(resourceSelf)
	if !ok {
		return []model.Offer{}, nil
	}
	container, err := c.cosmos.NewContainer(ref.database, ref.collection)
	if err != nil {
		return nil, err
	}

	resp, err := container.ReadThroughput(ctx, nil)
	if err != nil {
		// the service reports a container without its own offer as not found
		if err = classify(err, "query offers", resourceSelf); errors.IsNotFound(err) {
			return []model.Offer{}, nil
		}
		return nil, err
	}
	if resp.ThroughputProperties == nil {
		return []model.Offer{}, nil
	}

	offer, err := toOffer(resp.ThroughputProperties, resourceSelf)
	if err != nil {
		return nil, err
	}
	return []model.Offer{*offer}, nil
}

// ReplaceOffer sets the manual throughput of the collection offer links to.
// The stored offer is read back and rewritten with only its content changed.
func (c *Client) ReplaceOffer(ctx context.Context, offer *model.Offer) (replaced *model.Offer, err error) {
	ctx, done := c.begin(ctx, "replace offer", offer.ResourceLink)
	defer done(&err)

	ref, ok := c.lookup(offer.ResourceLink)
	if !ok {
		return nil, errors.NewOfferNotFoundError(offer.ResourceLink)
	}
	container, err := c.cosmos.NewContainer(ref.database, ref.collection)
	if err != nil {
		return nil, err
	}

	resp, err := container.ReplaceThroughput(ctx, azcosmos.NewManualThroughputProperties(int32(offer.Throughput())), nil)
	if err != nil {
		return nil, err
	}
	if resp.ThroughputProperties == nil {
		return offer, nil
	}
	return toOffer(resp.ThroughputProperties, offer.ResourceLink)
}

// Documents

func (c *Client) CreateDocument(ctx context.Context, collectionLink string, doc model.Document) (created model.Document, err error) {
	ctx, done := c.begin(ctx, "create document", collectionLink)
	defer done(&err)

	container, _, err := c.container(collectionLink)
	if err != nil {
		return nil, err
	}
	props, err := container.Read(ctx, nil)
	if err != nil {
		return nil, err
	}
	doc, pk, err := partitionKeyOf(doc, props.ContainerProperties)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewValidationError("failed to encode document").WithCause(err)
	}
	resp, err := container.CreateItem(ctx, pk, body, &azcosmos.ItemOptions{EnableContentResponseOnWrite: true})
	if err != nil {
		return nil, err
	}

	created = model.Document{}
	if err := json.Unmarshal(resp.Value, &created); err != nil {
		return nil, errors.NewInfrastructureError("failed to decode document").WithCause(err)
	}
	return created, nil
}

// ReadDocuments lists the documents of every partition of the collection.
func (c *Client) ReadDocuments(ctx context.Context, collectionLink string) (docs []model.Document, err error) {
	ctx, done := c.begin(ctx, "read documents", collectionLink)
	defer done(&err)

	container, _, err := c.container(collectionLink)
	if err != nil {
		return nil, err
	}
	pager := container.NewQueryItemsPager(queryItems, azcosmos.NewPartitionKey(), nil)
	items, err := drain(ctx, pager, func(page azcosmos.QueryItemsResponse) [][]byte {
		return page.Items
	})
	if err != nil {
		return nil, err
	}

	docs = make([]model.Document, 0, len(items))
	for _, item := range items {
		doc := model.Document{}
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, errors.NewInfrastructureError("failed to decode document").WithCause(err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
