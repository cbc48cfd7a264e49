package documentdb

import (
	"encoding/json"
	"maps"
	"strings"
	"time"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/resourcepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

func etag(tag *azcore.ETag) string {
	if tag == nil {
		return ""
	}
	return string(*tag)
}

func timestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func toDatabase(p *azcosmos.DatabaseProperties) *model.Database {
	if p == nil {
		return &model.Database{}
	}
	return &model.Database{Resource: model.Resource{
		ID:         p.ID,
		ResourceID: p.ResourceID,
		Self:       p.SelfLink,
		ETag:       etag(p.ETag),
		Timestamp:  timestamp(p.LastModified),
	}}
}

func databasesOf(page azcosmos.QueryDatabasesResponse) []model.Database {
	dbs := make([]model.Database, 0, len(page.Databases))
	for i := range page.Databases {
		dbs = append(dbs, *toDatabase(&page.Databases[i]))
	}
	return dbs
}

func toCollection(p *azcosmos.ContainerProperties) *model.Collection {
	if p == nil {
		return &model.Collection{}
	}
	coll := &model.Collection{Resource: model.Resource{
		ID:         p.ID,
		ResourceID: p.ResourceID,
		Self:       p.SelfLink,
		ETag:       etag(p.ETag),
		Timestamp:  timestamp(p.LastModified),
	}}

	if paths := p.PartitionKeyDefinition.Paths; len(paths) > 0 {
		coll.PartitionKey = &model.PartitionKeyDefinition{
			Paths: append([]string(nil), paths...),
			Kind:  string(p.PartitionKeyDefinition.Kind),
		}
	}
	if p.IndexingPolicy != nil {
		coll.IndexingPolicy = &model.IndexingPolicy{
			IndexingMode: model.IndexingMode(strings.ToLower(string(p.IndexingPolicy.IndexingMode))),
			Automatic:    p.IndexingPolicy.Automatic,
		}
	}
	if p.UniqueKeyPolicy != nil {
		policy := &model.UniqueKeyPolicy{UniqueKeys: []model.UniqueKey{}}
		for _, key := range p.UniqueKeyPolicy.UniqueKeys {
			policy.UniqueKeys = append(policy.UniqueKeys, model.UniqueKey{Paths: append([]string(nil), key.Paths...)})
		}
		coll.UniqueKeyPolicy = policy
	}
	return coll
}

// collectionsOf converts a page of collections and remembers their self-links.
func (c *Client) collectionsOf(databaseID string) func(azcosmos.QueryContainersResponse) []model.Collection {
	return func(page azcosmos.QueryContainersResponse) []model.Collection {
		colls := make([]model.Collection, 0, len(page.Containers))
		for i := range page.Containers {
			coll := toCollection(&page.Containers[i])
			c.remember(coll.Self, containerRef{database: databaseID, collection: coll.ID})
			colls = append(colls, *coll)
		}
		return colls
	}
}

func toContainerProperties(coll *model.Collection) azcosmos.ContainerProperties {
	props := azcosmos.ContainerProperties{ID: coll.ID}
	if coll.PartitionKey != nil {
		props.PartitionKeyDefinition = azcosmos.PartitionKeyDefinition{
			Paths: coll.PartitionKey.Paths,
			Kind:  azcosmos.PartitionKeyKind(coll.PartitionKey.Kind),
		}
	}
	if coll.IndexingPolicy != nil {
		props.IndexingPolicy = &azcosmos.IndexingPolicy{
			IndexingMode: azcosmos.IndexingMode(coll.IndexingPolicy.IndexingMode),
			Automatic:    coll.IndexingPolicy.Automatic,
		}
	}
	if coll.UniqueKeyPolicy != nil {
		policy := &azcosmos.UniqueKeyPolicy{}
		for _, key := range coll.UniqueKeyPolicy.UniqueKeys {
			policy.UniqueKeys = append(policy.UniqueKeys, azcosmos.UniqueKey{Paths: key.Paths})
		}
		props.UniqueKeyPolicy = policy
	}
	return props
}

// toOffer reads the offer fields the SDK exposes through its JSON form and the
// manual throughput through its accessor.
func toOffer(tp *azcosmos.ThroughputProperties, resourceLink string) (*model.Offer, error) {
	throughput, ok := tp.ManualThroughput()
	if !ok {
		return nil, errors.NewValidationError("collection offer has no manual throughput").
			WithDetail("resource", resourceLink)
	}

	offer := &model.Offer{}
	if raw, err := json.Marshal(tp); err == nil {
		_ = json.Unmarshal(raw, offer)
	}
	offer.Content.OfferThroughput = int(throughput)
	if offer.ResourceLink == "" {
		offer.ResourceLink = resourceLink
	}
	if offer.ETag == "" {
		offer.ETag = etag(tp.ETag)
	}
	return offer, nil
}

// partitionKeyOf returns the partition key value of doc under the container's
// partition key path. A document without a value at the default path is
// placed in the default partition; the returned document then carries it.
func partitionKeyOf(doc model.Document, props *azcosmos.ContainerProperties) (model.Document, azcosmos.PartitionKey, error) {
	if props == nil || len(props.PartitionKeyDefinition.Paths) == 0 {
		return doc, azcosmos.NullPartitionKey, nil
	}
	path := props.PartitionKeyDefinition.Paths[0]
	segments := resourcepath.Split(path)

	var value interface{} = map[string]interface{}(doc)
	found := true
	for _, segment := range segments {
		fields, ok := value.(map[string]interface{})
		if !ok {
			found = false
			break
		}
		if value, found = fields[segment]; !found {
			break
		}
	}

	if !found {
		if path != model.DefaultPartitionKeyPath {
			return nil, azcosmos.PartitionKey{}, errors.NewValidationError("document has no partition key value").
				WithDetail("path", path)
		}
		doc = maps.Clone(doc)
		doc[segments[0]] = model.DefaultPartitionKeyValue
		value = model.DefaultPartitionKeyValue
	}

	switch v := value.(type) {
	case string:
		return doc, azcosmos.NewPartitionKeyString(v), nil
	case float64:
		return doc, azcosmos.NewPartitionKeyNumber(v), nil
	case bool:
		return doc, azcosmos.NewPartitionKeyBool(v), nil
	case nil:
		return doc, azcosmos.NullPartitionKey, nil
	}
	return nil, azcosmos.PartitionKey{}, errors.NewValidationError("partition key value must be a string, number, boolean or null").
		WithDetail("path", path)
}
