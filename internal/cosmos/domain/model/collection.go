package model

// IndexingMode of a collection's indexing policy.
type IndexingMode string

const (
	IndexingModeConsistent IndexingMode = "consistent"
	IndexingModeLazy       IndexingMode = "lazy"
	IndexingModeNone       IndexingMode = "none"
)

// Fixed configuration applied to every collection this client creates.
const (
	DefaultIndexingMode    = IndexingModeLazy
	DefaultAutomatic       = false
	DefaultOfferThroughput = 400

	// ThroughputStep is added to a collection's offer by each adjustment.
	ThroughputStep = 100
)

// DefaultUniqueKeyPaths is the single unique key every created collection carries.
var DefaultUniqueKeyPaths = []string{"/field1/field2", "/field3"}

// Partitioning of created collections. Documents that carry no value at
// DefaultPartitionKeyPath share the DefaultPartitionKeyValue partition, so
// unique keys span every such document.
const (
	DefaultPartitionKeyPath  = "/partitionKey"
	DefaultPartitionKeyValue = "default"
	PartitionKindHash        = "Hash"
)

// IndexingPolicy controls how documents are indexed.
type IndexingPolicy struct {
	IndexingMode IndexingMode `json:"indexingMode,omitempty" bson:"indexingMode,omitempty"`
	Automatic    bool         `json:"automatic" bson:"automatic"`
}

// UniqueKey is a set of field paths whose combined value must be unique.
type UniqueKey struct {
	Paths []string `json:"paths" bson:"paths"`
}

// UniqueKeyPolicy lists the unique keys of a collection.
type UniqueKeyPolicy struct {
	UniqueKeys []UniqueKey `json:"uniqueKeys" bson:"uniqueKeys"`
}

// PartitionKeyDefinition names the document paths that select a partition.
type PartitionKeyDefinition struct {
	Paths []string `json:"paths" bson:"paths"`
	Kind  string   `json:"kind,omitempty" bson:"kind,omitempty"`
}

// Collection is a container of documents within a database.
// dbs/{DATABASE_ID}/colls/{COLLECTION_ID}
type Collection struct {
	Resource        `bson:",inline"`
	PartitionKey    *PartitionKeyDefinition `json:"partitionKey,omitempty" bson:"partitionKey,omitempty"`
	IndexingPolicy  *IndexingPolicy         `json:"indexingPolicy,omitempty" bson:"indexingPolicy,omitempty"`
	UniqueKeyPolicy *UniqueKeyPolicy        `json:"uniqueKeyPolicy,omitempty" bson:"uniqueKeyPolicy,omitempty"`
	Docs            string                  `json:"_docs,omitempty" bson:"_docs,omitempty"`
	Sprocs          string                  `json:"_sprocs,omitempty" bson:"_sprocs,omitempty"`
	Triggers        string                  `json:"_triggers,omitempty" bson:"_triggers,omitempty"`
	Udfs            string                  `json:"_udfs,omitempty" bson:"_udfs,omitempty"`
	Conflicts       string                  `json:"_conflicts,omitempty" bson:"_conflicts,omitempty"`
}

// DefaultCollectionSpec builds the fixed collection definition used on create.
func DefaultCollectionSpec(id string) *Collection {
	paths := make([]string, len(DefaultUniqueKeyPaths))
	copy(paths, DefaultUniqueKeyPaths)

	return &Collection{
		Resource: Resource{ID: id},
		PartitionKey: &PartitionKeyDefinition{
			Paths: []string{DefaultPartitionKeyPath},
			Kind:  PartitionKindHash,
		},
		IndexingPolicy: &IndexingPolicy{
			IndexingMode: DefaultIndexingMode,
			Automatic:    DefaultAutomatic,
		},
		UniqueKeyPolicy: &UniqueKeyPolicy{
			UniqueKeys: []UniqueKey{{Paths: paths}},
		},
	}
}

// UniqueKeyPaths flattens every path of every unique key.
func (c *Collection) UniqueKeyPaths() []string {
	if c == nil || c.UniqueKeyPolicy == nil {
		return nil
	}
	var paths []string
	for _, key := range c.UniqueKeyPolicy.UniqueKeys {
		paths = append(paths, key.Paths...)
	}
	return paths
}
