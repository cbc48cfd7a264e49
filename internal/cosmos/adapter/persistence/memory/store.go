package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/resourcepath"

	"github.com/google/uuid"
)

var _ repository.ResourceClient = (*Store)(nil)

type collectionEntry struct {
	coll model.Collection
	docs []model.Document
}

type databaseEntry struct {
	db          model.Database
	collections map[string]*collectionEntry
	order       []string
}

// Store is an in-process emulation of the resource service. It assigns
// resource ids and self-links, provisions an offer per collection and
// enforces id and unique-key constraints the way the service does.
type Store struct {
	mu        sync.RWMutex
	databases map[string]*databaseEntry
	order     []string
	offers    map[string]*model.Offer
	closed    bool
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		databases: make(map[string]*databaseEntry),
		offers:    make(map[string]*model.Offer),
		now:       time.Now,
	}
}

func newRID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:6])
}

func (s *Store) stamp(r *model.Resource, rid, self string) {
	r.ResourceID = rid
	r.Self = self
	r.ETag = fmt.Sprintf("%q", uuid.NewString())
	r.Timestamp = s.now().Unix()
}

func (s *Store) checkOpen() error {
	if s.closed {
		return errors.NewInfrastructureError("store is closed")
	}
	return nil
}

func notFound(link string) error {
	return errors.FromStatus(404, "NotFound", fmt.Sprintf("Resource Not Found: %s", link)).WithComponent("memory")
}

func conflict(message string) error {
	return errors.FromStatus(409, "Conflict", message).WithComponent("memory")
}

func (s *Store) database(link string) (*databaseEntry, error) {
	info, err := resourcepath.Parse(link)
	if err != nil {
		return nil, err
	}
	entry, ok := s.databases[info.DatabaseID]
	if !ok {
		return nil, notFound(link)
	}
	return entry, nil
}

func (s *Store) collection(link string) (*databaseEntry, *collectionEntry, error) {
	info, err := resourcepath.Parse(link)
	if err != nil {
		return nil, nil, err
	}
	db, ok := s.databases[info.DatabaseID]
	if !ok {
		return nil, nil, notFound(link)
	}
	coll, ok := db.collections[info.CollectionID]
	if !ok {
		return nil, nil, notFound(link)
	}
	return db, coll, nil
}

// Databases

func (s *Store) QueryDatabases(ctx context.Context, id string) ([]model.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	result := []model.Database{}
	if entry, ok := s.databases[id]; ok {
		result = append(result, entry.db)
	}
	return result, nil
}

func (s *Store) CreateDatabase(ctx context.Context, db *model.Database) (*model.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := resourcepath.ValidateID(db.ID); err != nil {
		return nil, err
	}
	if _, exists := s.databases[db.ID]; exists {
		return nil, conflict("Entity with the specified id already exists in the system.")
	}

	created := model.Database{Resource: model.Resource{ID: db.ID}}
	rid := newRID()
	s.stamp(&created.Resource, rid, "dbs/"+rid+"/")
	created.Collections = "colls/"
	created.Users = "users/"

	s.databases[db.ID] = &databaseEntry{db: created, collections: make(map[string]*collectionEntry)}
	s.order = append(s.order, db.ID)
	return &created, nil
}

func (s *Store) ReadDatabase(ctx context.Context, link string) (*model.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	entry, err := s.database(link)
	if err != nil {
		return nil, err
	}
	db := entry.db
	return &db, nil
}

func (s *Store) ReadDatabases(ctx context.Context) ([]model.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	result := make([]model.Database, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.databases[id].db)
	}
	return result, nil
}

func (s *Store) DeleteDatabase(ctx context.Context, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	entry, err := s.database(link)
	if err != nil {
		return err
	}
	for _, coll := range entry.collections {
		s.dropOffer(coll.coll.Self)
	}
	delete(s.databases, entry.db.ID)
	s.order = remove(s.order, entry.db.ID)
	return nil
}

// Collections

func (s *Store) QueryCollections(ctx context.Context, databaseLink, id string) ([]model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	db, err := s.database(databaseLink)
	if err != nil {
		return nil, err
	}
	result := []model.Collection{}
	if entry, ok := db.collections[id]; ok {
		result = append(result, entry.coll)
	}
	return result, nil
}

func (s *Store) CreateCollection(ctx context.Context, databaseLink string, coll *model.Collection, throughput int) (*model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	db, err := s.database(databaseLink)
	if err != nil {
		return nil, err
	}
	if err := resourcepath.ValidateID(coll.ID); err != nil {
		return nil, err
	}
	if _, exists := db.collections[coll.ID]; exists {
		return nil, conflict("Entity with the specified id already exists in the system.")
	}

	created := *coll
	if created.IndexingPolicy == nil {
		created.IndexingPolicy = &model.IndexingPolicy{IndexingMode: model.IndexingModeConsistent, Automatic: true}
	}
	rid := newRID()
	s.stamp(&created.Resource, rid, db.db.Self+"colls/"+rid+"/")
	created.Docs = "docs/"
	created.Sprocs = "sprocs/"
	created.Triggers = "triggers/"
	created.Udfs = "udfs/"
	created.Conflicts = "conflicts/"

	db.collections[coll.ID] = &collectionEntry{coll: created}
	db.order = append(db.order, coll.ID)

	if throughput > 0 {
		offerRID := newRID()
		offer := &model.Offer{
			OfferVersion:    model.OfferVersionV2,
			OfferType:       model.OfferTypeInvalid,
			OfferResourceID: rid,
			ResourceLink:    created.Self,
			Content:         model.OfferContent{OfferThroughput: throughput},
		}
		offer.ID = offerRID
		s.stamp(&offer.Resource, offerRID, "offers/"+offerRID+"/")
		s.offers[offerRID] = offer
	}

	return &created, nil
}

func (s *Store) ReadCollection(ctx context.Context, link string) (*model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	_, entry, err := s.collection(link)
	if err != nil {
		return nil, err
	}
	coll := entry.coll
	return &coll, nil
}

func (s *Store) ReadCollections(ctx context.Context, databaseLink string) ([]model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	db, err := s.database(databaseLink)
	if err != nil {
		return nil, err
	}
	result := make([]model.Collection, 0, len(db.order))
	for _, id := range db.order {
		result = append(result, db.collections[id].coll)
	}
	return result, nil
}

func (s *Store) DeleteCollection(ctx context.Context, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	db, entry, err := s.collection(link)
	if err != nil {
		return err
	}
	s.dropOffer(entry.coll.Self)
	delete(db.collections, entry.coll.ID)
	db.order = remove(db.order, entry.coll.ID)
	return nil
}

// Offers

func (s *Store) QueryOffers(ctx context.Context, resourceSelf string) ([]model.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	result := []model.Offer{}
	for _, offer := range s.offers {
		if offer.ResourceLink == resourceSelf {
			result = append(result, *offer)
		}
	}
	return result, nil
}

func (s *Store) ReplaceOffer(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	existing, ok := s.offers[offer.ResourceID]
	if !ok {
		return nil, notFound(resourcepath.OfferLink(offer.ResourceID))
	}
	if offer.ResourceLink != existing.ResourceLink {
		return nil, errors.FromStatus(400, "BadRequest", "offer resource link cannot be changed")
	}
	if offer.Content.OfferThroughput < 400 || offer.Content.OfferThroughput%100 != 0 {
		return nil, errors.FromStatus(400, "BadRequest",
			fmt.Sprintf("invalid throughput %d: must be a multiple of 100 and at least 400", offer.Content.OfferThroughput))
	}

	updated := *existing
	updated.Content = offer.Content
	s.stamp(&updated.Resource, existing.ResourceID, existing.Self)
	s.offers[existing.ResourceID] = &updated
	result := updated
	return &result, nil
}

func (s *Store) dropOffer(resourceSelf string) {
	for rid, offer := range s.offers {
		if offer.ResourceLink == resourceSelf {
			delete(s.offers, rid)
		}
	}
}

// Documents

func (s *Store) CreateDocument(ctx context.Context, collectionLink string, doc model.Document) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	_, entry, err := s.collection(collectionLink)
	if err != nil {
		return nil, err
	}

	created := doc.StripSystemProperties()
	if created.ID() == "" {
		created["id"] = uuid.NewString()
	}
	for _, existing := range entry.docs {
		if existing.ID() == created.ID() {
			return nil, conflict("Entity with the specified id already exists in the system.")
		}
		if violatesUniqueKey(entry.coll.UniqueKeyPolicy, existing, created) {
			return nil, conflict("Unique index constraint violation.")
		}
	}

	rid := newRID()
	created["_rid"] = rid
	created["_self"] = entry.coll.Self + "docs/" + rid + "/"
	created["_etag"] = fmt.Sprintf("%q", uuid.NewString())
	created["_ts"] = s.now().Unix()
	entry.docs = append(entry.docs, created)
	return created.Clone(), nil
}

func (s *Store) ReadDocuments(ctx context.Context, collectionLink string) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	_, entry, err := s.collection(collectionLink)
	if err != nil {
		return nil, err
	}
	result := make([]model.Document, 0, len(entry.docs))
	for _, doc := range entry.docs {
		result = append(result, doc.Clone())
	}
	return result, nil
}

// Ping reports whether the store is still open.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkOpen()
}

// Close marks the store closed; later calls fail as a dropped connection would.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// violatesUniqueKey reports whether a and b carry equal values on every path
// of any unique key.
func violatesUniqueKey(policy *model.UniqueKeyPolicy, a, b model.Document) bool {
	if policy == nil {
		return false
	}
	for _, key := range policy.UniqueKeys {
		if len(key.Paths) == 0 {
			continue
		}
		equal := true
		for _, path := range key.Paths {
			if fmt.Sprint(lookup(a, path)) != fmt.Sprint(lookup(b, path)) {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}
	return false
}

// lookup resolves a /a/b path inside a document; missing values are nil.
func lookup(doc model.Document, path string) interface{} {
	var current interface{} = map[string]interface{}(doc)
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
