package usecase_test

import (
	"context"
	"io"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/logger"

	"github.com/stretchr/testify/mock"
)

// MockResourceClient is a testify mock of repository.ResourceClient.
type MockResourceClient struct {
	mock.Mock
}

func (m *MockResourceClient) QueryDatabases(ctx context.Context, id string) ([]model.Database, error) {
	args := m.Called(ctx, id)
	dbs, _ := args.Get(0).([]model.Database)
	return dbs, args.Error(1)
}

func (m *MockResourceClient) CreateDatabase(ctx context.Context, db *model.Database) (*model.Database, error) {
	args := m.Called(ctx, db)
	created, _ := args.Get(0).(*model.Database)
	return created, args.Error(1)
}

func (m *MockResourceClient) ReadDatabase(ctx context.Context, link string) (*model.Database, error) {
	args := m.Called(ctx, link)
	db, _ := args.Get(0).(*model.Database)
	return db, args.Error(1)
}

func (m *MockResourceClient) ReadDatabases(ctx context.Context) ([]model.Database, error) {
	args := m.Called(ctx)
	dbs, _ := args.Get(0).([]model.Database)
	return dbs, args.Error(1)
}

func (m *MockResourceClient) DeleteDatabase(ctx context.Context, link string) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockResourceClient) QueryCollections(ctx context.Context, databaseLink, id string) ([]model.Collection, error) {
	args := m.Called(ctx, databaseLink, id)
	colls, _ := args.Get(0).([]model.Collection)
	return colls, args.Error(1)
}

func (m *MockResourceClient) CreateCollection(ctx context.Context, databaseLink string, coll *model.Collection, throughput int) (*model.Collection, error) {
	args := m.Called(ctx, databaseLink, coll, throughput)
	created, _ := args.Get(0).(*model.Collection)
	return created, args.Error(1)
}

func (m *MockResourceClient) ReadCollection(ctx context.Context, link string) (*model.Collection, error) {
	args := m.Called(ctx, link)
	coll, _ := args.Get(0).(*model.Collection)
	return coll, args.Error(1)
}

func (m *MockResourceClient) ReadCollections(ctx context.Context, databaseLink string) ([]model.Collection, error) {
	args := m.Called(ctx, databaseLink)
	colls, _ := args.Get(0).([]model.Collection)
	return colls, args.Error(1)
}

func (m *MockResourceClient) DeleteCollection(ctx context.Context, link string) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockResourceClient) QueryOffers(ctx context.Context, resourceSelf string) ([]model.Offer, error) {
	args := m.Called(ctx, resourceSelf)
	offers, _ := args.Get(0).([]model.Offer)
	return offers, args.Error(1)
}

func (m *MockResourceClient) ReplaceOffer(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	args := m.Called(ctx, offer)
	replaced, _ := args.Get(0).(*model.Offer)
	return replaced, args.Error(1)
}

func (m *MockResourceClient) CreateDocument(ctx context.Context, collectionLink string, doc model.Document) (model.Document, error) {
	args := m.Called(ctx, collectionLink, doc)
	created, _ := args.Get(0).(model.Document)
	return created, args.Error(1)
}

func (m *MockResourceClient) ReadDocuments(ctx context.Context, collectionLink string) ([]model.Document, error) {
	args := m.Called(ctx, collectionLink)
	docs, _ := args.Get(0).([]model.Document)
	return docs, args.Error(1)
}

func (m *MockResourceClient) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher records published audit events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *model.AuditEvent) error {
	return m.Called(ctx, event).Error(0)
}

func quietLogger() logger.Logger {
	return logger.NewLoggerWithOutput("error", "text", io.Discard)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Type == eventType
	})
}

func eventFor(eventType, resourceID string) interface{} {
	return mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Type == eventType && ev.ResourceID == resourceID
	})
}

var anyCtx = mock.Anything
