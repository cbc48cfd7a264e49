package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"cosmos-admin/internal/cosmos/domain/model"
	. "cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CollectionUsecaseSuite struct {
	suite.Suite
	client    *MockResourceClient
	publisher *MockEventPublisher
	uc        CollectionUsecase
	ctx       context.Context
}

func (s *CollectionUsecaseSuite) SetupTest() {
	s.client = new(MockResourceClient)
	s.publisher = new(MockEventPublisher)
	log := quietLogger()
	databases := NewDatabaseUsecase(s.client, s.publisher, log)
	s.uc = NewCollectionUsecase(s.client, databases, s.publisher, log)
	s.ctx = context.Background()
}

func (s *CollectionUsecaseSuite) databaseExists(id string, exists bool) {
	result := []model.Database{}
	if exists {
		result = append(result, *model.NewDatabase(id))
	}
	s.client.On("QueryDatabases", anyCtx, id).Return(result, nil)
}

func (s *CollectionUsecaseSuite) collectionExists(db, id string, exists bool) {
	result := []model.Collection{}
	if exists {
		result = append(result, *orders())
	}
	s.client.On("QueryCollections", anyCtx, "dbs/"+db, id).Return(result, nil)
}

func orders() *model.Collection {
	coll := model.DefaultCollectionSpec("Orders")
	coll.ResourceID = "ZmtvAKqzoE0="
	coll.Self = "dbs/ZmtvAA==/colls/ZmtvAKqzoE0=/"
	return coll
}

func ordersOffer(throughput int) model.Offer {
	offer := model.Offer{
		OfferVersion:    model.OfferVersionV2,
		OfferResourceID: "ZmtvAKqzoE0=",
		ResourceLink:    "dbs/ZmtvAA==/colls/ZmtvAKqzoE0=/",
		Content:         model.OfferContent{OfferThroughput: throughput},
	}
	offer.ID = "Xqin"
	offer.ResourceID = "Xqin"
	offer.Self = "offers/Xqin/"
	return offer
}

func (s *CollectionUsecaseSuite) TestCreate_AppliesFixedConfiguration() {
	s.databaseExists("Contoso", true)
	s.client.On("CreateCollection", anyCtx, "dbs/Contoso", mock.MatchedBy(func(c *model.Collection) bool {
		return c.ID == "Orders" &&
			c.IndexingPolicy.IndexingMode == model.IndexingModeLazy &&
			!c.IndexingPolicy.Automatic &&
			len(c.UniqueKeyPolicy.UniqueKeys) == 1 &&
			assert.ObjectsAreEqual([]string{"/field1/field2", "/field3"}, c.UniqueKeyPaths())
	}), 400).Return(orders(), nil)
	s.publisher.On("Publish", anyCtx, eventFor(model.EventCollectionCreated, "ZmtvAKqzoE0=")).Return(nil)

	coll, err := s.uc.Create(s.ctx, "Contoso", "Orders")
	s.Require().NoError(err)
	s.Equal("Orders", coll.ID)
	s.client.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func (s *CollectionUsecaseSuite) TestCreate_SilentAbortWithoutParent() {
	s.databaseExists("Nowhere", false)

	coll, err := s.uc.Create(s.ctx, "Nowhere", "Orders")
	s.NoError(err)
	s.Nil(coll)
	s.client.AssertNotCalled(s.T(), "CreateCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *CollectionUsecaseSuite) TestCreate_Conflict() {
	s.databaseExists("Contoso", true)
	s.client.On("CreateCollection", anyCtx, "dbs/Contoso", mock.Anything, 400).
		Return(nil, errors.FromStatus(http.StatusConflict, "Conflict", "exists"))

	_, err := s.uc.Create(s.ctx, "Contoso", "Orders")
	s.True(errors.IsConflict(err))
}

func (s *CollectionUsecaseSuite) TestManageThroughput_AddsOneStep() {
	s.client.On("ReadCollection", anyCtx, "dbs/Contoso/colls/Orders").Return(orders(), nil)
	s.client.On("QueryOffers", anyCtx, "dbs/ZmtvAA==/colls/ZmtvAKqzoE0=/").Return([]model.Offer{ordersOffer(400)}, nil)
	replaced := ordersOffer(500)
	s.client.On("ReplaceOffer", anyCtx, mock.MatchedBy(func(o *model.Offer) bool {
		return o.Throughput() == 500 && o.ResourceLink == "dbs/ZmtvAA==/colls/ZmtvAKqzoE0=/"
	})).Return(&replaced, nil).Once()
	s.publisher.On("Publish", anyCtx, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Type == model.EventOfferReplaced && ev.ResourceID == "Xqin" &&
			ev.Details["before"] == 400 && ev.Details["after"] == 500
	})).Return(nil)

	change, err := s.uc.ManageThroughput(s.ctx, "Contoso", "Orders")
	s.Require().NoError(err)
	s.Equal(400, change.Before)
	s.Equal(500, change.After)
	s.Equal("Xqin", change.Offer.ID)
	s.Equal("Orders", change.Collection.ID)
	s.client.AssertNumberOfCalls(s.T(), "ReplaceOffer", 1)
	s.publisher.AssertExpectations(s.T())
}

func (s *CollectionUsecaseSuite) TestManageThroughput_NoOffer() {
	s.client.On("ReadCollection", anyCtx, "dbs/Contoso/colls/Orders").Return(orders(), nil)
	s.client.On("QueryOffers", anyCtx, mock.Anything).Return([]model.Offer{}, nil)

	change, err := s.uc.ManageThroughput(s.ctx, "Contoso", "Orders")
	s.Nil(change)
	s.True(errors.IsOfferNotFound(err))
	s.False(errors.IsNotFound(err))
	s.client.AssertNotCalled(s.T(), "ReplaceOffer", mock.Anything, mock.Anything)
}

func (s *CollectionUsecaseSuite) TestManageThroughput_MissingCollection() {
	s.client.On("ReadCollection", anyCtx, "dbs/Contoso/colls/Ghost").
		Return(nil, errors.FromStatus(http.StatusNotFound, "NotFound", "Resource Not Found"))

	_, err := s.uc.ManageThroughput(s.ctx, "Contoso", "Ghost")
	s.True(errors.IsNotFound(err))
	s.client.AssertNotCalled(s.T(), "QueryOffers", mock.Anything, mock.Anything)
}

func (s *CollectionUsecaseSuite) TestManageThroughput_ServiceRejectsReplace() {
	s.client.On("ReadCollection", anyCtx, mock.Anything).Return(orders(), nil)
	s.client.On("QueryOffers", anyCtx, mock.Anything).Return([]model.Offer{ordersOffer(400)}, nil)
	s.client.On("ReplaceOffer", anyCtx, mock.Anything).
		Return(nil, errors.FromStatus(http.StatusTooManyRequests, "TooManyRequests", "Request rate is large"))

	_, err := s.uc.ManageThroughput(s.ctx, "Contoso", "Orders")
	s.Require().Error(err)
	s.Equal(errors.ErrorTypeService, errors.TypeOf(err))
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *CollectionUsecaseSuite) TestListAll() {
	s.databaseExists("Contoso", true)
	s.client.On("ReadCollections", anyCtx, "dbs/Contoso").Return([]model.Collection{*orders()}, nil)

	colls, err := s.uc.ListAll(s.ctx, "Contoso")
	s.Require().NoError(err)
	s.Require().Len(colls, 1)
	s.Equal("Orders", colls[0].ID)
}

func (s *CollectionUsecaseSuite) TestListAll_MissingParent() {
	s.databaseExists("Nowhere", false)

	_, err := s.uc.ListAll(s.ctx, "Nowhere")
	s.True(errors.IsNotFound(err))
	s.client.AssertNotCalled(s.T(), "ReadCollections", mock.Anything, mock.Anything)
}

func (s *CollectionUsecaseSuite) TestDelete() {
	s.databaseExists("Contoso", true)
	s.collectionExists("Contoso", "Orders", true)
	s.client.On("DeleteCollection", anyCtx, "dbs/Contoso/colls/Orders").Return(nil)
	s.publisher.On("Publish", anyCtx, eventFor(model.EventCollectionDeleted, "ZmtvAKqzoE0=")).Return(nil)

	deleted, err := s.uc.Delete(s.ctx, "Contoso", "Orders")
	s.NoError(err)
	s.True(deleted)
	s.client.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func (s *CollectionUsecaseSuite) TestDelete_SilentAbort() {
	s.databaseExists("Nowhere", false)
	deleted, err := s.uc.Delete(s.ctx, "Nowhere", "Orders")
	s.NoError(err)
	s.False(deleted)

	s.databaseExists("Contoso", true)
	s.collectionExists("Contoso", "Ghost", false)
	deleted, err = s.uc.Delete(s.ctx, "Contoso", "Ghost")
	s.NoError(err)
	s.False(deleted)

	s.client.AssertNotCalled(s.T(), "DeleteCollection", mock.Anything, mock.Anything)
}

func TestCollectionUsecaseSuite(t *testing.T) {
	suite.Run(t, new(CollectionUsecaseSuite))
}

func TestCollectionUsecase_Read(t *testing.T) {
	client := new(MockResourceClient)
	log := quietLogger()
	uc := NewCollectionUsecase(client, NewDatabaseUsecase(client, nil, log), nil, log)

	client.On("ReadCollection", anyCtx, "dbs/Contoso/colls/Orders").Return(orders(), nil)
	coll, err := uc.Read(context.Background(), "Contoso", "Orders")
	require.NoError(t, err)
	assert.Equal(t, "dbs/ZmtvAA==/colls/ZmtvAKqzoE0=/", coll.Self)

	_, err = uc.Read(context.Background(), "Contoso", "bad/id")
	assert.True(t, errors.IsValidation(err))
}
