package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"cosmos-admin/internal/cosmos/domain/model"
	. "cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func contoso() *model.Database {
	db := model.NewDatabase("Contoso")
	db.ResourceID = "ZmtvAA=="
	db.Self = "dbs/ZmtvAA==/"
	return db
}

func TestDatabaseUsecase_Find(t *testing.T) {
	client := new(MockResourceClient)
	uc := NewDatabaseUsecase(client, nil, quietLogger())
	ctx := context.Background()

	client.On("QueryDatabases", anyCtx, "Contoso").Return([]model.Database{*contoso()}, nil).Once()
	client.On("QueryDatabases", anyCtx, "Missing").Return([]model.Database{}, nil).Once()

	found, err := uc.Find(ctx, "Contoso")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = uc.Find(ctx, "Missing")
	require.NoError(t, err)
	assert.False(t, found)

	client.AssertExpectations(t)
}

func TestDatabaseUsecase_Create(t *testing.T) {
	t.Run("success publishes an audit event", func(t *testing.T) {
		client := new(MockResourceClient)
		publisher := new(MockEventPublisher)
		uc := NewDatabaseUsecase(client, publisher, quietLogger())

		client.On("CreateDatabase", anyCtx, mock.MatchedBy(func(db *model.Database) bool {
			return db.ID == "Contoso" && db.Self == ""
		})).Return(contoso(), nil)
		publisher.On("Publish", anyCtx, mock.MatchedBy(func(ev *model.AuditEvent) bool {
			return ev.Type == model.EventDatabaseCreated && ev.DatabaseID == "Contoso" && ev.Subject == "ops" &&
				ev.ResourceID == "ZmtvAA=="
		})).Return(nil)

		db, err := uc.Create(utils.WithSubject(context.Background(), "ops"), "Contoso")
		require.NoError(t, err)
		assert.Equal(t, "dbs/ZmtvAA==/", db.Self)
		client.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("conflict keeps its kind", func(t *testing.T) {
		client := new(MockResourceClient)
		publisher := new(MockEventPublisher)
		uc := NewDatabaseUsecase(client, publisher, quietLogger())

		client.On("CreateDatabase", anyCtx, mock.Anything).
			Return(nil, errors.FromStatus(http.StatusConflict, "Conflict", "Resource with specified id already exists"))

		db, err := uc.Create(context.Background(), "Contoso")
		assert.Nil(t, db)
		assert.True(t, errors.IsConflict(err))
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publisher failure does not fail the operation", func(t *testing.T) {
		client := new(MockResourceClient)
		publisher := new(MockEventPublisher)
		uc := NewDatabaseUsecase(client, publisher, quietLogger())

		client.On("CreateDatabase", anyCtx, mock.Anything).Return(contoso(), nil)
		publisher.On("Publish", anyCtx, eventOfType(model.EventDatabaseCreated)).
			Return(errors.NewInfrastructureError("redis down"))

		_, err := uc.Create(context.Background(), "Contoso")
		assert.NoError(t, err)
	})

	t.Run("empty name never reaches the service", func(t *testing.T) {
		client := new(MockResourceClient)
		uc := NewDatabaseUsecase(client, nil, quietLogger())

		_, err := uc.Create(context.Background(), "  ")
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Equal(t, "Empty name provided", err.Error())
		client.AssertNotCalled(t, "CreateDatabase", mock.Anything, mock.Anything)
	})
}

func TestDatabaseUsecase_Read(t *testing.T) {
	client := new(MockResourceClient)
	uc := NewDatabaseUsecase(client, nil, quietLogger())

	client.On("ReadDatabase", anyCtx, "dbs/Contoso").Return(contoso(), nil)
	client.On("ReadDatabase", anyCtx, "dbs/Missing").
		Return(nil, errors.FromStatus(http.StatusNotFound, "NotFound", "Resource Not Found"))

	db, err := uc.Read(context.Background(), "Contoso")
	require.NoError(t, err)
	assert.Equal(t, "Contoso", db.ID)

	_, err = uc.Read(context.Background(), "Missing")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsServiceFailure(err))
}

func TestDatabaseUsecase_ListAll(t *testing.T) {
	client := new(MockResourceClient)
	uc := NewDatabaseUsecase(client, nil, quietLogger())

	client.On("ReadDatabases", anyCtx).Return([]model.Database{}, nil).Once()
	dbs, err := uc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dbs)

	client.On("ReadDatabases", anyCtx).Return(nil, errors.NewInfrastructureError("dial tcp: connection refused")).Once()
	_, err = uc.ListAll(context.Background())
	require.Error(t, err)
	assert.False(t, errors.IsServiceFailure(err))
}

func TestDatabaseUsecase_Delete(t *testing.T) {
	client := new(MockResourceClient)
	publisher := new(MockEventPublisher)
	uc := NewDatabaseUsecase(client, publisher, quietLogger())

	client.On("DeleteDatabase", anyCtx, "dbs/Contoso").Return(nil)
	client.On("DeleteDatabase", anyCtx, "dbs/Missing").
		Return(errors.FromStatus(http.StatusNotFound, "NotFound", "Resource Not Found"))
	publisher.On("Publish", anyCtx, eventOfType(model.EventDatabaseDeleted)).Return(nil).Once()

	require.NoError(t, uc.Delete(context.Background(), "Contoso"))
	assert.True(t, errors.IsNotFound(uc.Delete(context.Background(), "Missing")))

	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
