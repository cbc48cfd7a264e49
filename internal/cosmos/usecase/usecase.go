package usecase

import (
	"context"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/utils"
)

// DatabaseUsecase manages the databases of an account.
type DatabaseUsecase interface {
	Find(ctx context.Context, databaseID string) (bool, error)
	Create(ctx context.Context, databaseID string) (*model.Database, error)
	Read(ctx context.Context, databaseID string) (*model.Database, error)
	ListAll(ctx context.Context) ([]model.Database, error)
	Delete(ctx context.Context, databaseID string) error
}

// CollectionUsecase manages the collections of a database and their offers.
type CollectionUsecase interface {
	Find(ctx context.Context, databaseID, collectionID string) (bool, error)
	// Create returns a nil collection and a nil error when the parent database
	// does not exist; nothing is sent to the service in that case.
	Create(ctx context.Context, databaseID, collectionID string) (*model.Collection, error)
	ManageThroughput(ctx context.Context, databaseID, collectionID string) (*ThroughputChange, error)
	Read(ctx context.Context, databaseID, collectionID string) (*model.Collection, error)
	// ListAll fails with a not-found error naming the database when it is absent.
	ListAll(ctx context.Context, databaseID string) ([]model.Collection, error)
	// Delete reports false when the database or the collection does not exist.
	Delete(ctx context.Context, databaseID, collectionID string) (bool, error)
}

// DocumentUsecase writes and reads documents of a collection.
type DocumentUsecase interface {
	Create(ctx context.Context, databaseID, collectionID string, doc model.Document) (model.Document, error)
	ReadAll(ctx context.Context, databaseID, collectionID string) ([]model.Document, error)
}

// ThroughputChange is the outcome of one throughput adjustment.
type ThroughputChange struct {
	Collection *model.Collection
	Offer      *model.Offer
	Before     int
	After      int
}

// AdminUsecase bundles the three operation sets over one client.
type AdminUsecase struct {
	Databases   DatabaseUsecase
	Collections CollectionUsecase
	Documents   DocumentUsecase
}

// NewAdminUsecase wires every operation set to client. publisher may be nil.
func NewAdminUsecase(client repository.ResourceClient, publisher repository.EventPublisher, log logger.Logger) *AdminUsecase {
	databases := NewDatabaseUsecase(client, publisher, log)
	return &AdminUsecase{
		Databases:   databases,
		Collections: NewCollectionUsecase(client, databases, publisher, log),
		Documents:   NewDocumentUsecase(client, publisher, log),
	}
}

// auditor publishes audit events on a best-effort basis.
type auditor struct {
	publisher repository.EventPublisher
	logger    logger.Logger
}

func newAuditor(publisher repository.EventPublisher, log logger.Logger) *auditor {
	return &auditor{publisher: publisher, logger: log.WithComponent("audit")}
}

func (a *auditor) record(ctx context.Context, event *model.AuditEvent) {
	if a == nil || a.publisher == nil {
		return
	}
	event.Subject = utils.GetSubjectOrDefault(ctx, "")
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"event": event.Type,
			"error": err.Error(),
		}).Warn("Failed to publish audit event")
	}
}
