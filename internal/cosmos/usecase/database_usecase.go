package usecase

import (
	"context"
	"fmt"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/resourcepath"
	"cosmos-admin/internal/shared/utils"
)

type databaseUsecase struct {
	client  repository.DatabaseClient
	auditor *auditor
	logger  logger.Logger
}

// NewDatabaseUsecase creates the database operation set.
// publisher may be nil.
func NewDatabaseUsecase(client repository.DatabaseClient, publisher repository.EventPublisher, log logger.Logger) DatabaseUsecase {
	return &databaseUsecase{
		client:  client,
		auditor: newAuditor(publisher, log),
		logger:  log.WithComponent("database-usecase"),
	}
}

func (uc *databaseUsecase) Find(ctx context.Context, databaseID string) (bool, error) {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return false, err
	}
	ctx = utils.WithTarget(ctx, "database.find", databaseID, "")

	found, err := uc.client.QueryDatabases(ctx, databaseID)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to query databases: %v", err)
		return false, fmt.Errorf("failed to query databases: %w", err)
	}
	uc.logger.WithContext(ctx).Debugf("Database query matched %d resources", len(found))
	return len(found) > 0, nil
}

func (uc *databaseUsecase) Create(ctx context.Context, databaseID string) (*model.Database, error) {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "database.create", databaseID, "")
	log := uc.logger.WithContext(ctx)
	log.Info("Creating new database")

	db, err := uc.client.CreateDatabase(ctx, model.NewDatabase(databaseID))
	if err != nil {
		log.Errorf("Failed to create database: %v", err)
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	log.WithFields(map[string]interface{}{"rid": db.ResourceID}).Info("Database created successfully")
	uc.auditor.record(ctx, model.NewAuditEvent(model.EventDatabaseCreated, databaseID, "").
		WithResource(db.ResourceID).
		WithDetail("self", db.Self))
	return db, nil
}

func (uc *databaseUsecase) Read(ctx context.Context, databaseID string) (*model.Database, error) {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "database.read", databaseID, "")
	uc.logger.WithContext(ctx).Debug("Reading database")

	db, err := uc.client.ReadDatabase(ctx, resourcepath.DatabaseLink(databaseID))
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to read database: %v", err)
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return db, nil
}

func (uc *databaseUsecase) ListAll(ctx context.Context) ([]model.Database, error) {
	ctx = utils.WithOperation(ctx, "database.list")

	dbs, err := uc.client.ReadDatabases(ctx)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to list databases: %v", err)
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	uc.logger.WithContext(ctx).Debugf("Listed %d databases", len(dbs))
	return dbs, nil
}

func (uc *databaseUsecase) Delete(ctx context.Context, databaseID string) error {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return err
	}
	ctx = utils.WithTarget(ctx, "database.delete", databaseID, "")
	log := uc.logger.WithContext(ctx)
	log.Info("Deleting database")

	if err := uc.client.DeleteDatabase(ctx, resourcepath.DatabaseLink(databaseID)); err != nil {
		log.Errorf("Failed to delete database: %v", err)
		return fmt.Errorf("failed to delete database: %w", err)
	}

	log.Info("Database deleted successfully")
	uc.auditor.record(ctx, model.NewAuditEvent(model.EventDatabaseDeleted, databaseID, ""))
	return nil
}
