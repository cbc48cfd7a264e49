package usecase

import (
	"context"
	"fmt"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/resourcepath"
	"cosmos-admin/internal/shared/utils"

	"github.com/google/uuid"
)

type documentUsecase struct {
	client  repository.DocumentClient
	auditor *auditor
	logger  logger.Logger
}

// NewDocumentUsecase creates the document operation set. publisher may be nil.
func NewDocumentUsecase(client repository.DocumentClient, publisher repository.EventPublisher, log logger.Logger) DocumentUsecase {
	return &documentUsecase{
		client:  client,
		auditor: newAuditor(publisher, log),
		logger:  log.WithComponent("document-usecase"),
	}
}

// Create stores doc, assigning a random id when it carries none.
func (uc *documentUsecase) Create(ctx context.Context, databaseID, collectionID string, doc model.Document) (model.Document, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewValidationError("document body cannot be empty")
	}

	body := doc.StripSystemProperties()
	if body.ID() == "" {
		body["id"] = uuid.NewString()
	} else if err := resourcepath.ValidateID(body.ID()); err != nil {
		return nil, err
	}

	ctx = utils.WithTarget(ctx, "document.create", databaseID, collectionID)
	log := uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"document_id": body.ID()})
	log.Info("Creating new document")

	created, err := uc.client.CreateDocument(ctx, resourcepath.CollectionLink(databaseID, collectionID), body)
	if err != nil {
		log.Errorf("Failed to create document: %v", err)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	uc.auditor.record(ctx, model.NewAuditEvent(model.EventDocumentCreated, databaseID, collectionID).
		WithResource(created.ResourceID()).
		WithDetail("document", created.ID()))
	return created, nil
}

func (uc *documentUsecase) ReadAll(ctx context.Context, databaseID, collectionID string) ([]model.Document, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "document.list", databaseID, collectionID)

	docs, err := uc.client.ReadDocuments(ctx, resourcepath.CollectionLink(databaseID, collectionID))
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to read documents: %v", err)
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return docs, nil
}
