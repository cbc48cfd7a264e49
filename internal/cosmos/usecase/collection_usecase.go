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
)

type collectionUsecase struct {
	client    repository.ResourceClient
	databases DatabaseUsecase
	auditor   *auditor
	logger    logger.Logger
}

// NewCollectionUsecase creates the collection operation set. databases is used
// for the parent existence checks; publisher may be nil.
func NewCollectionUsecase(client repository.ResourceClient, databases DatabaseUsecase, publisher repository.EventPublisher, log logger.Logger) CollectionUsecase {
	return &collectionUsecase{
		client:    client,
		databases: databases,
		auditor:   newAuditor(publisher, log),
		logger:    log.WithComponent("collection-usecase"),
	}
}

func validateIDs(databaseID, collectionID string) error {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return err
	}
	return resourcepath.ValidateID(collectionID)
}

func (uc *collectionUsecase) Find(ctx context.Context, databaseID, collectionID string) (bool, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return false, err
	}
	ctx = utils.WithTarget(ctx, "collection.find", databaseID, collectionID)

	coll, err := uc.find(ctx, databaseID, collectionID)
	return coll != nil, err
}

// find returns the collection named collectionID, or nil when the query
// matches nothing.
func (uc *collectionUsecase) find(ctx context.Context, databaseID, collectionID string) (*model.Collection, error) {
	found, err := uc.client.QueryCollections(ctx, resourcepath.DatabaseLink(databaseID), collectionID)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to query collections: %v", err)
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (uc *collectionUsecase) Create(ctx context.Context, databaseID, collectionID string) (*model.Collection, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "collection.create", databaseID, collectionID)
	log := uc.logger.WithContext(ctx)

	exists, err := uc.databases.Find(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Debug("Parent database does not exist, collection not created")
		return nil, nil
	}

	spec := model.DefaultCollectionSpec(collectionID)
	log.WithFields(map[string]interface{}{
		"indexing_mode": spec.IndexingPolicy.IndexingMode,
		"throughput":    model.DefaultOfferThroughput,
	}).Info("Creating new collection")

	coll, err := uc.client.CreateCollection(ctx, resourcepath.DatabaseLink(databaseID), spec, model.DefaultOfferThroughput)
	if err != nil {
		log.Errorf("Failed to create collection: %v", err)
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.WithFields(map[string]interface{}{"rid": coll.ResourceID}).Info("Collection created successfully")
	uc.auditor.record(ctx, model.NewAuditEvent(model.EventCollectionCreated, databaseID, collectionID).
		WithResource(coll.ResourceID).
		WithDetail("self", coll.Self).
		WithDetail("throughput", model.DefaultOfferThroughput))
	return coll, nil
}

func (uc *collectionUsecase) ManageThroughput(ctx context.Context, databaseID, collectionID string) (*ThroughputChange, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "offer.replace", databaseID, collectionID)
	log := uc.logger.WithContext(ctx)

	coll, err := uc.client.ReadCollection(ctx, resourcepath.CollectionLink(databaseID, collectionID))
	if err != nil {
		log.Errorf("Failed to read collection: %v", err)
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	offers, err := uc.client.QueryOffers(ctx, coll.Self)
	if err != nil {
		log.Errorf("Failed to query offers: %v", err)
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	if len(offers) == 0 {
		return nil, errors.NewOfferNotFoundError(coll.Self).WithDetail("collection", collectionID)
	}

	current := &offers[0]
	before := current.Throughput()
	log.WithFields(map[string]interface{}{
		"offer":      current.ID,
		"throughput": before,
	}).Info("Replacing collection offer")

	replaced, err := uc.client.ReplaceOffer(ctx, current.WithThroughput(before+model.ThroughputStep))
	if err != nil {
		log.Errorf("Failed to replace offer: %v", err)
		return nil, fmt.Errorf("failed to replace offer: %w", err)
	}

	change := &ThroughputChange{
		Collection: coll,
		Offer:      replaced,
		Before:     before,
		After:      replaced.Throughput(),
	}
	uc.auditor.record(ctx, model.NewAuditEvent(model.EventOfferReplaced, databaseID, collectionID).
		WithResource(replaced.ResourceID).
		WithDetail("offer", replaced.ID).
		WithDetail("before", change.Before).
		WithDetail("after", change.After))
	return change, nil
}

func (uc *collectionUsecase) Read(ctx context.Context, databaseID, collectionID string) (*model.Collection, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "collection.read", databaseID, collectionID)

	coll, err := uc.client.ReadCollection(ctx, resourcepath.CollectionLink(databaseID, collectionID))
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to read collection: %v", err)
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return coll, nil
}

func (uc *collectionUsecase) ListAll(ctx context.Context, databaseID string) ([]model.Collection, error) {
	if err := resourcepath.ValidateID(databaseID); err != nil {
		return nil, err
	}
	ctx = utils.WithTarget(ctx, "collection.list", databaseID, "")

	exists, err := uc.databases.Find(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewNotFoundError(fmt.Sprintf("database '%s'", databaseID)).
			WithDetail("database", databaseID)
	}

	colls, err := uc.client.ReadCollections(ctx, resourcepath.DatabaseLink(databaseID))
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to list collections: %v", err)
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return colls, nil
}

func (uc *collectionUsecase) Delete(ctx context.Context, databaseID, collectionID string) (bool, error) {
	if err := validateIDs(databaseID, collectionID); err != nil {
		return false, err
	}
	ctx = utils.WithTarget(ctx, "collection.delete", databaseID, collectionID)
	log := uc.logger.WithContext(ctx)

	dbExists, err := uc.databases.Find(ctx, databaseID)
	if err != nil {
		return false, err
	}
	if !dbExists {
		log.Debug("Parent database does not exist, nothing deleted")
		return false, nil
	}
	coll, err := uc.find(ctx, databaseID, collectionID)
	if err != nil {
		return false, err
	}
	if coll == nil {
		log.Debug("Collection does not exist, nothing deleted")
		return false, nil
	}

	log.Info("Deleting collection")
	if err := uc.client.DeleteCollection(ctx, resourcepath.CollectionLink(databaseID, collectionID)); err != nil {
		log.Errorf("Failed to delete collection: %v", err)
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}

	log.Info("Collection deleted successfully")
	uc.auditor.record(ctx, model.NewAuditEvent(model.EventCollectionDeleted, databaseID, collectionID).
		WithResource(coll.ResourceID))
	return true, nil
}
