package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/filter"
)

// ListOptions narrows and formats list output.
type ListOptions struct {
	Where *filter.Predicate
	Table bool
}

// DatabaseOperations reports database operations to the console. Not-found
// and conflict outcomes are reported and absorbed; every other error is
// returned.
type DatabaseOperations struct {
	uc  usecase.DatabaseUsecase
	out *Output
}

func NewDatabaseOperations(uc usecase.DatabaseUsecase, out *Output) *DatabaseOperations {
	return &DatabaseOperations{uc: uc, out: out}
}

func (o *DatabaseOperations) Find(ctx context.Context, id string) (bool, error) {
	found, err := o.uc.Find(ctx, id)
	if err != nil {
		return false, err
	}
	if found {
		o.out.Printf("Database with id '%s' was found", id)
	} else {
		o.out.Printf("No database with id '%s' was found", id)
	}
	return found, nil
}

func (o *DatabaseOperations) Create(ctx context.Context, id string) error {
	if _, err := o.uc.Create(ctx, id); err != nil {
		if errors.IsConflict(err) {
			o.out.Warnf("A database with id '%s' already exists", id)
			return nil
		}
		return err
	}
	o.out.Printf("Database with id '%s' created", id)
	return nil
}

func (o *DatabaseOperations) Read(ctx context.Context, id string) error {
	db, err := o.uc.Read(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("A database with id '%s' does not exist", id)
			return nil
		}
		return err
	}
	o.out.Printf("Database with id '%s' was found, it's _self is %s", id, db.Self)
	return nil
}

func (o *DatabaseOperations) ListAll(ctx context.Context, opts ListOptions) error {
	dbs, err := o.uc.ListAll(ctx)
	if err != nil {
		return err
	}
	if dbs, err = filter.Apply(opts.Where, dbs); err != nil {
		return err
	}

	if len(dbs) == 0 {
		o.out.Println("No databases found")
		return nil
	}
	if opts.Table {
		rows := make([][]string, 0, len(dbs))
		for _, db := range dbs {
			rows = append(rows, []string{db.ID, db.ResourceID, db.Self, strconv.FormatInt(db.Timestamp, 10)})
		}
		o.out.Table([]string{"ID", "RID", "SELF", "TS"}, rows)
		return nil
	}
	o.out.Println("Databases:")
	for _, id := range model.IDs(dbs) {
		o.out.Println(id)
	}
	return nil
}

func (o *DatabaseOperations) Delete(ctx context.Context, id string) error {
	if err := o.uc.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("A database with id '%s' does not exist", id)
			return nil
		}
		return err
	}
	o.out.Printf("Database with id '%s' was deleted", id)
	return nil
}

// CollectionOperations reports collection and offer operations to the console.
type CollectionOperations struct {
	uc  usecase.CollectionUsecase
	out *Output
}

func NewCollectionOperations(uc usecase.CollectionUsecase, out *Output) *CollectionOperations {
	return &CollectionOperations{uc: uc, out: out}
}

func (o *CollectionOperations) Find(ctx context.Context, db, id string) (bool, error) {
	found, err := o.uc.Find(ctx, db, id)
	if err != nil {
		return false, err
	}
	if found {
		o.out.Printf("Collection with id '%s' was found", id)
	} else {
		o.out.Printf("No collection with id '%s' was found", id)
	}
	return found, nil
}

func (o *CollectionOperations) Create(ctx context.Context, db, id string) error {
	coll, err := o.uc.Create(ctx, db, id)
	if err != nil {
		if errors.IsConflict(err) {
			o.out.Warnf("A collection with id '%s' already exists", id)
			return nil
		}
		return err
	}
	if coll == nil {
		return nil
	}

	o.out.Printf("Collection with id '%s' created", coll.ID)
	if coll.IndexingPolicy != nil {
		o.out.Printf("IndexPolicy Mode - '%s'", coll.IndexingPolicy.IndexingMode)
		o.out.Printf("IndexPolicy Automatic - '%t'", coll.IndexingPolicy.Automatic)
	}
	if paths := coll.UniqueKeyPaths(); len(paths) > 0 {
		o.out.Printf("Unique Key Paths - '%s'", strings.Join(paths, "', '"))
	}
	return nil
}

func (o *CollectionOperations) ManageThroughput(ctx context.Context, db, id string) error {
	change, err := o.uc.ManageThroughput(ctx, db, id)
	if err != nil {
		switch {
		case errors.IsNotFound(err):
			o.out.Warnf("A collection with id '%s' does not exist", id)
			return nil
		case errors.IsOfferNotFound(err):
			o.out.Warnf("No offer found for collection '%s'", id)
			return nil
		}
		return err
	}
	o.out.Printf("Found Offer '%s' for Collection '%s' and its throughput is '%d'",
		change.Offer.ID, change.Collection.Self, change.Before)
	o.out.Printf("Replaced Offer. Offer Throughput is now '%d'", change.After)
	return nil
}

func (o *CollectionOperations) Read(ctx context.Context, db, id string) error {
	coll, err := o.uc.Read(ctx, db, id)
	if err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("A collection with id '%s' does not exist", id)
			return nil
		}
		return err
	}
	o.out.Printf("Collection with id '%s' was found, it's _self is %s", coll.ID, coll.Self)
	return nil
}

func (o *CollectionOperations) ListAll(ctx context.Context, db string, opts ListOptions) error {
	colls, err := o.uc.ListAll(ctx, db)
	if err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("'%s' not found", db)
			return nil
		}
		return err
	}
	if colls, err = filter.Apply(opts.Where, colls); err != nil {
		return err
	}

	if len(colls) == 0 {
		o.out.Printf("'%s' has no collections", db)
		return nil
	}
	if opts.Table {
		rows := make([][]string, 0, len(colls))
		for _, c := range colls {
			mode := ""
			if c.IndexingPolicy != nil {
				mode = string(c.IndexingPolicy.IndexingMode)
			}
			rows = append(rows, []string{c.ID, c.ResourceID, mode, strings.Join(c.UniqueKeyPaths(), ",")})
		}
		o.out.Table([]string{"ID", "RID", "INDEXING", "UNIQUE KEYS"}, rows)
		return nil
	}
	o.out.Printf("List all collections in database '%s'", db)
	for _, id := range model.IDs(colls) {
		o.out.Println(id)
	}
	return nil
}

func (o *CollectionOperations) Delete(ctx context.Context, db, id string) error {
	deleted, err := o.uc.Delete(ctx, db, id)
	if err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("A collection with id '%s' does not exist", id)
			return nil
		}
		return err
	}
	if deleted {
		o.out.Printf("Collection with id '%s' was deleted", id)
	}
	return nil
}

// DocumentOperations reports document operations to the console.
type DocumentOperations struct {
	uc  usecase.DocumentUsecase
	out *Output
}

func NewDocumentOperations(uc usecase.DocumentUsecase, out *Output) *DocumentOperations {
	return &DocumentOperations{uc: uc, out: out}
}

// Create parses raw as a JSON object and stores it.
func (o *DocumentOperations) Create(ctx context.Context, db, coll, raw string) error {
	doc, err := model.ParseDocument(raw)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	created, err := o.uc.Create(ctx, db, coll, doc)
	if err != nil {
		switch {
		case errors.IsNotFound(err):
			o.out.Warnf("A collection with id '%s' does not exist", coll)
			return nil
		case errors.IsConflict(err):
			o.out.Warnf("A document with id '%s' or the same unique key already exists", doc.ID())
			return nil
		}
		return err
	}
	o.out.Printf("Document with id '%s' created", created.ID())
	return nil
}

func (o *DocumentOperations) ReadAll(ctx context.Context, db, coll string, opts ListOptions) error {
	docs, err := o.uc.ReadAll(ctx, db, coll)
	if err != nil {
		if errors.IsNotFound(err) {
			o.out.Warnf("A collection with id '%s' does not exist", coll)
			return nil
		}
		return err
	}
	if docs, err = filter.Apply(opts.Where, docs); err != nil {
		return err
	}

	if len(docs) == 0 {
		o.out.Printf("'%s' has no documents", coll)
		return nil
	}
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		body, err := json.Marshal(doc.StripSystemProperties())
		if err != nil {
			return errors.WrapError(err, fmt.Sprintf("failed to encode document '%s'", doc.ID()))
		}
		rows = append(rows, []string{doc.ID(), string(body)})
	}
	if opts.Table {
		o.out.Table([]string{"ID", "BODY"}, rows)
		return nil
	}
	o.out.Printf("Documents in collection '%s':", coll)
	for _, row := range rows {
		o.out.Println(row[1])
	}
	return nil
}
