package console

import (
	"context"
	"strconv"
	"strings"

	"cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/utils"

	"github.com/google/uuid"
)

// Menu choices.
const (
	ChoiceListDatabases = iota + 1
	ChoiceListCollections
	ChoiceReadDatabase
	ChoiceReadCollection
	ChoiceThroughput
	ChoiceCreateDatabase
	ChoiceCreateCollection
	ChoiceDeleteDatabase
	ChoiceDeleteCollection
	ChoiceCreateDocument
	ChoiceReadDocuments
	ChoiceExit
)

const (
	// ProgramName prefixes the session trailer and caught-error lines.
	ProgramName = "cosmos-admin"

	emptyName = "Empty name provided"
)

var menuItems = []string{
	"List all databases on an account",
	"List all collections in specific database",
	"Get a database by id",
	"Get collection by id",
	"Get & change collection Offer Throughput by 100",
	"Create a database",
	"Create a collection",
	"Delete database by id",
	"Delete collection by id",
	"Create a document in a collection",
	"Read all documents in a collection",
	"Exit",
}

// Menu is the interactive numbered-menu session.
type Menu struct {
	Databases   *DatabaseOperations
	Collections *CollectionOperations
	Documents   *DocumentOperations

	prompter Prompter
	out      *Output
	logger   logger.Logger
}

// NewMenu wires the console operations of admin to prompter and out.
func NewMenu(admin *usecase.AdminUsecase, prompter Prompter, out *Output, log logger.Logger) *Menu {
	return &Menu{
		Databases:   NewDatabaseOperations(admin.Databases, out),
		Collections: NewCollectionOperations(admin.Collections, out),
		Documents:   NewDocumentOperations(admin.Documents, out),
		prompter:    prompter,
		out:         out,
		logger:      log.WithComponent("console"),
	}
}

func (m *Menu) printMenu() {
	m.out.Println(strings.Repeat("-", 30), "MENU", strings.Repeat("-", 30))
	for i, item := range menuItems {
		m.out.Printf("%d. %s", i+1, item)
	}
	m.out.Println(strings.Repeat("-", 67))
}

// Run loops until the exit choice is made. Service failures raised by an
// operation are reported and the session goes on; validation failures are
// reported the same way. Any other failure ends the session and is returned.
// The completion trailer is printed on every path.
func (m *Menu) Run(ctx context.Context) error {
	defer m.out.Printf("\n%s done", ProgramName)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		line, err := m.prompter.Prompt("Enter your choice [1-12]: ")
		if err != nil {
			return err
		}

		choice, convErr := strconv.Atoi(line)
		if convErr != nil || choice < ChoiceListDatabases || choice > ChoiceExit {
			if _, err := m.prompter.Prompt("Wrong option selection. Enter any key to try again.."); err != nil {
				return err
			}
			continue
		}
		if choice == ChoiceExit {
			m.out.Println("Exiting...")
			return nil
		}

		m.out.Printf("Menu %d has been selected", choice)
		opCtx := utils.WithRequestID(ctx, uuid.NewString())
		if err := m.Dispatch(opCtx, choice); err != nil {
			switch {
			case errors.IsServiceFailure(err):
				m.logger.WithContext(opCtx).Warnf("Operation failed: %v", err)
				m.out.Errorf("\n%s has caught an error. %v", ProgramName, err)
			case errors.IsValidation(err):
				m.out.Errorf("%v", err)
			default:
				return err
			}
		}
	}
}

// Dispatch runs one menu choice, prompting for its parameters.
func (m *Menu) Dispatch(ctx context.Context, choice int) error {
	switch choice {
	case ChoiceListDatabases:
		return m.Databases.ListAll(ctx, ListOptions{})

	case ChoiceListCollections:
		db, ok, err := m.ask("Please provide a database name: ")
		if !ok {
			return err
		}
		return m.Collections.ListAll(ctx, db, ListOptions{})

	case ChoiceReadDatabase:
		db, ok, err := m.ask("Please provide a database name: ")
		if !ok {
			return err
		}
		return m.Databases.Read(ctx, db)

	case ChoiceReadCollection:
		db, coll, ok, err := m.askCollection("Please provide a collection name: ")
		if !ok {
			return err
		}
		return m.Collections.Read(ctx, db, coll)

	case ChoiceThroughput:
		db, coll, ok, err := m.askCollection("Please provide a collection name: ")
		if !ok {
			return err
		}
		return m.Collections.ManageThroughput(ctx, db, coll)

	case ChoiceCreateDatabase:
		db, ok, err := m.ask("Please provide a database name to be created: ")
		if !ok {
			return err
		}
		return m.Databases.Create(ctx, db)

	case ChoiceCreateCollection:
		db, coll, ok, err := m.askCollection("Please provide a collection name to be created: ")
		if !ok {
			return err
		}
		return m.Collections.Create(ctx, db, coll)

	case ChoiceDeleteDatabase:
		db, ok, err := m.ask("Please provide a database name to be deleted: ")
		if !ok {
			return err
		}
		return m.Databases.Delete(ctx, db)

	case ChoiceDeleteCollection:
		db, coll, ok, err := m.askCollection("Please provide a collection name to be deleted: ")
		if !ok {
			return err
		}
		return m.Collections.Delete(ctx, db, coll)

	case ChoiceCreateDocument:
		db, coll, ok, err := m.askCollection("Please provide a collection name: ")
		if !ok {
			return err
		}
		body, ok, err := m.ask("Please provide the document as JSON: ")
		if !ok {
			return err
		}
		return m.Documents.Create(ctx, db, coll, body)

	case ChoiceReadDocuments:
		db, coll, ok, err := m.askCollection("Please provide a collection name: ")
		if !ok {
			return err
		}
		return m.Documents.ReadAll(ctx, db, coll, ListOptions{})
	}
	return nil
}

// ask prompts for one value. ok is false when the value is empty or input failed.
func (m *Menu) ask(label string) (string, bool, error) {
	value, err := m.prompter.Prompt(label)
	if err != nil {
		return "", false, err
	}
	if value == "" {
		m.out.Println(emptyName)
		return "", false, nil
	}
	return value, true, nil
}

func (m *Menu) askCollection(label string) (string, string, bool, error) {
	db, ok, err := m.ask("Please provide a database name: ")
	if !ok {
		return "", "", false, err
	}
	coll, ok, err := m.ask(label)
	if !ok {
		return "", "", false, err
	}
	return db, coll, true, nil
}
