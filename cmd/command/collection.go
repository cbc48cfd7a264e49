package command

import (
	"context"

	"cosmos-admin/internal/cosmos/adapter/console"

	"github.com/spf13/cobra"
)

// target resolves "[database] {collection}" arguments, falling back to the
// --db flag for the database.
func target(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return "", "", err
	}
	return db, args[0], nil
}

func (cl *commandline) collection(cmd *cobra.Command) {
	collCmd := &cobra.Command{
		Use:       "coll",
		Short:     "Issue all collection commands",
		Aliases:   []string{"collection"},
		ValidArgs: []string{"list", "find", "get", "create", "delete", "throughput"},
	}
	collCmd.PersistentFlags().String("db", cl.config.DatabaseID, "database holding the collections (default COSMOS_DATABASE_ID)")

	single := func(use, short string, op func(ctx context.Context, ops *console.CollectionOperations, db, id string) error) *cobra.Command {
		return &cobra.Command{
			Use:               use,
			Short:             short,
			Example:           use + " [database_id] {collection_id}",
			PersistentPreRunE: cl.connect,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, id, err := target(cmd, args)
				if err != nil {
					return err
				}
				return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
					return op(ctx, console.NewCollectionOperations(cl.admin().Collections, out), db, id)
				})
			},
			Args: cobra.RangeArgs(1, 2),
		}
	}

	listCmd := &cobra.Command{
		Use:               "list",
		Short:             "List the collections of a database",
		Aliases:           []string{"l"},
		Example:           "list [database_id]",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := cmd.Flags().GetString("db")
			if err != nil {
				return err
			}
			if len(args) == 1 {
				db = args[0]
			}
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewCollectionOperations(cl.admin().Collections, out).ListAll(ctx, db, opts)
			})
		},
		Args: cobra.MaximumNArgs(1),
	}
	addListFlags(listCmd)

	findCmd := single("find", "Find a collection by id",
		func(ctx context.Context, ops *console.CollectionOperations, db, id string) error {
			_, err := ops.Find(ctx, db, id)
			return err
		})
	getCmd := single("get", "Read a collection by id",
		func(ctx context.Context, ops *console.CollectionOperations, db, id string) error {
			return ops.Read(ctx, db, id)
		})
	createCmd := single("create", "Create a collection with the fixed indexing policy and unique keys",
		func(ctx context.Context, ops *console.CollectionOperations, db, id string) error {
			return ops.Create(ctx, db, id)
		})
	deleteCmd := single("delete", "Delete a collection",
		func(ctx context.Context, ops *console.CollectionOperations, db, id string) error {
			return ops.Delete(ctx, db, id)
		})
	throughputCmd := single("throughput", "Raise the provisioned throughput of a collection by one step",
		func(ctx context.Context, ops *console.CollectionOperations, db, id string) error {
			return ops.ManageThroughput(ctx, db, id)
		})

	collCmd.AddCommand(listCmd, findCmd, getCmd, createCmd, deleteCmd, throughputCmd)
	cmd.AddCommand(collCmd)
}
