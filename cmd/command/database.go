package command

import (
	"context"

	"cosmos-admin/internal/cosmos/adapter/console"

	"github.com/spf13/cobra"
)

func (cl *commandline) database(cmd *cobra.Command) {
	dbCmd := &cobra.Command{
		Use:       "db",
		Short:     "Issue all database commands",
		Aliases:   []string{"database"},
		ValidArgs: []string{"list", "find", "get", "create", "delete"},
	}

	listCmd := &cobra.Command{
		Use:               "list",
		Short:             "List all databases",
		Aliases:           []string{"l"},
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDatabaseOperations(cl.admin().Databases, out).ListAll(ctx, opts)
			})
		},
		Args: cobra.ExactArgs(0),
	}
	addListFlags(listCmd)

	findCmd := &cobra.Command{
		Use:               "find",
		Short:             "Find a database by id",
		Example:           "find {database_id}",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				_, err := console.NewDatabaseOperations(cl.admin().Databases, out).Find(ctx, args[0])
				return err
			})
		},
		Args: cobra.ExactArgs(1),
	}

	getCmd := &cobra.Command{
		Use:               "get",
		Short:             "Read a database by id",
		Example:           "get {database_id}",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDatabaseOperations(cl.admin().Databases, out).Read(ctx, args[0])
			})
		},
		Args: cobra.ExactArgs(1),
	}

	createCmd := &cobra.Command{
		Use:               "create",
		Short:             "Create a new database",
		Example:           "create {database_id}",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDatabaseOperations(cl.admin().Databases, out).Create(ctx, args[0])
			})
		},
		Args: cobra.ExactArgs(1),
	}

	deleteCmd := &cobra.Command{
		Use:               "delete",
		Short:             "Delete a database and everything in it",
		Example:           "delete {database_id}",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDatabaseOperations(cl.admin().Databases, out).Delete(ctx, args[0])
			})
		},
		Args: cobra.ExactArgs(1),
	}

	dbCmd.AddCommand(listCmd, findCmd, getCmd, createCmd, deleteCmd)
	cmd.AddCommand(dbCmd)
}
