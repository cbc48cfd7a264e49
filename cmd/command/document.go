package command

import (
	"context"

	"cosmos-admin/internal/cosmos/adapter/console"

	"github.com/spf13/cobra"
)

func documentTarget(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) >= 2 {
		return args[0], args[1], nil
	}
	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return "", "", err
	}
	coll, err := cmd.Flags().GetString("coll")
	if err != nil {
		return "", "", err
	}
	return db, coll, nil
}

func (cl *commandline) document(cmd *cobra.Command) {
	docCmd := &cobra.Command{
		Use:       "doc",
		Short:     "Issue all document commands",
		Aliases:   []string{"document"},
		ValidArgs: []string{"list", "create"},
	}
	docCmd.PersistentFlags().String("db", cl.config.DatabaseID, "database holding the collection (default COSMOS_DATABASE_ID)")
	docCmd.PersistentFlags().String("coll", cl.config.CollectionID, "collection holding the documents (default COSMOS_COLLECTION_ID)")

	createCmd := &cobra.Command{
		Use:               "create",
		Short:             "Create a document from a JSON object",
		Example:           `create [database_id collection_id] '{"id":"order-1"}'`,
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, coll, err := documentTarget(cmd, args)
			if err != nil {
				return err
			}
			raw := args[len(args)-1]
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDocumentOperations(cl.admin().Documents, out).Create(ctx, db, coll, raw)
			})
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 || len(args) == 3 {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
	}

	listCmd := &cobra.Command{
		Use:               "list",
		Short:             "Read all documents of a collection",
		Aliases:           []string{"l"},
		Example:           "list [database_id collection_id]",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, coll, err := documentTarget(cmd, args)
			if err != nil {
				return err
			}
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			return cl.run(cmd, func(ctx context.Context, out *console.Output) error {
				return console.NewDocumentOperations(cl.admin().Documents, out).ReadAll(ctx, db, coll, opts)
			})
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args) == 2 {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
	}
	addListFlags(listCmd)

	docCmd.AddCommand(createCmd, listCmd)
	cmd.AddCommand(docCmd)
}
