package command

import (
	"context"

	"cosmos-admin/internal/cosmos/adapter/console"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the cosmos-admin command tree. Without a subcommand the
// interactive menu runs.
func (cl *commandline) NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               console.ProgramName,
		Short:             "Administer databases, collections and throughput of a document database account",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter := console.NewPrompter(cl.in, cmd.OutOrStdout())
			defer prompter.Close()

			menu := console.NewMenu(cl.admin(), prompter, console.NewOutput(cmd.OutOrStdout()), cl.logger)
			return menu.Run(cmd.Context())
		},
		Args: cobra.ExactArgs(0),
	}
	return cl.Register(rootCmd)
}

func (cl *commandline) Register(rootCmd *cobra.Command) *cobra.Command {
	cl.database(rootCmd)
	cl.collection(rootCmd)
	cl.document(rootCmd)
	cl.serve(rootCmd)
	return rootCmd
}

// Execute runs the command named by args.
func (cl *commandline) Execute(ctx context.Context, args []string) error {
	rootCmd := cl.NewRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
