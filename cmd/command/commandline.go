package command

import (
	"context"
	"os"

	"cosmos-admin/internal/cosmos/adapter/console"
	"cosmos-admin/internal/cosmos/config"
	"cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/di"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/filter"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type commandline struct {
	config    *config.Config
	logger    logger.Logger
	in        *os.File
	container *di.Container
}

// NewCommandline creates the command line over cfg. Commands read prompts
// from in; output goes to the cobra command's writer.
func NewCommandline(cfg *config.Config, log logger.Logger, in *os.File) *commandline {
	return &commandline{config: cfg, logger: log, in: in}
}

// connect opens the container once per process. Later commands reuse it.
func (cl *commandline) connect(cmd *cobra.Command, args []string) error {
	if cl.container != nil || cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}
	if err := cl.config.Validate(); err != nil {
		return err
	}

	container := di.NewContainer(cl.config, cl.logger)
	if err := container.Initialize(cmd.Context()); err != nil {
		return err
	}
	cl.container = container
	return nil
}

// Close releases the container, if one was opened.
func (cl *commandline) Close() error {
	if cl.container == nil {
		return nil
	}
	err := cl.container.Close()
	cl.container = nil
	return err
}

func (cl *commandline) admin() *usecase.AdminUsecase {
	return cl.container.Admin
}

// run executes one operation under a fresh request id. A service failure is
// reported and absorbed as it is in the menu; anything else is returned.
func (cl *commandline) run(cmd *cobra.Command, op func(ctx context.Context, out *console.Output) error) error {
	ctx := utils.WithRequestID(cmd.Context(), uuid.NewString())
	out := console.NewOutput(cmd.OutOrStdout())

	err := op(ctx, out)
	if err != nil && errors.IsServiceFailure(err) {
		cl.logger.WithContext(ctx).Warnf("Operation failed: %v", err)
		out.Errorf("\n%s has caught an error. %v", console.ProgramName, err)
		return nil
	}
	return err
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("where", "", "CEL expression over 'resource' and 'id' selecting the listed items")
	cmd.Flags().Bool("table", false, "render the list as a table")
}

func listOptions(cmd *cobra.Command) (console.ListOptions, error) {
	where, err := cmd.Flags().GetString("where")
	if err != nil {
		return console.ListOptions{}, err
	}
	table, err := cmd.Flags().GetBool("table")
	if err != nil {
		return console.ListOptions{}, err
	}
	predicate, err := filter.Compile(where)
	if err != nil {
		return console.ListOptions{}, err
	}
	return console.ListOptions{Where: predicate, Table: table}, nil
}
