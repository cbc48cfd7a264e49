package command

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmos-admin/internal/cosmos/adapter/console"
	adminhttp "cosmos-admin/internal/cosmos/adapter/http"

	"github.com/spf13/cobra"
)

func (cl *commandline) tokenService() (*adminhttp.TokenService, error) {
	if cl.config.Admin.JWTSecret == "" {
		return nil, nil
	}
	return adminhttp.NewTokenService(cl.config.Admin.JWTSecret, console.ProgramName)
}

func (cl *commandline) serve(cmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:               "serve",
		Short:             "Expose the admin operations over HTTP",
		PersistentPreRunE: cl.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := cmd.Flags().GetString("addr")
			if err != nil {
				return err
			}
			tokens, err := cl.tokenService()
			if err != nil {
				return err
			}
			if tokens == nil {
				cl.logger.Warn("ADMIN_JWT_SECRET not set, admin routes are unauthenticated")
			}

			h := adminhttp.NewHandler(cl.admin(), cl.logger)
			h.Check = cl.container.HealthCheck
			app := adminhttp.NewApp(h, tokens, cl.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return adminhttp.Serve(ctx, app, addr, cl.logger)
		},
		Args: cobra.ExactArgs(0),
	}
	serveCmd.Flags().String("addr", cl.config.Admin.Addr, "listen address (default ADMIN_HTTP_ADDR)")

	tokenCmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue a bearer token for the HTTP admin surface",
		Example: "token {subject} --ttl 1h",
		// tokens are minted offline; no backend connection
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			tokens, err := cl.tokenService()
			if err != nil {
				return err
			}
			if tokens == nil {
				return fmt.Errorf("ADMIN_JWT_SECRET environment variable is not set")
			}
			token, err := tokens.GenerateToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")

	cmd.AddCommand(serveCmd, tokenCmd)
}
