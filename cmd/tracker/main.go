package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	username   string
	password   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Per-project record tracking for tasks, risks, budgets and more",
		Long: `tracker keeps projects and their tasks, risks, budget lines, resources,
issues, milestones and related records in one store. Run "tracker shell" for
the interactive front end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("TRACKER_CONFIG"), "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.username, "username", "", "Log in as this user instead of restoring a stored session")
	cmd.PersistentFlags().StringVar(&flags.password, "password", "", "Password for --username")

	cmd.AddCommand(
		newShellCmd(flags),
		newRegisterCmd(flags),
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newExportCmd(flags),
		newReportCmd(flags),
		newMigrateCmd(flags),
		newStatusCmd(flags),
	)
	return cmd
}
