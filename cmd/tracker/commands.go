package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"projecttracker/internal/export"
	"projecttracker/internal/model"
	"projecttracker/internal/report"
	"projecttracker/internal/shell"
)

func newShellCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.serveMetrics(ctx)
			st := a.status(ctx)
			a.logger.Info("Dependencies checked",
				zap.String("database", st.Database),
				zap.String("events", st.Events),
				zap.String("sessions", st.Sessions))

			if flags.username != "" {
				if err := a.gate.Authenticate(ctx, flags.username, flags.password); err != nil {
					return err
				}
			} else if ok, err := a.gate.Restore(ctx); err != nil {
				a.logger.Warn("Could not restore session", zap.Error(err))
			} else if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "welcome back, %s\n", a.gate.CurrentUser())
			}

			return shell.New(a.store, a.gate, a.logger).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a login",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.gate.Register(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
			return nil
		},
	}
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and store the session token for later commands",
		Long: `Log in and store the session token. With redis configured the token is
shared by later invocations until it expires or "tracker logout" runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.gate.Authenticate(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", args[0])
			return nil
		},
	}
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.gate.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		category string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as CSV",
		Long: `Export one category, or every category as a full report with sections
separated by a blank line. Writes to stdout unless --out is given.`,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.authenticate(ctx, flags.username, flags.password); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, ferr := os.Create(out)
				if ferr != nil {
					return fmt.Errorf("failed to create %s: %w", out, ferr)
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if category == "" {
				return export.FullReport(ctx, a.store, w)
			}
			c, err := model.ParseCategory(category)
			if err != nil {
				return err
			}
			return export.Category(ctx, a.store, c, w)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Export only this category")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial and portfolio reports",
	}
	cmd.AddCommand(newROICmd(), newPortfolioCmd(flags))
	return cmd
}

func newROICmd() *cobra.Command {
	var (
		investment float64
		cashFlows  string
	)

	cmd := &cobra.Command{
		Use:     "roi",
		Short:   "Compute ROI and IRR for an investment",
		Example: `  tracker report roi --investment 1000 --cash-flows 300,400,500`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flows, err := report.ParseCashFlows(cashFlows)
			if err != nil {
				return err
			}
			res, err := report.ROI(investment, flows)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Float64Var(&investment, "investment", 0, "Initial investment")
	cmd.Flags().StringVar(&cashFlows, "cash-flows", "", "Comma separated annual cash flows")
	_ = cmd.MarkFlagRequired("investment")
	_ = cmd.MarkFlagRequired("cash-flows")
	return cmd
}

func newPortfolioCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Budget and spend per portfolio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.authenticate(ctx, flags.username, flags.password); err != nil {
				return err
			}

			recs, err := a.store.List(ctx, model.CategoryProject)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range report.Portfolios(model.Filter[*model.Project](recs)) {
				fmt.Fprintf(w, "%s\t%s projects\tbudget %s\tspent %s\tremaining %s\n",
					t.Portfolio, strconv.Itoa(t.Projects),
					t.Budget.StringFixed(2), t.Spent.StringFixed(2), t.Remaining().StringFixed(2))
			}
			return nil
		},
	}
}

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables",
		Long:  `Create any missing tables and indexes. Existing tables are never altered destructively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// newApp bootstraps the schema on open
			a, err := newApp(cmd.Context(), flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info("Schema bootstrapped", zap.String("driver", a.cfg.DB.Driver))
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the database and event broker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.status(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database: %s (%s)\n", st.Database, a.cfg.DB.Driver)
			fmt.Fprintf(out, "events: %s\n", st.Events)
			fmt.Fprintf(out, "sessions: %s\n", st.Sessions)
			if st.Database != "ok" {
				return errors.New("database unreachable")
			}
			return nil
		},
	}
}
