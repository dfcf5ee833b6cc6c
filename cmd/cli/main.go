package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/app"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/auth"
	"github.com/gtservice/gtledger/internal/infrastructure/config"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres"
	"github.com/gtservice/gtledger/internal/usecase"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

var bcryptGenerate = bcrypt.GenerateFromPassword

// errReconciliationFailed makes the process exit non-zero when stock and
// ledger disagree.
var errReconciliationFailed = errors.New("reconciliation found discrepancies")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gtledger-cli",
		Short:         "GT Service ledger CLI tool",
		Long:          `A command line interface for operating the GT Service shop ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GTLEDGER_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	stockCmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock operations",
	}
	stockCmd.AddCommand(reconcileCmd(), partsCmd())

	rootCmd.AddCommand(stockCmd, alertsCmd(), invoicesCmd(), summaryCmd(),
		migrateCmd(), createUserCmd(), hashPasswordCmd())
	return rootCmd
}

func reconcileCmd() *cobra.Command {
	var partID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check that every part's quantity matches its movement ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/stock/reconciliation"
			if partID != "" {
				path += "?part_id=" + partID
			}

			body, err := apiGet(path)
			if err != nil {
				return err
			}

			if partID != "" {
				var result dto.ReconciliationResultResponse
				if err := json.Unmarshal(body, &result); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
				printJSON(cmd.OutOrStdout(), result)
				if !result.IsReconciled {
					return errReconciliationFailed
				}
				return nil
			}

			var report dto.ReconciliationReportResponse
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&partID, "part", "", "Reconcile a single part")
	return cmd
}

func printReport(w io.Writer, report dto.ReconciliationReportResponse) error {
	if report.Consistent {
		fmt.Fprintf(w, "Reconciliation PASSED: %d/%d parts consistent\n", report.ReconciledParts, report.TotalParts)
		return nil
	}

	fmt.Fprintf(w, "Reconciliation FAILED: %d of %d parts disagree with their ledger\n",
		len(report.Discrepancies), report.TotalParts)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tCODE\tQUANTITY\tLEDGER\tDIFF")
	for _, d := range report.Discrepancies {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", truncate(d.PartID, 12), d.PartCode, d.RecordedQuantity, d.CalculatedBalance, d.Difference)
	}
	_ = tw.Flush()

	return errReconciliationFailed
}

func partsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List parts with their stock level",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiGet(fmt.Sprintf("/api/v1/parts?limit=%d", limit))
			if err != nil {
				return err
			}

			var list dto.ListResponse[dto.PartResponse]
			if err := json.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tQTY\tLEVEL")
			for _, p := range list.Items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Code, truncate(p.Name, 30), p.Quantity, p.StockLevel)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of parts")
	return cmd
}

func alertsCmd() *cobra.Command {
	var all bool
	var partID string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List stock alerts (unread only unless --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if !all {
				q.Set("unread", "true")
			}
			if partID != "" {
				q.Set("part_id", partID)
			}

			body, err := apiGet("/api/v1/alerts?" + q.Encode())
			if err != nil {
				return err
			}

			var list dto.ListResponse[dto.AlertResponse]
			if err := json.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tBALANCE\tREAD\tMESSAGE")
			for _, a := range list.Items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%v\t%s\n", a.ID, a.Severity, a.Balance, a.IsRead, truncate(a.Message, 50))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include acknowledged alerts")
	cmd.Flags().StringVar(&partID, "part", "", "Only alerts for this part")
	return cmd
}

func invoicesCmd() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if status != "" {
				q.Set("status", strings.ToUpper(status))
			}

			body, err := apiGet("/api/v1/invoices?" + q.Encode())
			if err != nil {
				return err
			}

			var list dto.ListResponse[dto.InvoiceResponse]
			if err := json.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tSTATUS\tTOTAL\tPAID\tDUE")
			for _, inv := range list.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", inv.Number, inv.Status,
					inv.Total.StringFixed(2), inv.AmountPaid.StringFixed(2), inv.DueAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (ISSUED, PARTIALLY_PAID, PAID, CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of invoices")
	return cmd
}

func summaryCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print income, expenses and net for a year or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if year > 0 {
				q.Set("year", strconv.Itoa(year))
			}
			if month > 0 {
				q.Set("month", strconv.Itoa(month))
			}

			body, err := apiGet("/api/v1/accounting/summary?" + q.Encode())
			if err != nil {
				return err
			}

			var summary domain.AccountingSummary
			if err := json.Unmarshal(body, &summary); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			period := strconv.Itoa(summary.Year)
			if summary.Month > 0 {
				period = fmt.Sprintf("%d-%02d", summary.Year, summary.Month)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Period:    %s\n", period)
			fmt.Fprintf(w, "Income:    %s\n", summary.Income.StringFixed(2))
			fmt.Fprintf(w, "Expenses:  %s\n", summary.Expenses.StringFixed(2))
			fmt.Fprintf(w, "Collected: %s\n", summary.Collected.StringFixed(2))
			fmt.Fprintf(w, "Net:       %s\n", summary.Net.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year (defaults to the current year)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (whole year when omitted)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	migrator := func() (*postgres.Migrator, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
		return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log), nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func createUserCmd() *cobra.Command {
	var input usecase.CreateUserInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account directly in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Role = domain.Role(role)
			if input.Password == "" {
				input.Password = os.Getenv("GTLEDGER_PASSWORD")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.DatabaseURL, 2, 1)
			if err != nil {
				return err
			}
			defer pool.Close()

			services := app.NewServices(app.PostgresRepositories(pool), app.Options{
				Auth:   usecase.AuthSettings{MaxFailedAttempts: cfg.AuthMaxFailedAttempts, LockoutDuration: cfg.AuthLockoutDuration},
				Tokens: auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
				OTP:    auth.NewTOTP(cfg.TOTPIssuer),
				Logger: zerolog.Nop(),
			})

			user, err := services.Auth.CreateUser(cmd.Context(), input)
			if err != nil {
				return err
			}

			printJSON(cmd.OutOrStdout(), dto.UserFromDomain(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "Password (defaults to $GTLEDGER_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMechanic), "admin, manager, mechanic or viewer")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func apiGet(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimSuffix(baseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API returned %d", resp.StatusCode)
	}

	return body, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
