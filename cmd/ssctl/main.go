// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command ssctl runs SupperSafe maintenance jobs against the configured
// database: schema setup, the inspection alert fan-out, the landing
// page violation count, and headline experiment results.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/db"
	"github.com/suppersafe/server/notify"
	"github.com/suppersafe/server/push"
	"github.com/suppersafe/server/store"
)

var (
	cfg     cliparse.Config
	timeout time.Duration
	htmlOut string
)

var rootCmd = &cobra.Command{
	Use:           "ssctl",
	Short:         "SupperSafe operator tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadDotEnv()
		return cfg.Resolve()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create any missing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDB()
		if err != nil {
			return err
		}
		defer conn.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Schema ready")
		return nil
	},
}

var sendAlertsCmd = &cobra.Command{
	Use:   "send-alerts",
	Short: "Push alerts for saved restaurants inspected since yesterday",
	Long: `Runs one inspection alert fan-out, the same job served by
POST /functions/send-inspection-alerts. Users are alerted at most once per
restaurant and inspection date, so reruns are safe.`,
	RunE: runSendAlerts,
}

var violationCountCmd = &cobra.Command{
	Use:   "violation-count",
	Short: "Count restaurants with critical or significant violations in the last 30 days",
	RunE:  runViolationCount,
}

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Show headline experiment impressions and conversions",
	RunE:  runHeadlines,
}

func init() {
	gofs := flag.NewFlagSet("ssctl", flag.ContinueOnError)
	cfg.Bind(gofs)
	rootCmd.PersistentFlags().AddGoFlagSet(gofs)
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	violationCountCmd.Flags().StringVar(&htmlOut, "html", "", "Rewrite the landing page headline count in this HTML file")

	rootCmd.AddCommand(schemaCmd, sendAlertsCmd, violationCountCmd, headlinesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadDotEnv applies .env files when present. A missing file is normal
// outside development, so it is only logged.
func loadDotEnv(files ...string) bool {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env loaded", "error", err)
		return false
	}
	return true
}

// openDB connects and makes sure the schema exists
func openDB() (*sqlx.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	return conn, nil
}

func runSendAlerts(cmd *cobra.Command, args []string) error {
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc := notify.NewService(store.New(conn), push.NewExpo(cfg.ExpoPushURL))
	summary, err := svc.Run(ctx, time.Now())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}
	if !summary.Success {
		return errors.New(summary.Message)
	}
	return nil
}

func runViolationCount(cmd *cobra.Command, args []string) error {
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	since := time.Now().AddDate(0, 0, -30).Format(time.DateOnly)
	count, err := store.New(conn).ViolationEstablishmentCount(ctx, since)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s restaurants with critical or significant violations since %s\n", humanize.Comma(int64(count)), since)

	if htmlOut == "" {
		return nil
	}
	page, err := os.ReadFile(htmlOut)
	if err != nil {
		return err
	}
	updated, ok := rewriteViolationCount(page, count)
	if !ok {
		return fmt.Errorf("no violation headline found in %s", htmlOut)
	}
	if err := os.WriteFile(htmlOut, updated, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", htmlOut)
	return nil
}

var violationHeadline = regexp.MustCompile(`[\d,]+( Toronto restaurants got critical violations last month)`)

// rewriteViolationCount swaps the number in the landing page headline.
// ok is false when the page has no such headline.
func rewriteViolationCount(page []byte, count int) ([]byte, bool) {
	if !violationHeadline.Match(page) {
		return page, false
	}
	repl := []byte(humanize.Comma(int64(count)) + "$1")
	return violationHeadline.ReplaceAll(page, repl), true
}

func runHeadlines(cmd *cobra.Command, args []string) error {
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	stats, err := store.New(conn).HeadlineStats(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HEADLINE\tIMPRESSIONS\tCONVERSIONS\tRATE")
	for _, s := range stats {
		rate := 0.0
		if s.Impressions > 0 {
			rate = 100 * float64(s.Conversions) / float64(s.Impressions)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\n", s.HeadlineID,
			humanize.Comma(int64(s.Impressions)), humanize.Comma(int64(s.Conversions)), rate)
	}
	return tw.Flush()
}
