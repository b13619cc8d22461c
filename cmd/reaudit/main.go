// Command reaudit re-evaluates stored image documents against the current
// active audit policies and stores the new results.
// Usage: go run ./cmd/reaudit [--dry-run]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"billaudit/internal/audit"
	"billaudit/internal/config"
	"billaudit/internal/repository/postgres"
	"billaudit/internal/service"
)

func main() {
	var dryRun bool
	cmd := &cobra.Command{
		Use:          "reaudit",
		Short:        "Re-audit stored image documents against the current policies",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var engineOpts []audit.EngineOption
	if cfg.Audit.EnforceDateWindow {
		engineOpts = append(engineOpts, audit.WithDateWindow(time.Now))
	}
	reauditor := service.NewReauditor(
		postgres.NewDocumentRepo(db),
		postgres.NewAuditPolicyRepo(db),
		audit.NewExtractor(),
		audit.NewEngine(engineOpts...),
	)

	summary, err := reauditor.Run(ctx, dryRun)
	if err != nil {
		return err
	}

	log.Printf("Re-audit complete: %d scanned, %d updated, %d failed, %d would now be rejected (dry run: %t)",
		summary.Scanned, summary.Updated, summary.Failed, summary.NowBlocking, dryRun)
	return nil
}
