// Command audittext audits an analysis text offline against the built-in
// audit policies, or a JSON policy file, and prints the report as JSON.
//
// Usage: audittext [file] [--policies policies.json] [--date-window]
//
// The exit status is 0 when the document would be accepted, 1 when the
// decision gate would reject it and 2 on any other error.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
)

// Exit codes.
const (
	exitAccepted = 0
	exitRejected = 1
	exitError    = 2
)

var errRejected = errors.New("document rejected")

type options struct {
	policiesPath string
	dateWindow   bool
}

func main() {
	err := newRootCmd(os.Stdin, os.Stdout).Execute()
	switch {
	case err == nil:
		os.Exit(exitAccepted)
	case errors.Is(err, errRejected):
		os.Exit(exitRejected)
	default:
		os.Exit(exitError)
	}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "audittext [file]",
		Short: "Audit an invoice description against the audit policies",
		Long: "Reads analysis text from a file (or stdin when no file or \"-\" is given), " +
			"extracts invoice fields and evaluates them against the audit policies.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(stdin, args)
			if err != nil {
				return err
			}
			return runAudit(stdout, text, opts)
		},
	}
	cmd.Flags().StringVar(&opts.policiesPath, "policies", "", "JSON file with audit policies (default: built-in set)")
	cmd.Flags().BoolVar(&opts.dateWindow, "date-window", false, "compare invoice dates against the within_days window")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func runAudit(stdout io.Writer, text string, opts options) error {
	policies := audit.DefaultPolicies()
	if opts.policiesPath != "" {
		loaded, err := loadPolicies(opts.policiesPath)
		if err != nil {
			return err
		}
		policies = loaded
	}

	var engineOpts []audit.EngineOption
	if opts.dateWindow {
		engineOpts = append(engineOpts, audit.WithDateWindow(time.Now))
	}
	report := audit.BuildReport(audit.NewExtractor(), audit.NewEngine(engineOpts...), policies, text)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if d := audit.Decide(&report.Result); !d.Accept {
		return fmt.Errorf("%w: %d blocking violations", errRejected, d.Blocking)
	}
	return nil
}

// policyFile mirrors domain.AuditPolicy with is_active defaulting to true.
type policyFile struct {
	domain.AuditPolicy
	IsActive *bool `json:"is_active"`
}

func loadPolicies(path string) ([]domain.AuditPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policies: %w", err)
	}
	var raw []policyFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing policies: %w", err)
	}

	policies := make([]domain.AuditPolicy, len(raw))
	for i, p := range raw {
		policies[i] = p.AuditPolicy
		policies[i].IsActive = p.IsActive == nil || *p.IsActive
	}
	return policies, nil
}
