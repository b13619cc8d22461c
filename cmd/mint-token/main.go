// Command mint-token issues a bearer token for API clients when auth is enabled.
// The signing secret, issuer and default expiry come from BILLAUDIT_AUTH_* settings.
//
// Usage: mint-token --subject ingest-worker [--ttl 720h]
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"billaudit/internal/config"
	"billaudit/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:          "mint-token",
		Short:        "Issue an API bearer token",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if ttl > 0 {
				cfg.Auth.TokenExpiry = ttl
			}
			return mint(stdout, cfg.Auth, subject)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. the calling service name")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.token_expiry)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func mint(stdout io.Writer, cfg config.AuthConfig, subject string) error {
	token, expiresAt, err := service.NewTokenService(cfg).Issue(subject)
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		log.Printf("mint-token: auth is disabled; the server will not require this token")
	}
	fmt.Fprintf(stdout, "%s\n", token)
	log.Printf("mint-token: issued token for %q, expires %s", subject, expiresAt.Format(time.RFC3339))
	return nil
}
