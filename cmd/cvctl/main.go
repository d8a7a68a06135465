// Package main implements cvctl, an admin CLI over the saved CV store.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cv-builder/internal/bootstrap"
	"cv-builder/internal/shared/config"
	"cv-builder/internal/shared/telemetry"
)

// buildApp is replaced in tests.
var buildApp = func() (*bootstrap.App, error) {
	return bootstrap.Build(config.Load())
}

func newRootCmd() *cobra.Command {
	var userID string

	root := &cobra.Command{
		Use:           "cvctl",
		Short:         "Inspect and maintain saved CVs and the recycle bin",
		Long:          "cvctl reads the same configuration as the API (KV_STORE, DATABASE_URL, REDIS_URL, S3_BUCKET) and operates on one user's saved CVs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(userID) == "" {
				return fmt.Errorf("--user is required")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id (guests are guest:<uuid>)")

	user := func() string { return strings.TrimSpace(userID) }
	root.AddCommand(
		newListCmd(user),
		newTrashCmd(user),
		newPurgeCmd(user),
		newEmptyTrashCmd(user),
		newRestoreCmd(user),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	defer telemetry.Sync()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
