package cmd

import (
	"encoding/json"
	"fmt"

	"influencer-platform/backend/pkg/di"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every health check once and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.Build(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer container.Close(cmd.Context())

		report := container.Health.RunChecks(cmd.Context())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Healthy {
			return fmt.Errorf("system unhealthy")
		}
		return nil
	},
}
