package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show analysis progress for the configured study",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Engine.Status(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Print the full analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		project, err := env.Engine.Results(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(project)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all results and reset the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Engine.Clear(ctx)
	},
}

var reprocessData string

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <question-key>",
	Short: "Re-run the analysis for a single question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		wb, err := loadWorkbook(reprocessData)
		if err != nil {
			return err
		}

		if err := env.Engine.Reprocess(ctx, args[0], wb.Rows()); err != nil {
			return err
		}
		env.Dispatcher.Wait()
		return nil
	},
}

func init() {
	reprocessCmd.Flags().StringVar(&reprocessData, "data", "", "interview workbook path (default from config)")
	rootCmd.AddCommand(statusCmd, resultsCmd, clearCmd, reprocessCmd)
}
