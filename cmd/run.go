package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/report"
)

var (
	runData   string
	runReport string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a workbook end to end and wait for completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		wb, err := loadWorkbook(runData)
		if err != nil {
			return err
		}

		project, err := env.Engine.Trigger(ctx, wb.Rows())
		if err != nil {
			return eris.Wrap(err, "trigger analysis")
		}

		// Block until the fan-out questions and the fan-in summary land.
		env.Dispatcher.Wait()

		final, err := env.Engine.Results(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("analysis run finished",
			zap.String("project", project.Name),
			zap.String("status", string(final.Status)),
			zap.Int("completed", final.Progress.Completed),
			zap.Int("total", final.Progress.Total),
		)

		if runReport != "" {
			md := report.Project(final, env.Study.QuestionKeys())
			if err := os.WriteFile(runReport, []byte(md), 0o644); err != nil {
				return eris.Wrapf(err, "write report %s", runReport)
			}
			zap.L().Info("report written", zap.String("path", runReport))
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	},
}

func init() {
	runCmd.Flags().StringVar(&runData, "data", "", "interview workbook path (default from config)")
	runCmd.Flags().StringVar(&runReport, "report", "", "write a markdown report to this path instead of JSON to stdout")
	rootCmd.AddCommand(runCmd)
}
