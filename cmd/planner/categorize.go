package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/spice-planner/internal/cli"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize imported transactions",
		Long: `Predict a category for every uncategorized transaction. Predictions at or above
the auto-accept threshold are written back with --apply; the rest are listed for review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			opts := a.cfg.Batch
			opts.All, _ = cmd.Flags().GetBool("all")
			opts.Apply, _ = cmd.Flags().GetBool("apply")
			if cmd.Flags().Changed("threshold") {
				opts.AutoAcceptThreshold, _ = cmd.Flags().GetFloat64("threshold")
			}
			verbose, _ := cmd.Flags().GetBool("verbose")

			progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "Categorizing transactions...")
			summary, err := a.engine.CategorizeStored(cmd.Context(), opts, progress.Update)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				if verbose || r.Degraded || r.Confidence < opts.AutoAcceptThreshold {
					fmt.Fprintln(out, cli.RenderCategorization(r))
				}
			}
			fmt.Fprintln(out, cli.RenderBatchSummary(summary))
			if !opts.Apply && summary.Accepted > 0 {
				fmt.Fprintln(out, cli.FormatInfo("Dry run; re-run with --apply to save accepted categories"))
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "re-categorize transactions that already have a category")
	cmd.Flags().Bool("apply", false, "write accepted categories to the database")
	cmd.Flags().Float64("threshold", 0.6, "confidence needed to accept a prediction (default from config)")
	cmd.Flags().BoolP("verbose", "v", false, "show every prediction, not only those needing review")
	return cmd
}

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback TRANSACTION CATEGORY",
		Short: "Correct the category of a transaction",
		Long: `Record the right category for a transaction. The correction is saved, applied to
the transaction and folded into the categorization model immediately.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			confidence, _ := cmd.Flags().GetFloat64("confidence")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			record, err := a.engine.ProvideFeedback(cmd.Context(), args[0], args[1], confidence)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("%s is now %s (confidence %s)", record.TransactionID, record.CategoryID,
					strconv.FormatFloat(record.Confidence, 'f', 2, 64))))
			return nil
		},
	}

	cmd.Flags().Float64("confidence", 1.0, "how sure you are of the correction, 0 to 1")
	return cmd
}

func retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Rebuild the categorization model",
		Long:  `Rebuild the categorization model from the seed training set and every stored correction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.Retrain(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Categorization model rebuilt"))
			return nil
		},
	}
}

func anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Find unusual spending",
		Long: `Flag transactions that stand out: amounts far from a merchant's usual, bursts of
visits, first-time merchants and suspected duplicate charges.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			window := model.LastDays(time.Now(), days)
			alerts, err := a.engine.DetectUnusualSpendingIn(cmd.Context(), window)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAlerts(alerts))
			return nil
		},
	}

	cmd.Flags().IntP("days", "d", 90, "number of days of history to examine")
	return cmd
}
