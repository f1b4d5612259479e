package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spice-planner/internal/cli"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/spf13/cobra"
)

func taxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax INCOME",
		Short: "Estimate income tax on an annual income",
		Long: `Estimate federal and provincial income tax plus payroll contributions on an
annual employment income, with marginal and average rates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			jurisdiction, _ := cmd.Flags().GetString("jurisdiction")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			breakdown, err := a.engine.CalculateTaxes(cmd.Context(), income, jurisdiction)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTaxBreakdown(breakdown))
			return nil
		},
	}

	cmd.Flags().StringP("jurisdiction", "j", "", "province or territory code (default from config)")
	return cmd
}

func registeredCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registered INCOME",
		Short: "Analyze registered account contribution room",
		Long: `Work out tax-deferred and tax-free contribution room, suggested contributions
and the tax they would save. Without contribution figures the room is estimated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			deferred, err := optionalAmount(cmd, "tax-deferred-contributed")
			if err != nil {
				return err
			}
			free, err := optionalAmount(cmd, "tax-free-contributed")
			if err != nil {
				return err
			}
			var room *model.ContributionRoom
			if deferred != nil || free != nil {
				room = &model.ContributionRoom{TaxDeferredContributed: deferred, TaxFreeContributed: free}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			analysis, err := a.engine.AnalyzeRegisteredAccounts(cmd.Context(), income, room)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRegistered(analysis))
			return nil
		},
	}

	cmd.Flags().String("tax-deferred-contributed", "", "amount already contributed to tax-deferred accounts this year")
	cmd.Flags().String("tax-free-contributed", "", "amount already contributed to tax-free accounts this year")
	return cmd
}

// optionalAmount returns nil when the flag was not given.
func optionalAmount(cmd *cobra.Command, flag string) (*model.Money, error) {
	if !cmd.Flags().Changed(flag) {
		return nil, nil
	}
	s, _ := cmd.Flags().GetString(flag)
	m, err := parseAmount(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func debtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Plan debt payoff",
		Long: `Compare avalanche, snowball and hybrid payoff orders for the debts in a profile
and show the recommended plan.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("profile")
			profile, err := loadProfile(path)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.engine.OptimizeDebtPayoff(cmd.Context(), profile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDebtPlan(result))
			return nil
		},
	}

	cmd.Flags().StringP("profile", "p", "", "financial profile (YAML or JSON)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Generate financial planning recommendations",
		Long: `Run the full analysis for a profile and store prioritized recommendations.
Spending is taken from imported transactions when the profile has none.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("profile")
			asJSON, _ := cmd.Flags().GetBool("json")

			profile, err := loadProfile(path)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			recs, err := a.engine.GenerateFinancialPlanningRecommendations(cmd.Context(), profile.UserID, profile)
			if err != nil {
				return err
			}
			return printRecommendations(cmd, recs, asJSON)
		},
	}

	cmd.Flags().StringP("profile", "p", "", "financial profile (YAML or JSON)")
	cmd.Flags().Bool("json", false, "print recommendations as JSON")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func recommendationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommendations USER",
		Short: "List stored recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			recs, err := a.engine.ListRecommendations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRecommendations(cmd, recs, asJSON)
		},
	}

	cmd.Flags().Bool("json", false, "print recommendations as JSON")
	return cmd
}

func printRecommendations(cmd *cobra.Command, recs []model.Recommendation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRecommendations(recs))
	return nil
}

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain ID",
		Short: "Explain how a stored recommendation was reached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			explanation, err := a.engine.Explain(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderExplanation(explanation))
			return nil
		},
	}
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a recommendation as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.CompleteRecommendation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Marked "+args[0]+" as completed"))
			return nil
		},
	}
}
