package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan <destination>",
	Short: "Run the trip planner",
	Long: `Fetch weather, events, holidays and the exchange rate, score the trip,
pull destination tips from the knowledge index and decide whether the plan
can proceed or needs approval.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var (
	planStart     string
	planEnd       string
	planBudget    float64
	planCurrency  string
	planInterests []string
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planStart, "start", "", "Start date YYYY-MM-DD")
	planCmd.Flags().StringVar(&planEnd, "end", "", "End date YYYY-MM-DD")
	planCmd.Flags().Float64Var(&planBudget, "budget", 0, "Total trip budget")
	planCmd.Flags().StringVar(&planCurrency, "currency", trip.DefaultCurrency, "Budget currency (ISO 4217)")
	planCmd.Flags().StringSliceVar(&planInterests, "interests", nil, "Comma-separated interests")
	_ = planCmd.MarkFlagRequired("start")
	_ = planCmd.MarkFlagRequired("end")
	_ = planCmd.MarkFlagRequired("budget")
}

func runPlan(cmd *cobra.Command, args []string) error {
	t, err := trip.New(args[0], planStart, planEnd, planBudget, planCurrency, planInterests)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	plan, err := a.Planner.Plan(cmd.Context(), t)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.PlanToAPI(plan))
	}

	fmt.Fprintf(out, "Plan %s: %s, %d days, budget %s %s (source: %s, rate %.4f)\n\n",
		plan.ID, t.Destination(), t.Days(), humanize.CommafWithDigits(t.Budget(), 2), t.Currency(),
		plan.Source, plan.ExchangeRate)
	printAssessment(out, &plan.Assessment)

	if s := plan.Safety; s != nil {
		fmt.Fprintf(out, "\nSafety: %s risk, score %d/100 (source: %s)\n", s.OverallRisk, s.Score, s.Source)
		for _, adv := range s.Advisories {
			fmt.Fprintf(out, "  - %s\n", adv)
		}
	}

	if len(plan.Tips) > 0 {
		fmt.Fprintln(out, "\nTips:")
		for _, tip := range plan.Tips {
			fmt.Fprintf(out, "  - %s\n", tip)
		}
	}
	if len(plan.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range plan.Warnings {
			fmt.Fprintf(out, "  ! %s\n", w)
		}
	}

	fmt.Fprintf(out, "\nDecision: %s\n", plan.Gate.Decision)
	if plan.Gate.Decision == planneruc.NeedsApproval {
		for _, r := range plan.Gate.Reasons {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return nil
}
