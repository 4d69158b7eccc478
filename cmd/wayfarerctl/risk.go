package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wayfarer/internal/app"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/source"
	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

var riskCmd = &cobra.Command{
	Use:   "risk <destination>",
	Short: "Score budget, weather and crowding risk",
	Long: `Score a trip against the cost tables. With --start and --end the forecast,
events and holidays are fetched from the configured data source; otherwise
only the budget rule has input and weather and crowding score low.`,
	Args: cobra.ExactArgs(1),
	RunE: runRisk,
}

var (
	riskBudget    float64
	riskDays      int
	riskInterests []string
	riskRate      float64
	riskStart     string
	riskEnd       string
)

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().Float64Var(&riskBudget, "budget", 0, "Total trip budget")
	riskCmd.Flags().IntVar(&riskDays, "days", 0, "Trip length in days (default: derived from --start/--end)")
	riskCmd.Flags().StringSliceVar(&riskInterests, "interests", nil, "Comma-separated interests")
	riskCmd.Flags().Float64Var(&riskRate, "exchange-rate", 1, "Budget currency per unit of cost currency")
	riskCmd.Flags().StringVar(&riskStart, "start", "", "Start date YYYY-MM-DD")
	riskCmd.Flags().StringVar(&riskEnd, "end", "", "End date YYYY-MM-DD")
	_ = riskCmd.MarkFlagRequired("budget")
}

func runRisk(cmd *cobra.Command, args []string) error {
	scorer, err := riskuc.NewScorer(app.RiskTables(globalConfig.Risk))
	if err != nil {
		return err
	}

	in := riskuc.AssessInput{
		Budget:       riskBudget,
		Destination:  args[0],
		DurationDays: riskDays,
		Interests:    riskInterests,
		ExchangeRate: riskRate,
	}

	if riskStart != "" || riskEnd != "" {
		if riskStart == "" || riskEnd == "" {
			return errors.New("--start and --end must be given together")
		}
		t, err := trip.New(args[0], riskStart, riskEnd, riskBudget, "", riskInterests)
		if err != nil {
			return err
		}
		in.Window = t.Window()
		if in.DurationDays == 0 {
			in.DurationDays = t.Days()
		}

		src, err := source.New(app.SourceConfig(globalConfig.Sources, globalLogger))
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if in.Forecast, err = src.Forecast(ctx, args[0], in.Window); err != nil {
			return err
		}
		if in.Events, err = src.Events(ctx, args[0], in.Window); err != nil {
			return err
		}
		if in.Holidays, err = src.Holidays(ctx, args[0], in.Window); err != nil {
			return err
		}
	}

	assessment, err := scorer.Assess(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.AssessmentToAPI(&assessment))
	}
	printAssessment(out, &assessment)
	return nil
}

func printAssessment(out io.Writer, a *domrisk.Assessment) {
	b := a.Budget
	fmt.Fprintf(out, "Budget:   %-6s %s tier, est. %s for a budget ratio of %.2f",
		b.Level, b.Tier, humanize.CommafWithDigits(b.EstimatedCost, 2), b.BudgetRatio)
	if b.OverrunPercentage > 0 {
		fmt.Fprintf(out, " (%d%% over)", b.OverrunPercentage)
	}
	fmt.Fprintln(out)

	w := a.Weather
	fmt.Fprintf(out, "Weather:  %-6s %d of %d days rainy (%.0f%%), %d hot, %d cold, %d extreme",
		w.Level, w.RainyDays, w.TotalDays, w.RainPercentage, w.HotDays, w.ColdDays, w.ExtremeDays)
	if w.BestDay != nil {
		fmt.Fprintf(out, ", best day %s", w.BestDay.Format(domrisk.DateLayout))
	}
	fmt.Fprintln(out)

	c := a.Crowding
	fmt.Fprintf(out, "Crowding: %-6s score %.1f", c.Level, c.Score)
	if len(c.ContributingEvents) > 0 {
		fmt.Fprintf(out, " (%s)", strings.Join(c.ContributingEvents, ", "))
	}
	fmt.Fprintln(out)

	q := a.Quality
	fmt.Fprintf(out, "Quality:  %d/100, comfort %s\n", q.Overall, q.ComfortLevel)
	if q.Recommendation != "" {
		fmt.Fprintf(out, "          %s\n", q.Recommendation)
	}

	var recs []string
	recs = append(recs, b.Recommendations...)
	recs = append(recs, w.Recommendations...)
	recs = append(recs, c.Recommendations...)
	if len(recs) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for _, r := range recs {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
}
