package main

import (
	"github.com/spf13/cobra"

	"github.com/boddenberg/campus-budget-coach/internal/cli"
	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		in         domain.GoalInput
		event      string
		autoSelect bool
		top        map[string]int64
	)

	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Analyze a savings goal and generate plans",
		Example: "  coachctl simulate --event 노트북 --target 2000000 --period 6 --current 300000 --potential 200000 --top 카페=150000",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := opts.tuning()
			if err != nil {
				return err
			}

			stats := categoryStats(top)
			spending.SortStats(stats)

			res, err := goal.NewPlanner(t.Goal).Simulate(in, domain.SimulationContext{
				TopCategories: stats,
				EventLabel:    event,
				Supports:      goal.DefaultSupportPrograms(),
				AutoSelect:    autoSelect,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), res, func() string { return cli.RenderSimulation(res) })
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "Goal label, e.g. 노트북")
	cmd.Flags().Int64Var(&in.Target, "target", 0, "Target amount in won")
	cmd.Flags().IntVar(&in.PeriodMonths, "period", 0, "Period in months")
	cmd.Flags().Int64Var(&in.Current, "current", 0, "Amount already saved")
	cmd.Flags().Int64Var(&in.MonthlySavePotential, "potential", 0, "Monthly save potential")
	cmd.Flags().BoolVar(&autoSelect, "auto-select", false, "Only generate plans suited to the situation")
	cmd.Flags().StringToInt64Var(&top, "top", nil, "Top spending categories (category=amount,...)")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
