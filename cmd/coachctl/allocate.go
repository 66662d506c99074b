package main

import (
	"github.com/spf13/cobra"

	"github.com/boddenberg/campus-budget-coach/internal/budget"
	"github.com/boddenberg/campus-budget-coach/internal/cli"
	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

func newAllocateCmd(opts *rootOptions) *cobra.Command {
	var (
		income int64
		rule   string
		prior  map[string]int64
	)

	cmd := &cobra.Command{
		Use:     "allocate",
		Short:   "Split an income into NEEDS/WANTS/SAVINGS budgets",
		Example: "  coachctl allocate --income 1200000 --rule 50/30/20 --prior 월세=400000,식비=250000",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := domain.RuleByName(rule)
			if err != nil {
				return err
			}
			t, err := opts.tuning()
			if err != nil {
				return err
			}

			a, err := budget.NewAllocator(t.Budget).Allocate(income, r, categoryStats(prior))
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), a, func() string { return cli.RenderAllocation(a) })
		},
	}

	cmd.Flags().Int64Var(&income, "income", 0, "Monthly income in won")
	cmd.Flags().StringVar(&rule, "rule", domain.DefaultRule.Name, "Allocation rule: 50/30/20, 60/20/20 or 40/30/30")
	cmd.Flags().StringToInt64Var(&prior, "prior", nil, "Prior spending per category (category=amount,...)")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
