// Command coachctl runs the coach engines from the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/boddenberg/campus-budget-coach/internal/config"
	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

type rootOptions struct {
	json       bool
	tuningFile string
	rounding   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "coachctl",
		Short:        "Student budget coach CLI",
		Long:         "Allocate budgets, simulate savings goals and analyze monthly spending offline.",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON instead of tables")
	root.PersistentFlags().StringVar(&opts.tuningFile, "tuning", os.Getenv("TUNING_FILE"), "TOML file overriding engine constants")
	root.PersistentFlags().StringVar(&opts.rounding, "rounding", "", "Rounding policy for monthly amounts (ceil or floor)")

	root.AddCommand(newAllocateCmd(opts), newSimulateCmd(opts), newAnalyzeCmd(opts))
	return root
}

func (o *rootOptions) tuning() (config.Tuning, error) {
	return config.LoadTuning(o.tuningFile, o.rounding)
}

// print writes v as indented JSON or through render.
func (o *rootOptions) print(w io.Writer, v any, render func() string) error {
	if o.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, render())
	return err
}

// categoryStats turns a category=amount flag into stats ordered by name.
func categoryStats(m map[string]int64) []domain.CategoryStat {
	stats := make([]domain.CategoryStat, 0, len(m))
	for name, amount := range m {
		stats = append(stats, domain.CategoryStat{Category: name, Amount: amount})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	return stats
}
