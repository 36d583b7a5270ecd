package main

import (
	"fmt"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func savingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Calculate round-up savings for a month",
		Long: `Calculate how much would have been saved in a month by rounding every
purchase up to the next multiple of --limit and putting the difference aside.`,
		RunE: runSavings,
	}

	cmd.Flags().String("month", "", "month as YYYY-MM")
	cmd.Flags().Int64("limit", 0, "rounding step in whole currency units (default from config)")
	_ = cmd.MarkFlagRequired("month")

	_ = viper.BindPFlag("savings.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runSavings(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	month, _ := cmd.Flags().GetString("month")

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	txns, err := s.ledger(ctx)
	if err != nil {
		return err
	}

	limit := decimal.NewFromInt(s.cfg.Savings.Limit)
	result, err := s.engine.InvestmentBank(month, txns, limit)
	if err != nil {
		return err
	}

	if err := s.save(ctx, report.SavingsReportName, result); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSavings(month, limit, result))
	return err
}
