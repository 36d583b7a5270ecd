package main

import (
	"fmt"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/spf13/cobra"
)

func topCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the largest purchases",
		RunE:  runTop,
	}
	cmd.Flags().String("month", "", "only look at one month, as YYYY-MM")
	cmd.Flags().IntP("count", "n", report.TopN, "number of purchases to show")
	return cmd
}

func runTop(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		return common.NewUserError(fmt.Sprintf("--count must be at least 1, got %d", count), common.ErrInvalidConfig)
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	txns, err := s.monthLedger(ctx, cmd)
	if err != nil {
		return err
	}

	top, err := s.engine.TopTransactions(txns, count)
	if err != nil {
		return err
	}
	if err := s.save(ctx, topReportName, top); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTop(top))
	return err
}
