package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/spf13/cobra"
)

// Names cards and top reports are saved under.
const (
	cardsReportName = "cards"
	topReportName   = "top_transactions"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Summarize spending and cashback per card",
		RunE:  runCards,
	}
	cmd.Flags().String("month", "", "only look at one month, as YYYY-MM")
	return cmd
}

func runCards(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	txns, err := s.monthLedger(ctx, cmd)
	if err != nil {
		return err
	}

	cards := s.engine.CardInfo(txns)
	if err := s.save(ctx, cardsReportName, cards); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCards(cards))
	return err
}

// monthLedger loads the ledger, narrowed to --month when it is set.
func (s *session) monthLedger(ctx context.Context, cmd *cobra.Command) ([]model.Transaction, error) {
	txns, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}

	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		return txns, nil
	}
	return s.engine.FilterByMonth(month, txns)
}
