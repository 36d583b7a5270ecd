package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/Veraticus/spice-report/internal/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func spendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "List the spending of one category",
		Long: `List the transactions of one category inside a date window ending at
--date. Without --date the window ends at the latest transaction in the
ledger, or now, depending on --reference.

The result is also written as JSON to --output.`,
		Example: `  spice spending --category Супермаркеты --date 12.11.2021
  spice spending --category Фастфуд --window 3m --field payment`,
		RunE: runSpending,
	}

	cmd.Flags().StringP("category", "c", "", "category to report on")
	cmd.Flags().String("date", "", "window end as DD.MM.YYYY")
	cmd.Flags().String("window", "", "window length: 90d or 3m (default from config)")
	cmd.Flags().String("field", "", "date the window looks at: operation or payment (default from config)")
	cmd.Flags().String("reference", "", "window end without --date: now or latest (default from config)")
	cmd.Flags().StringP("output", "o", "", "JSON output file (default from config)")
	_ = cmd.MarkFlagRequired("category")

	_ = viper.BindPFlag("window.mode", cmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("window.field", cmd.Flags().Lookup("field"))
	_ = viper.BindPFlag("window.reference", cmd.Flags().Lookup("reference"))
	_ = viper.BindPFlag("reports.category_report", cmd.Flags().Lookup("output"))

	return cmd
}

func runSpending(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	category, _ := cmd.Flags().GetString("category")
	date, _ := cmd.Flags().GetString("date")

	var reference *time.Time
	if date != "" {
		parsed, err := time.Parse(model.PaymentDateLayout, date)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("--date must look like DD.MM.YYYY, got %q", date), common.ErrMalformedDate)
		}
		reference = &parsed
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	txns, err := s.ledger(ctx)
	if err != nil {
		return err
	}

	output := sink.NewJSONFile(s.cfg.Reports.CategoryReport, s.logger)
	result, err := s.engine.SpendingByCategory(ctx, txns, category, report.CategoryOptions{
		Reference: reference,
		Sink:      append(sink.Multi{output}, s.sinks...),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, cli.RenderTransactions(category, result, report.CategoryTotal(result))); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess("Report written to "+output.Path()))
	return err
}
