package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/homehub/internal/cli"
	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/recurrence"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"e"},
		Short:   "Manage the household expense ledger",
	}

	cmd.AddCommand(expensesMonthCmd())
	cmd.AddCommand(expensesSweepCmd())
	cmd.AddCommand(expensesRulesCmd())
	cmd.AddCommand(expensesAddCmd())

	return cmd
}

func expensesMonthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month of expenses",
		Long: `Show every ledger row of a month with totals per payer and category.
Recurring expenses are brought up to date first.`,
		RunE: runExpensesMonth,
	}

	cmd.Flags().Int("year", 0, "year (default: this year)")
	cmd.Flags().Int("month", 0, "month 1-12 (default: this month)")
	cmd.Flags().Bool("json", false, "print the raw JSON payload")

	return cmd
}

func runExpensesMonth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	_, exp := newServices(store)
	today := exp.Today()
	if _, err := exp.MaterializeUpTo(ctx, today); err != nil {
		return err
	}

	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	y, m := expenses.NormalizeMonth(year, month, today)
	payload, err := exp.BuildMonthPayload(ctx, y, m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, payload)
	}
	if len(payload.ByDate) == 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No expenses in %s %d.", m, y)))
		return nil
	}
	fmt.Fprintln(out, cli.MonthTable(payload))
	fmt.Fprintln(out, cli.MonthSummary(payload))
	return nil
}

func expensesSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Write the ledger rows recurring expenses owe",
		Long: `Generate the ledger rows every recurring expense owes up to a date.

Running the sweep twice never duplicates a row. The web API sweeps on every
expense request, so this is only needed to backfill from the command line.`,
		RunE: runExpensesSweep,
	}

	cmd.Flags().String("through", "", "last date to generate YYYY-MM-DD (default: today)")

	return cmd
}

func runExpensesSweep(cmd *cobra.Command, _ []string) error {
	rawThrough, _ := cmd.Flags().GetString("through")
	through, err := referenceDate(rawThrough)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), "Sweep", "Nothing was written. Run 'hub expenses sweep' again.")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	_, exp := newServices(store)
	rules, err := exp.ListRules(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No recurring expenses to sweep."))
		return nil
	}

	bar := cli.NewProgressBar(out, len(rules), "Sweeping recurring expenses...")
	var results []expenses.RuleSweep
	report, err := exp.Sweep(ctx, through, func(done, _ int, rule expenses.RuleSweep) {
		results = append(results, rule)
		cli.Advance(bar, done)
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RuleID),
			r.Title,
			fmt.Sprintf("%d", r.Created),
			fmt.Sprintf("%d", r.Skipped),
			r.CheckpointLabel(),
		})
	}
	fmt.Fprintln(out, cli.RenderTable(
		[]string{"Rule", "Title", "Created", "Skipped", "Through"},
		rows,
		[]cli.Alignment{cli.AlignRight, cli.AlignLeft, cli.AlignRight, cli.AlignRight}))
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created %d ledger row(s) through %s", report.Created, through.Format(time.DateOnly))))
	return nil
}

func expensesRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List recurring expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			_, exp := newServices(store)
			rules, err := exp.ListRules(ctx)
			if err != nil {
				return err
			}
			settings, err := exp.Settings(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No recurring expenses."))
				return nil
			}
			fmt.Fprintln(out, cli.FormatTitle(cli.RepeatIcon, "Recurring expenses"))
			fmt.Fprintln(out, cli.ExpenseRulesTable(rules, settings.Currency))
			return nil
		},
	}
}

func expensesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Record an expense or a recurring expense",
		Long: `Record a one-off expense, or with --frequency a recurring expense that
writes a ledger row on every scheduled date.`,
		Args: cobra.ExactArgs(1),
		RunE: runExpensesAdd,
	}

	cmd.Flags().String("amount", "", "total amount (one-off expenses)")
	cmd.Flags().String("unit-price", "", "price per unit")
	cmd.Flags().String("quantity", "", "quantity (default: 1)")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("date", "", "date, or start date of a recurring expense, YYYY-MM-DD (default: today)")
	cmd.Flags().String("frequency", "", "make it recurring: daily, weekly or monthly")
	cmd.Flags().String("monthly-mode", "", "day_of_month or calendar (bill on the 1st)")
	cmd.Flags().String("until", "", "last date of a recurring expense YYYY-MM-DD")

	return cmd
}

func runExpensesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	_, exp := newServices(store)
	out := cmd.OutOrStdout()

	if frequency := get("frequency"); frequency != "" {
		rule, err := exp.CreateRule(ctx, expenses.RuleInput{
			Title:           args[0],
			Category:        get("category"),
			Creator:         currentUser(),
			UnitPrice:       get("unit-price"),
			DefaultQuantity: get("quantity"),
			Frequency:       frequency,
			MonthlyMode:     get("monthly-mode"),
			StartDate:       get("date"),
			EndDate:         get("until"),
		})
		if err != nil {
			return err
		}
		report, err := exp.MaterializeUpTo(ctx, recurrence.Day(time.Now()))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added recurring expense #%d (%s); %d ledger row(s) written",
			rule.ID, rule.Frequency, report.Created)))
		return nil
	}

	entry, err := exp.CreateEntry(ctx, expenses.EntryInput{
		Title:     args[0],
		Category:  get("category"),
		Payer:     currentUser(),
		Date:      get("date"),
		UnitPrice: get("unit-price"),
		Quantity:  get("quantity"),
		Amount:    get("amount"),
	})
	if err != nil {
		return err
	}
	settings, err := exp.Settings(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %s for %s on %s",
		cli.FormatMoney(settings.Currency, entry.Amount), entry.Title, entry.Date.Format(time.DateOnly))))
	return nil
}
