package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/homehub/internal/cli"
	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/reminders"
)

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"r"},
		Short:   "Manage shared reminders",
	}

	cmd.AddCommand(remindersListCmd())
	cmd.AddCommand(remindersAddCmd())
	cmd.AddCommand(remindersDeleteCmd())
	cmd.AddCommand(remindersRulesCmd())

	return cmd
}

func remindersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders for a day, week or month",
		Long: `List the reminders in the day, week (Monday to Sunday) or month around a
date. Occurrences of recurring reminders are included.`,
		RunE: runRemindersList,
	}

	cmd.Flags().String("scope", "day", "window size (day, week, month)")
	cmd.Flags().String("date", "", "reference date YYYY-MM-DD (default: today)")
	cmd.Flags().Bool("json", false, "print the raw JSON payload")

	return cmd
}

func runRemindersList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	scope, _ := cmd.Flags().GetString("scope")
	rawDate, _ := cmd.Flags().GetString("date")
	asJSON, _ := cmd.Flags().GetBool("json")

	ref, err := referenceDate(rawDate)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rem, _ := newServices(store)
	result, err := rem.List(ctx, recurrence.ParseScope(scope), ref)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, result)
	}

	fmt.Fprintln(out, cli.FormatTitle(cli.CalendarIcon, fmt.Sprintf("Reminders %s to %s", result.Start, result.End)))
	if len(result.Reminders) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("Nothing scheduled."))
		return nil
	}
	fmt.Fprintln(out, cli.RemindersTable(result.Reminders))
	return nil
}

func remindersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a reminder or a recurring reminder",
		Long: `Add a reminder on a date. With --every or --unit the reminder repeats
from that date, optionally until --until.`,
		Args: cobra.ExactArgs(1),
		RunE: runRemindersAdd,
	}

	cmd.Flags().String("date", "", "date YYYY-MM-DD (default: today)")
	cmd.Flags().String("time", "", "time of day HH:MM")
	cmd.Flags().String("description", "", "description (basic HTML allowed)")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("color", "", "display color")
	cmd.Flags().Int("every", 0, "repeat every N units")
	cmd.Flags().String("unit", "", "repeat unit (day, week, month, year)")
	cmd.Flags().String("until", "", "last date YYYY-MM-DD of a repeating reminder")

	return cmd
}

func runRemindersAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	rawDate, _ := flags.GetString("date")
	date, err := referenceDate(rawDate)
	if err != nil {
		return err
	}

	in := reminders.CreateInput{
		Title:   args[0],
		Date:    model.FormatDate(date),
		Creator: currentUser(),
	}
	in.Time, _ = flags.GetString("time")
	in.Description, _ = flags.GetString("description")
	in.Category, _ = flags.GetString("category")
	in.Color, _ = flags.GetString("color")

	every, _ := flags.GetInt("every")
	unit, _ := flags.GetString("unit")
	until, _ := flags.GetString("until")
	if every > 0 || unit != "" {
		in.Recurring = &reminders.RecurrenceInput{Unit: unit, Interval: every, EndDate: until}
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rem, _ := newServices(store)
	result, err := rem.Create(ctx, in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Rule != nil {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added recurring reminder #%d: every %d %s from %s",
			result.Rule.ID, result.Rule.Interval, result.Rule.Unit, model.FormatDate(result.Rule.StartDate))))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added reminder #%d on %s", result.Reminder.ID, model.FormatDate(result.Reminder.Date))))
	return nil
}

func remindersDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete reminders you created",
		Long: `Delete reminders by id. Reminders created by someone else are skipped
unless you are an administrator. Use 'hub reminders rules delete' for
recurring reminders.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRemindersDelete,
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runRemindersDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := cli.Confirm(ctx, cli.NewLineReader(cmd.InOrStdin()), cmd.OutOrStdout(),
			fmt.Sprintf("Delete %d reminder(s)?", len(ids)))
		if err != nil || !ok {
			return err
		}
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rem, _ := newServices(store)
	result, err := rem.DeleteBulk(ctx, ids, currentUser())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d of %d reminder(s)", result.Deleted, len(ids))))
	if result.Deleted < len(ids) {
		fmt.Fprintln(out, cli.FormatWarning("Some ids were unknown or belong to someone else."))
	}
	return nil
}

func remindersRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List recurring reminders",
		RunE:  runRemindersRules,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recurring reminder",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemindersRuleDelete,
	})

	return cmd
}

func runRemindersRules(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rules, err := store.ListReminderRules(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No recurring reminders. Use 'hub reminders add --every' to create one."))
		return nil
	}
	fmt.Fprintln(out, cli.FormatTitle(cli.RepeatIcon, "Recurring reminders"))
	fmt.Fprintln(out, cli.ReminderRulesTable(rules))
	return nil
}

func runRemindersRuleDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	rem, _ := newServices(store)
	if err := rem.DeleteRule(ctx, ids[0], currentUser()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted recurring reminder #%d", ids[0])))
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, common.NewUserError(fmt.Sprintf("%q is not a valid id", arg), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
