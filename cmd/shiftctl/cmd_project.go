package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/shift-engine/shift"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <policy.json>",
		Short: "Print the expected schedule of an assignment over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy(args[0])
			if err != nil {
				return err
			}
			loc, err := location(cmd)
			if err != nil {
				return err
			}
			anchor, err := dateFlag(cmd, "anchor")
			if err != nil {
				return err
			}
			from, err := dateFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to")
			if err != nil {
				return err
			}
			if to.Before(from) {
				return shift.ErrInvalidPeriod
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tDAY\tSTEP\tSTART\tEND\tHOURS\tPAID HOURS\tHOLIDAY\tSHARE")
			for _, d := range shift.DatesBetween(from, to) {
				day, err := shift.Project(policy, anchor, d, loc)
				if shift.IsNoSchedule(err) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, formatDay(day))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("anchor", "", "assignment start date (YYYY-MM-DD)")
	cmd.Flags().String("from", "", "first date to print")
	cmd.Flags().String("to", "", "last date to print")
	cmd.MarkFlagRequired("anchor")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func formatDay(day shift.ResolvedDay) string {
	step := "-"
	if day.Step != nil {
		step = day.Step.String()
	}
	start, end := "-", "-"
	if day.Window != nil {
		start = day.Window.Start.Format("Mon 15:04")
		end = day.Window.End.Format("Mon 15:04")
	}
	holiday := ""
	if day.IsHoliday {
		holiday = "yes"
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s",
		day.Date, day.Date.Weekday().String()[:3], step, start, end,
		day.ExpectedHours.StringFixed(2), day.ContractHours.StringFixed(2),
		holiday, day.HolidayPayShare.StringFixed(4))
}

func newOvertimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overtime <policy.json>",
		Short: "Compute lateness and overtime for one day's clock-in/out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy(args[0])
			if err != nil {
				return err
			}
			loc, err := location(cmd)
			if err != nil {
				return err
			}
			anchor, err := dateFlag(cmd, "anchor")
			if err != nil {
				return err
			}
			d, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			in, err := clockFlag(cmd, "in")
			if err != nil {
				return err
			}
			out, err := clockFlag(cmd, "out")
			if err != nil {
				return err
			}
			outDays, err := cmd.Flags().GetInt("out-days")
			if err != nil {
				return err
			}

			day, err := shift.Project(policy, anchor, d, loc)
			if err != nil {
				return err
			}
			res, err := shift.Overtime(day, d.At(in, loc), d.AddDays(outDays).At(out, loc))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "worked\t%d min\n", res.WorkedMinutes)
			fmt.Fprintf(tw, "expected\t%d min\n", res.ExpectedMinutes)
			fmt.Fprintf(tw, "late\t%d min\n", res.LateMinutes)
			fmt.Fprintf(tw, "early\t%d min\n", res.EarlyMinutes)
			fmt.Fprintf(tw, "overtime\t%d min\n", res.OvertimeMinutes)
			fmt.Fprintf(tw, "shortfall\t%d min\n", res.ShortfallMinutes)
			fmt.Fprintf(tw, "multiplier\tx%s\n", res.MultiplierApplied)
			fmt.Fprintf(tw, "weighted\t%s min\n", res.WeightedOvertime)
			return tw.Flush()
		},
	}
	cmd.Flags().String("anchor", "", "assignment start date (YYYY-MM-DD)")
	cmd.Flags().String("date", "", "schedule date")
	cmd.Flags().String("in", "", "clock-in time (HH:MM) on the schedule date")
	cmd.Flags().String("out", "", "clock-out time (HH:MM)")
	cmd.Flags().Int("out-days", 0, "days after the schedule date the clock-out falls on")
	for _, name := range []string{"anchor", "date", "in", "out"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newSharesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shares <policy.json>",
		Short: "Print how one holiday-pay unit is spread over work steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy(args[0])
			if err != nil {
				return err
			}
			shares := shift.HolidayPayShares(policy)
			if len(shares) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "holiday pay is not distributed")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STEP\tLABELS\tHOURS\tSHARE")
			for _, s := range shares {
				step := policy.Rotation.Sequence[s.StepIndex]
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.StepIndex, step, step.Hours, s.Share.StringFixed(4))
			}
			return tw.Flush()
		},
	}
}

func clockFlag(cmd *cobra.Command, name string) (shift.ClockTime, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, err
	}
	c, err := shift.ParseClockTime(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return c, nil
}
