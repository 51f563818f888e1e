// Command shiftctl checks and previews shift policies offline.
//
//	shiftctl validate policy.json
//	shiftctl project policy.json --anchor 2024-01-01 --from 2024-01-01 --to 2024-01-14
//	shiftctl overtime policy.json --anchor 2024-01-01 --date 2024-01-02 --in 07:55 --out 18:10
//	shiftctl shares policy.json
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Validate and preview shift policies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("tz", "UTC", "IANA time zone for wall-clock times")

	root.AddCommand(newValidateCmd(), newProjectCmd(), newOvertimeCmd(), newSharesCmd())
	return root
}

// loadPolicy reads and validates a policy file.
func loadPolicy(path string) (shift.ShiftPolicy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return shift.ShiftPolicy{}, fmt.Errorf("read policy: %w", err)
	}
	return factory.NewPolicyFactory().ParsePolicy(string(b))
}

func location(cmd *cobra.Command) (*time.Location, error) {
	tz, err := cmd.Flags().GetString("tz")
	if err != nil {
		return nil, err
	}
	return time.LoadLocation(tz)
}

func dateFlag(cmd *cobra.Command, name string) (shift.Date, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return shift.Date{}, err
	}
	d, err := shift.ParseDate(raw)
	if err != nil {
		return shift.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}
