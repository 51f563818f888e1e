package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/shift-engine/factory"
)

// errInvalid makes the command exit non-zero after printing violations.
var errInvalid = errors.New("policy is invalid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <policy.json>",
		Short: "Report every problem in a policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read policy: %w", err)
			}
			var pj factory.PolicyJSON
			if err := json.Unmarshal(b, &pj); err != nil {
				return fmt.Errorf("failed to parse policy JSON: %w", err)
			}

			policy, violations := factory.NewPolicyFactory().FromJSON(pj)
			out := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintf(out, "%s: ok (%s)\n", policy.ID, policy.Type)
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "%s\t%s\t%s\n", v.Field, v.Code, v.Message)
			}
			return errInvalid
		},
	}
}
