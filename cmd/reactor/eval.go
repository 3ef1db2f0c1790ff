package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/scenario"
	"github.com/vango-dev/reactor/pkg/reactor"
)

func evalCmd(verbose *bool) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval <scenario.yaml>",
		Short: "Replay a scenario and print getter values",
		Long: `Replay a scenario file step by step.

After the initial state and after each step, every getter is read
and printed with its total evaluation count. Getters that did not
depend on a step's writes keep their count.

Examples:
  reactor eval todo.yaml
  reactor eval todo.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			eng, err := s.Engine(reactor.Options{
				Logger: newLogger(cmd.ErrOrStderr(), *verbose),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				report, runErr := s.Run(eng, nil)
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
				return runErr
			}

			if _, err := s.Run(eng, out); err != nil {
				return err
			}
			success(out, "%d steps", len(s.Steps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}
