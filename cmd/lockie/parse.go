package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockiemedia/lockie/internal/dateparse"
)

func newParseCmd() *cobra.Command {
	var (
		today  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Show the due date quick add would pick from text",
		Example: `  lockie parse "Buy milk tomorrow"
  lockie parse --today 2024-05-01 "Dentist next friday"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if today != "" {
				t, err := time.ParseInLocation(dateparse.DateLayout, today, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --today %q: %w", today, err)
				}
				now = t
			}

			result := dateparse.Parse(strings.Join(args, " "), now)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"date":       result.Date,
					"text":       result.Remaining,
					"expression": result.Expression,
				})
			}

			if !result.Found() {
				fmt.Fprintln(out, "No date found.")
				return nil
			}
			fmt.Fprintf(out, "Date:       %s\n", result.Date)
			fmt.Fprintf(out, "Text:       %s\n", result.Remaining)
			fmt.Fprintf(out, "Expression: %s\n", result.Expression)
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "resolve relative dates from this day (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}
