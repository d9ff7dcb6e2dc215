package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"forecastconsole/internal/schedule"
)

func describeSchedule(cmd *cobra.Command, expr string, now time.Time) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, schedule.Describe(expr))

	next, err := schedule.Next(expr, now)
	switch {
	case errors.Is(err, schedule.ErrUnsupported):
		fmt.Fprintln(out, "next run: unknown")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "next run: %s\n", next.UTC().Format(time.RFC3339))
	return nil
}
