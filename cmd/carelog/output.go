package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperengineering/carelog/internal/types"
)

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
}

var statusNames = map[types.TaskStatus]string{
	types.TaskIdle:         "idle",
	types.TaskRecorded:     "recorded",
	types.TaskGuided:       "guided",
	types.TaskAccomplished: "accomplished",
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printTasks(out io.Writer, tasks []types.Task) error {
	if jsonOutput {
		return printJSON(out, map[string]any{
			"tasks": tasks,
			"total": len(tasks),
		})
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "ELDER\tYEAR\tWEEK\tSTATUS\tITERATION\tUPDATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%s\n",
			t.ElderID,
			t.Year,
			t.WeekNumber,
			statusNames[t.Status],
			t.Iteration,
			t.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func printReport(out io.Writer, r *types.Report) error {
	if jsonOutput {
		return printJSON(out, r)
	}

	fmt.Fprintf(out, "Report %d: elder %d, %d week %d (%s to %s)\n",
		r.ID, r.ElderID, r.Year, r.WeekNumber, r.StartDate, r.EndDate)
	if len(r.Analyses) == 0 {
		fmt.Fprintln(out, "No questions were answered twice this week.")
		return nil
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "QUESTION\tFIRST\tLAST\tSIMILARITY")
	for _, a := range r.Analyses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
			a.QuestionText,
			a.FirstResponseDate,
			a.LastResponseDate,
			a.Similarity,
		)
	}
	return w.Flush()
}
