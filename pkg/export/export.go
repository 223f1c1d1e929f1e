package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/invsched/core/scheduler"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name. An empty name selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or csv)", s)
	}
}

// Write encodes res to w in format f.
func Write(w io.Writer, f Format, res scheduler.Result) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	default:
		return WriteText(w, res)
	}
}

// WriteJSON writes the result as an indented JSON document.
func WriteJSON(w io.Writer, res scheduler.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per scheduled job. An infeasible result yields
// only the header.
func WriteCSV(w io.Writer, res scheduler.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"job_id", "start", "end", "inventory_before", "inventory_after"}); err != nil {
		return err
	}
	for _, a := range res.Schedule {
		rec := []string{
			a.JobID,
			strconv.Itoa(a.Start),
			strconv.Itoa(a.End),
			strconv.Itoa(a.InventoryBefore),
			strconv.Itoa(a.InventoryAfter),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes a human readable report.
func WriteText(w io.Writer, res scheduler.Result) error {
	name := res.Instance
	if name == "" {
		name = "(unnamed)"
	}
	if _, err := fmt.Fprintf(w, "instance: %s (%d jobs)\n", name, res.Jobs); err != nil {
		return err
	}
	if !res.Feasible {
		_, err := fmt.Fprintf(w, "infeasible: no schedule respects the release dates and inventory bounds\noracle calls: %d, states expanded: %d\n",
			res.OracleCalls, res.StatesExpanded)
		return err
	}
	if _, err := fmt.Fprintf(w, "makespan: %d\n", res.Makespan); err != nil {
		return err
	}
	if len(res.Schedule) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "JOB\tSTART\tEND\tINVENTORY")
		for _, a := range res.Schedule {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d -> %d\n", a.JobID, a.Start, a.End, a.InventoryBefore, a.InventoryAfter)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "oracle calls: %d, states expanded: %d, duration: %s\n",
		res.OracleCalls, res.StatesExpanded, res.Duration)
	return err
}
