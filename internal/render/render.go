// Package render writes planner views as plain text for the CLI.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/sessionplanner/core/calendar"
	"github.com/kilianp07/sessionplanner/core/model"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/session"
)

// NoSchedule is printed instead of the option table when there is nothing to show.
const NoSchedule = "No schedule generated yet. Fill out the form to create optimized schedules."

// View writes warnings, the options table and, when the detail is open, the
// selected option's week.
func View(w io.Writer, v session.View) error {
	ew := &errWriter{w: w}
	if v.Error != "" {
		ew.printf("Error: %s\n\n", v.Error)
	}
	Warnings(ew, v.Warnings)
	if v.Empty {
		ew.printf("%s\n", NoSchedule)
		return ew.err
	}
	if err := Options(ew, v.Options); err != nil {
		return err
	}
	if opt, ok := v.SelectedOption(); ok {
		ew.printf("\n%s: %d hours total, %s drive time\n", opt.Title, opt.TotalHours, model.FormatDriveTime(opt.TotalDriveTime))
		if v.DetailOpen {
			ew.printf("\n")
			if err := Week(ew, v.Detail); err != nil {
				return err
			}
		}
	}
	return ew.err
}

// Warnings lists times that were sent to the optimizer unparsed.
func Warnings(w io.Writer, warnings []normalize.TimeWarning) {
	for _, tw := range warnings {
		fmt.Fprintf(w, "Warning: %s %q is not a recognised time and was sent as entered\n", tw.Field, tw.Value)
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w)
	}
}

// Options writes one row per option. The selected one is marked with "*".
func Options(w io.Writer, opts []options.Option) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tOPTION\tENTRIES\tHOURS\tDRIVE\tAVG DRIVE\tCLIENTS")
	for _, o := range opts {
		mark := ""
		if o.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			mark, o.Title, len(o.Entries), o.TotalHours,
			model.FormatDriveTime(o.TotalDriveTime),
			model.FormatDriveTime(int(o.AvgDriveTime+0.5)),
			clientList(o.Clients))
	}
	return tw.Flush()
}

func clientList(clients []string) string {
	if len(clients) == 0 {
		return "-"
	}
	return strings.Join(clients, ", ")
}

// Week writes each weekday with its entries, or "No appointments".
func Week(w io.Writer, days []calendar.DayColumn) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range days {
		fmt.Fprintf(tw, "%s\n", d.Name)
		if d.Empty {
			fmt.Fprintf(tw, "\t%s\n", calendar.NoAppointments)
			continue
		}
		for _, e := range d.Entries {
			fmt.Fprintf(tw, "\t%s-%s\t%s\t%s\t%dm drive time\n",
				e.StartTime, e.EndTime, e.ClientName, e.ClientAddress, e.DriveTime)
		}
	}
	return tw.Flush()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
