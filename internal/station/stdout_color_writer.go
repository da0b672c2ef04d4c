package station

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints a compact, colorized flight log. Alerts are
// printed only when the report content changes.
type ColorStdoutWriter struct {
	out  io.Writer
	last safety.Report
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

func modeColor(mode string) string {
	switch mode {
	case telemetry.ModeEmergency:
		return colorRed
	case telemetry.ModeRTL, telemetry.ModeLanding:
		return colorYellow
	case telemetry.ModeCruise, telemetry.ModeTakeoff:
		return colorGreen
	default:
		return colorBlue
	}
}

func batteryText(b *float64) string {
	if b == nil {
		return "--"
	}
	return fmt.Sprintf("%.0f%%", *b)
}

// frameLine renders a frame as one colorized log line.
func frameLine(e FrameEvent) string {
	s := e.State
	armed := colorGray + "disarmed" + colorReset
	if s.Armed {
		armed = colorGreen + "armed" + colorReset
	}
	return fmt.Sprintf("%s[%s]%s %smode=%s%s %sas=%.1f%s %salt=%.1f%s %shdg=%.0f%s att=%.1f,%.1f thr=%d wp=%d %sbatt=%s%s %s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		modeColor(s.Mode), s.Mode, colorReset,
		colorYellow, s.Airspeed, colorReset,
		colorMagenta, s.Altitude, colorReset,
		colorCyan, s.Heading, colorReset,
		s.Roll, s.Pitch, s.Throttle, s.Waypoint,
		colorCyan, batteryText(s.Battery), colorReset,
		armed)
}

// WriteFrame prints one line per frame and a summary table on mode changes.
func (w *ColorStdoutWriter) WriteFrame(e FrameEvent) error {
	fmt.Fprintln(w.out, frameLine(e))
	if e.ModeChanged {
		fmt.Fprintln(w.out, summaryTable(e.State))
	}
	return nil
}

func summaryTable(s telemetry.FlightState) string {
	tbl := uitable.New()
	tbl.MaxColWidth = 40
	tbl.AddRow("Mode:", s.Mode)
	tbl.AddRow("Flight time:", s.FlightTime.Truncate(time.Second).String())
	tbl.AddRow("Distance:", fmt.Sprintf("%.2f km", s.DistanceTraveled))
	tbl.AddRow("Max speed:", fmt.Sprintf("%.1f km/h", s.MaxSpeed))
	tbl.AddRow("Max altitude:", fmt.Sprintf("%.0f m", s.MaxAltitude))
	tbl.AddRow("Energy:", humanize.SIWithDigits(s.Energy, 1, "J"))
	tbl.AddRow("Frames:", humanize.Comma(int64(s.Frames)))
	return tbl.String()
}

func sameReport(a, b safety.Report) bool {
	return slices.Equal(a.Critical, b.Critical) &&
		slices.Equal(a.Warning, b.Warning) &&
		slices.Equal(a.Recommendation, b.Recommendation)
}

// WriteAlerts prints the critical, warning and recommendation tiers when
// they differ from the previously printed report.
func (w *ColorStdoutWriter) WriteAlerts(e AlertEvent) error {
	if sameReport(e.Report, w.last) {
		return nil
	}
	w.last = e.Report
	for _, m := range e.Report.Critical {
		fmt.Fprintf(w.out, "%s[%s]%s %sCRITICAL%s %s\n", colorGray, e.Timestamp.Format(time.RFC3339), colorReset, colorRed, colorReset, m)
	}
	for _, m := range e.Report.Warning {
		fmt.Fprintf(w.out, "%s[%s]%s %sWARNING%s %s\n", colorGray, e.Timestamp.Format(time.RFC3339), colorReset, colorYellow, colorReset, m)
	}
	for _, m := range e.Report.Recommendation {
		fmt.Fprintf(w.out, "%s[%s]%s %sADVICE%s %s\n", colorGray, e.Timestamp.Format(time.RFC3339), colorReset, colorBlue, colorReset, m)
	}
	return nil
}

func linkLine(e LinkEvent) string {
	col := colorGreen
	switch e.Status {
	case link.StatusDisconnected:
		col = colorRed
	case link.StatusNoData:
		col = colorYellow
	}
	return fmt.Sprintf("%s[%s]%s %sLINK %s%s %s", colorGray, e.Timestamp.Format(time.RFC3339), colorReset, col, e.Status, colorReset, e.Message)
}

// WriteLink prints a link status change.
func (w *ColorStdoutWriter) WriteLink(e LinkEvent) error {
	fmt.Fprintln(w.out, linkLine(e))
	return nil
}
