package station

import (
	"context"
	"strings"
	"time"

	"airdarwin-gcs/internal/logging"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

const (
	telemetryTable = "flight_telemetry"
	alertTable     = "flight_alerts"
	linkTable      = "link_status"

	greptimeWriteTimeout = 5 * time.Second
)

// greptimeClient is the part of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter stores frames, reports and link changes in GreptimeDB.
type GreptimeDBWriter struct {
	client    greptimeClient
	ctx       context.Context
	teleTable string
	alerts    string
	links     string
}

// NewGreptimeDBWriter connects to host:port and writes into database.
func NewGreptimeDBWriter(ctx context.Context, host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("greptimedb writer ready", "host", host, "port", port, "database", database)
	return &GreptimeDBWriter{
		client:    client,
		ctx:       ctx,
		teleTable: telemetryTable,
		alerts:    alertTable,
		links:     linkTable,
	}, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table) error {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		logging.FromContext(ctx).Error("greptimedb write failed", "table", name, "err", err)
		return err
	}
	return nil
}

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func (w *GreptimeDBWriter) frameTable() (*table.Table, error) {
	tbl, err := table.New(w.teleTable)
	if err != nil {
		return nil, err
	}
	cols := []struct {
		name string
		typ  types.ColumnType
	}{
		{"mode", types.STRING},
		{"safety_state", types.STRING},
		{"airspeed", types.FLOAT64},
		{"altitude", types.FLOAT64},
		{"heading", types.FLOAT64},
		{"roll", types.FLOAT64},
		{"pitch", types.FLOAT64},
		{"throttle", types.INT64},
		{"waypoint", types.INT64},
		{"armed", types.BOOLEAN},
		{"gps_ok", types.BOOLEAN},
		{"battery", types.FLOAT64},
		{"hdop", types.FLOAT64},
		{"satellites", types.INT64},
		{"ground_speed", types.FLOAT64},
		{"distance_km", types.FLOAT64},
		{"flight_time_s", types.FLOAT64},
	}
	if err := tbl.AddTagColumn("session", types.STRING); err != nil {
		return nil, err
	}
	for _, c := range cols {
		if err := tbl.AddFieldColumn(c.name, c.typ); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteFrame inserts one telemetry row.
func (w *GreptimeDBWriter) WriteFrame(e FrameEvent) error {
	tbl, err := w.frameTable()
	if err != nil {
		return err
	}
	s := e.State
	if err := tbl.AddRow(
		e.Session,
		s.Mode,
		s.SafetyState,
		s.Airspeed,
		s.Altitude,
		s.Heading,
		s.Roll,
		s.Pitch,
		int64(s.Throttle),
		int64(s.Waypoint),
		s.Armed,
		s.GPSOK,
		optFloat(s.Battery),
		optFloat(s.HDOP),
		optInt(s.Satellites),
		s.GroundSpeed,
		s.DistanceTraveled,
		s.FlightTime.Seconds(),
		e.Timestamp,
	); err != nil {
		return err
	}
	return w.write(w.teleTable, tbl)
}

// WriteAlerts inserts the report as one row with newline-joined tiers.
func (w *GreptimeDBWriter) WriteAlerts(e AlertEvent) error {
	tbl, err := table.New(w.alerts)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session", types.STRING); err != nil {
		return err
	}
	for _, c := range []string{"severity", "critical", "warning", "recommendation"} {
		if err := tbl.AddFieldColumn(c, types.STRING); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	r := e.Report
	if err := tbl.AddRow(
		e.Session,
		r.Severity(),
		strings.Join(r.Critical, "\n"),
		strings.Join(r.Warning, "\n"),
		strings.Join(r.Recommendation, "\n"),
		e.Timestamp,
	); err != nil {
		return err
	}
	return w.write(w.alerts, tbl)
}

// WriteLink inserts a link status change.
func (w *GreptimeDBWriter) WriteLink(e LinkEvent) error {
	tbl, err := table.New(w.links)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session", types.STRING); err != nil {
		return err
	}
	for _, c := range []string{"status", "device", "message"} {
		if err := tbl.AddFieldColumn(c, types.STRING); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	if err := tbl.AddRow(e.Session, e.Status.String(), e.Device, e.Message, e.Timestamp); err != nil {
		return err
	}
	return w.write(w.links, tbl)
}
