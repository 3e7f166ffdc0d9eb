package export

import (
	"context"
	"fmt"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// DefaultTable is the progress table name.
const DefaultTable = "turbine_progress"

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter writes progress rows to GreptimeDB via the ingester client.
type GreptimeWriter struct {
	client greptimeClient
	table  string
	log    *slog.Logger
}

// NewGreptimeWriter connects to host:port and writes into database.
func NewGreptimeWriter(host string, port int, database string, log *slog.Logger) (*GreptimeWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	cli, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client %s:%d: %w", host, port, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeWriter{client: cli, table: DefaultTable, log: log}, nil
}

// Write inserts a single row.
func (w *GreptimeWriter) Write(row Row) error {
	return w.WriteBatch([]Row{row})
}

// WriteBatch inserts rows in one request.
func (w *GreptimeWriter) WriteBatch(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.progressTable(rows)
	if err != nil {
		return err
	}
	resp, err := w.client.Write(context.Background(), tbl)
	if err != nil {
		w.logger().Error("greptime write failed", "table", w.tableName(), "rows", len(rows), "err", err)
		return fmt.Errorf("greptime write: %w", err)
	}
	w.logger().Debug("greptime write", "table", w.tableName(), "rows", len(rows), "affected", resp.GetAffectedRows().GetValue())
	return nil
}

func (w *GreptimeWriter) progressTable(rows []Row) (*table.Table, error) {
	tbl, err := table.New(w.tableName())
	if err != nil {
		return nil, err
	}
	columns := []func() error{
		func() error { return tbl.AddTagColumn("project", types.STRING) },
		func() error { return tbl.AddTagColumn("turbine_id", types.STRING) },
		func() error { return tbl.AddTagColumn("task", types.STRING) },
		func() error { return tbl.AddFieldColumn("code", types.STRING) },
		func() error { return tbl.AddFieldColumn("complete", types.BOOLEAN) },
		func() error { return tbl.AddFieldColumn("cable_laid", types.BOOLEAN) },
		func() error { return tbl.AddFieldColumn("hub_done", types.INT64) },
		func() error { return tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND) },
	}
	for _, add := range columns {
		if err := add(); err != nil {
			return nil, fmt.Errorf("progress table schema: %w", err)
		}
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.Project, r.TurbineID, r.Task, r.Code, r.Complete, r.CableLaid, int64(r.HubDone), r.Date); err != nil {
			return nil, fmt.Errorf("progress row %s/%s: %w", r.TurbineID, r.Task, err)
		}
	}
	return tbl, nil
}

func (w *GreptimeWriter) tableName() string {
	if w.table == "" {
		return DefaultTable
	}
	return w.table
}

func (w *GreptimeWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}
