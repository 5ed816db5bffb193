package transport

import (
	"context"
	"fmt"
	"time"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS %s (
    Timestamp      DateTime,
    Src            String,
    SrcZone        LowCardinality(String),
    Dst            String,
    DstZone        LowCardinality(String),
    ProtocolLabels Array(String),
    Count          UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Timestamp, Src, Dst);
`

func init() {
	factory.RegisterSender("clickhouse", func(cfg config.CollectorConfig) (model.Sender, error) {
		return NewClickHouseSender(cfg)
	})
}

// ClickHouseSender inserts every batch as one ClickHouse batch insert.
type ClickHouseSender struct {
	conn  driver.Conn
	table string
	now   func() time.Time
}

// NewClickHouseSender connects and makes sure the flow table exists.
func NewClickHouseSender(cfg config.CollectorConfig) (*ClickHouseSender, error) {
	conn, err := connect(cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	table := cfg.ClickHouse.Table
	if err := conn.Exec(context.Background(), fmt.Sprintf(createTableStatement, table)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	log.GetLogger().WithField("table", table).Info("connected to ClickHouse and ensured table exists")

	return &ClickHouseSender{conn: conn, table: table, now: time.Now}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

func (s *ClickHouseSender) Name() string { return "clickhouse" }

// Send inserts the batch records. An empty batch is accepted without a round
// trip.
func (s *ClickHouseSender) Send(ctx context.Context, batch *model.Batch) error {
	rows := flowRows(batch.Records, s.now())
	if len(rows) == 0 {
		return nil
	}

	b, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+s.table)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, row := range rows {
		if err := b.Append(row...); err != nil {
			return fmt.Errorf("failed to append flow to batch: %w", err)
		}
	}
	if err := b.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// flowRows lays records out in the column order of the flow table.
func flowRows(records []model.FlowRecord, ts time.Time) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		labels := r.ProtocolLabels
		if labels == nil {
			labels = []string{}
		}
		rows = append(rows, []any{
			ts,
			r.Src,
			r.SrcZone.String(),
			r.Dst,
			r.DstZone.String(),
			labels,
			r.Count,
		})
	}
	return rows
}

func (s *ClickHouseSender) Close() error {
	return s.conn.Close()
}
