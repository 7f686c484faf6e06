package recordstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yanqian/shadowcast/internal/domain/record"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/util"
)

// PostgresConfig targets one table. Table defaults to shadow_records.
type PostgresConfig struct {
	DSN            string
	Table          string
	ConnectTimeout time.Duration
}

// PostgresStore keeps records in a table with the same four fields as the
// Mongo document. It holds one pgx connection per request.
type PostgresStore struct {
	cfg    PostgresConfig
	table  string
	schema *atomic.Bool
	logger *slog.Logger
	conn   *pgx.Conn
}

// NewPostgresOpener returns an opener that builds a fresh PostgresStore per request.
// The table is created on the first successful connect.
func NewPostgresOpener(cfg PostgresConfig, logger *slog.Logger) record.Opener {
	if cfg.Table == "" {
		cfg.Table = "shadow_records"
	}
	table := pgx.Identifier{cfg.Table}.Sanitize()
	schema := &atomic.Bool{}
	logger = logger.With("component", "recordstore.postgres")
	return record.WithIDValidation(record.OpenerFunc(func() record.Store {
		return &PostgresStore{cfg: cfg, table: table, schema: schema, logger: logger}
	}), validateUUID)
}

// Connect implements record.Store.
func (s *PostgresStore) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, s.cfg.DSN)
	if err != nil {
		s.logger.Error("postgres connect failed", "error", err)
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "connect postgres", err)
	}
	if !s.schema.Load() {
		if _, err := conn.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				recorded_at TIMESTAMP NOT NULL,
				time_label TEXT NOT NULL,
				data TEXT NOT NULL
			)`, s.table)); err != nil {
			_ = conn.Close(context.WithoutCancel(ctx))
			s.logger.Error("postgres schema setup failed", "error", err)
			return apperrors.Wrap(apperrors.CodeStoreUnavailable, "prepare postgres table", err)
		}
		s.schema.Store(true)
	}
	s.conn = conn
	return nil
}

// Insert implements record.Store.
func (s *PostgresStore) Insert(ctx context.Context, rec record.Record) (string, error) {
	if s.conn == nil {
		return "", errNotConnected
	}
	id := uuid.New().String()
	_, err := s.conn.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, recorded_at, time_label, data)
		VALUES ($1::uuid, $2, $3, $4)
	`, s.table), id, util.WallClockUTC(rec.Timestamp), rec.Time, rec.Data)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStoreUnavailable, "insert shadow record", err)
	}
	s.logger.Info("record inserted", "record_id", id)
	return id, nil
}

// Get implements record.Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (record.Record, error) {
	parsed, err := parseUUID(id)
	if err != nil {
		return record.Record{}, err
	}
	if s.conn == nil {
		return record.Record{}, errNotConnected
	}
	row := s.conn.QueryRow(ctx, fmt.Sprintf(`
		SELECT id::text, recorded_at, time_label, data
		FROM %s
		WHERE id = $1::uuid
	`, s.table), parsed.String())
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "record not found", nil)
	}
	if err != nil {
		return record.Record{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "read shadow record", err)
	}
	return rec, nil
}

// Close implements record.Store.
func (s *PostgresStore) Close(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	if err := conn.Close(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "close postgres connection", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (record.Record, error) {
	var rec record.Record
	if err := row.Scan(&rec.ID, &rec.Timestamp, &rec.Time, &rec.Data); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

var _ record.Store = (*PostgresStore)(nil)
