// Package clickhouse implements the persistence contract of the indexer on
// ClickHouse. Tables are ReplacingMergeTree keyed so that re-scanning a
// block replaces rows instead of duplicating them; write ordering (events,
// unit transactions, vault states, cursor last) makes the cursor the
// high-water mark of fully persisted blocks.
package clickhouse

import (
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics observes every repository operation.
	Metrics interface {
		Observe(operation string, network model.Network, err error, started time.Time)
	}
)

// Repository is the ClickHouse-backed store.
type Repository struct {
	conn    clickhouse.Conn
	metrics Metrics
}

// NewRepository opens a ClickHouse connection from a DSN.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Close releases the connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}
