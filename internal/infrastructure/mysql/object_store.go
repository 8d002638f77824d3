package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"auction-house/internal/domain"
)

const schema = `
        CREATE TABLE IF NOT EXISTS object_records (
            category   VARCHAR(64)  NOT NULL,
            record_key VARCHAR(255) NOT NULL,
            data       JSON         NOT NULL,
            version    BIGINT       NOT NULL DEFAULT 0,
            PRIMARY KEY (category, record_key)
        )
    `

// MySQLObjectStore keeps every category in a single table keyed by
// (category, record_key) with the record as a JSON column.
type MySQLObjectStore struct {
	db *sql.DB
}

func NewMySQLObjectStore(db *sql.DB) *MySQLObjectStore {
	return &MySQLObjectStore{db: db}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: mysql %s: %v", domain.ErrStoreUnavailable, op, err)
}

func (r *MySQLObjectStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return unavailable("create schema", err)
	}
	return nil
}

func (r *MySQLObjectStore) Get(ctx context.Context, category, key string) (domain.Record, bool, error) {
	query := `SELECT data FROM object_records WHERE category = ? AND record_key = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, category, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, unavailable("select", err)
	}

	record, err := decode(category, key, data)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (r *MySQLObjectStore) GetAll(ctx context.Context, category string, filter domain.Predicate) ([]domain.Record, error) {
	query := `SELECT record_key, data FROM object_records WHERE category = ?`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, unavailable("select", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var (
			key  string
			data []byte
		)
		if err := rows.Scan(&key, &data); err != nil {
			return nil, unavailable("scan", err)
		}

		record, err := decode(category, key, data)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(record) {
			records = append(records, record)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate", err)
	}

	return records, nil
}

func (r *MySQLObjectStore) Put(ctx context.Context, category, key string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	query := `
        INSERT INTO object_records (category, record_key, data, version)
        VALUES (?, ?, ?, 0)
        ON DUPLICATE KEY UPDATE data = VALUES(data)
    `
	if _, err := r.db.ExecContext(ctx, query, category, key, data); err != nil {
		return unavailable("upsert", err)
	}
	return nil
}

func (r *MySQLObjectStore) CompareAndPut(ctx context.Context, category, key string, expected int64, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	var result sql.Result
	if expected == 0 {
		// A brand new key inserts at version 1; an existing row is only
		// overwritten while it is still at version 0.
		query := `
            INSERT INTO object_records (category, record_key, data, version)
            VALUES (?, ?, ?, 1)
            ON DUPLICATE KEY UPDATE
                data = IF(version = 0, VALUES(data), data),
                version = IF(version = 0, 1, version)
        `
		result, err = r.db.ExecContext(ctx, query, category, key, data)
	} else {
		query := `
            UPDATE object_records SET data = ?, version = version + 1
            WHERE category = ? AND record_key = ? AND version = ?
        `
		result, err = r.db.ExecContext(ctx, query, data, category, key, expected)
	}
	if err != nil {
		return unavailable("compare and put", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s is not at version %d", domain.ErrVersionConflict, category, key, expected)
	}
	return nil
}

func (r *MySQLObjectStore) Delete(ctx context.Context, category, key string) error {
	query := `DELETE FROM object_records WHERE category = ? AND record_key = ?`
	if _, err := r.db.ExecContext(ctx, query, category, key); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

func (r *MySQLObjectStore) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM object_records`); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func decode(category, key string, data []byte) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s/%s is not a valid record: %v", domain.ErrIntegrity, category, key, err)
	}
	return record, nil
}
