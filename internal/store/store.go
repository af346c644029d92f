// Package store keeps the installed version stamp and the upgrade run history in the
// managed database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/constants"
	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/version"
)

// RunRecord is one catalog phase executed by an upgrade run.
type RunRecord struct {
	ID       int64
	RunID    string
	Version  string
	Phase    string
	Affected int64
	Failed   bool
	Error    string
	RanAt    string
}

// Store reads and writes bookkeeping rows over the managed database connection.
type Store struct {
	db      *sql.DB
	dialect schema.Dialect
	logger  *common.Logger
}

// New binds a store to an open connection.
func New(db *sql.DB, dialect schema.Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  common.GetLogger().WithComponent("store").WithStore(dialect.Name()),
	}
}

// FromAccessor shares the accessor's connection.
func FromAccessor(acc *schema.DBAccessor) *Store {
	return New(acc.DB(), acc.Dialect())
}

// Ensure creates the bookkeeping tables. It is safe to call on every start.
func (s *Store) Ensure() error {
	s.logger.Debug("ensuring bookkeeping tables")
	if err := runMigrations(s.db, s.dialect); err != nil {
		s.logger.Error("failed to ensure bookkeeping tables", "error", err)
		return fmt.Errorf("failed to ensure bookkeeping tables: %w", err)
	}
	return nil
}

func (s *Store) ph(i int) string {
	return s.dialect.Placeholder(i)
}

// CurrentVersion returns the installed version stamp. found is false when the
// database has never been stamped.
func (s *Store) CurrentVersion(ctx context.Context) (v version.Version, found bool, err error) {
	q := fmt.Sprintf("SELECT metainfo_value FROM %s WHERE metainfo_key = %s", constants.MetainfoTable, s.ph(1))
	var raw sql.NullString
	err = s.db.QueryRowContext(ctx, q, constants.VersionMetainfoKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return version.Version{}, false, nil
	}
	if err != nil {
		return version.Version{}, false, fmt.Errorf("failed to read version stamp: %w", err)
	}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return version.Version{}, false, nil
	}
	v, err = version.Parse(raw.String)
	if err != nil {
		return version.Version{}, false, fmt.Errorf("stored version stamp: %w", err)
	}
	return v, true, nil
}

// SetVersion writes the installed version stamp.
func (s *Store) SetVersion(ctx context.Context, v version.Version) error {
	q := fmt.Sprintf(
		"INSERT INTO %s(metainfo_key, metainfo_value) VALUES(%s, %s) ON CONFLICT(metainfo_key) DO UPDATE SET metainfo_value = excluded.metainfo_value",
		constants.MetainfoTable, s.ph(1), s.ph(2))
	if _, err := s.db.ExecContext(ctx, q, constants.VersionMetainfoKey, v.String()); err != nil {
		s.logger.Error("failed to write version stamp", "error", err, "version", v.String())
		return fmt.Errorf("failed to write version stamp %s: %w", v, err)
	}
	s.logger.Info("version stamp updated", "version", v.String())
	return nil
}

// RecordRun appends one history row. RanAt defaults to now.
func (s *Store) RecordRun(ctx context.Context, r RunRecord) error {
	ranAt := time.Now()
	if r.RanAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.RanAt); err == nil {
			ranAt = t
		}
	}
	var errText any
	if r.Error != "" {
		errText = r.Error
	}
	q := fmt.Sprintf(
		"INSERT INTO %s(run_id, catalog_version, phase, affected, failed, error, ran_at) VALUES(%s, %s, %s, %s, %s, %s, %s)",
		constants.UpgradeHistoryTable, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7))
	_, err := s.db.ExecContext(ctx, q,
		r.RunID, r.Version, r.Phase, r.Affected,
		s.dialect.BoolToStorage(r.Failed), errText, s.dialect.TimeToStorage(ranAt))
	if err != nil {
		return fmt.Errorf("failed to record upgrade run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent history rows, newest first. limit <= 0 uses the default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	q := fmt.Sprintf(
		"SELECT id, run_id, catalog_version, phase, affected, failed, error, ran_at FROM %s ORDER BY id DESC LIMIT %s",
		constants.UpgradeHistoryTable, s.ph(1))
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		var (
			r       RunRecord
			failed  any
			errText sql.NullString
			ranAt   any
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Version, &r.Phase, &r.Affected, &failed, &errText, &ranAt); err != nil {
			return nil, fmt.Errorf("failed to scan upgrade run: %w", err)
		}
		r.Failed = s.dialect.BoolFromStorage(failed)
		r.Error = errText.String
		r.RanAt = s.dialect.TimeFromStorage(ranAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
