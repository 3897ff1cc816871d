// Package cache stores calculated difficulty attributes in SQLite so charts
// don't have to be recalculated for the same difficulty, mods, tuning and calculator version.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
)

var ErrNotFound = errors.New("attributes not cached")

// Key identifies one calculation. Mods should be masked to the ones that change difficulty.
type Key struct {
	ChartID string

	// Difficulty holds the base HP, CS, OD and AR of the chart
	Difficulty string

	Mods      difficulty.Modifier
	ClockRate float64
	Version   int
	Tuning    string
}

// KeyFor builds the key of chartID rated under diff by calculator
func KeyFor(chartID string, diff *difficulty.Difficulty, calculator api.IDifficultyCalculator) Key {
	return Key{
		ChartID:    chartID,
		Difficulty: fmt.Sprintf("%g/%g/%g/%g", diff.GetBaseHP(), diff.GetBaseCS(), diff.GetBaseOD(), diff.GetBaseAR()),
		Mods:       difficulty.GetDiffMaskedMods(diff.Mods),
		ClockRate:  diff.Speed,
		Version:    calculator.GetVersion(),
		Tuning:     calculator.GetTuningFingerprint(),
	}
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	// sqlite allows a single writer, concurrent batch workers queue on one connection
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists difficulty_attributes
	  (
		  chart_id text not null,
		  difficulty text not null,
		  mods integer not null,
		  clock_rate real not null,
		  version integer not null,
		  tuning text not null,
		  data blob not null,
		  primary key (chart_id, difficulty, mods, clock_rate, version, tuning)
	  );
	`

	if _, err = db.Exec(initStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached attributes for key, or ErrNotFound
func (s *Store) Get(ctx context.Context, key Key) (api.Attributes, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx,
		"select data from difficulty_attributes where chart_id = ? and difficulty = ? and mods = ? and clock_rate = ? and version = ? and tuning = ?",
		key.ChartID, key.Difficulty, int64(key.Mods), key.ClockRate, key.Version, key.Tuning,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return api.Attributes{}, ErrNotFound
	}

	if err != nil {
		return api.Attributes{}, fmt.Errorf("load attributes of %s: %w", key.ChartID, err)
	}

	var attr api.Attributes
	if err = json.Unmarshal(data, &attr); err != nil {
		return api.Attributes{}, fmt.Errorf("decode attributes of %s: %w", key.ChartID, err)
	}

	return attr, nil
}

// Put stores attr under key, replacing an older entry
func (s *Store) Put(ctx context.Context, key Key, attr api.Attributes) error {
	data, err := json.Marshal(attr)
	if err != nil {
		return fmt.Errorf("encode attributes of %s: %w", key.ChartID, err)
	}

	_, err = s.db.ExecContext(ctx,
		"insert or replace into difficulty_attributes(chart_id, difficulty, mods, clock_rate, version, tuning, data) values(?, ?, ?, ?, ?, ?, ?)",
		key.ChartID, key.Difficulty, int64(key.Mods), key.ClockRate, key.Version, key.Tuning, data,
	)
	if err != nil {
		return fmt.Errorf("save attributes of %s: %w", key.ChartID, err)
	}

	return nil
}

// Purge removes entries made by other calculator versions and returns how many were removed
func (s *Store) Purge(ctx context.Context, version int) (int64, error) {
	res, err := s.db.ExecContext(ctx, "delete from difficulty_attributes where version != ?", version)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}

	return res.RowsAffected()
}
