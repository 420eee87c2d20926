// Package rundb persists simulation runs in a SQLite database: run
// metadata including the detector description, the triggered events and
// effective volume results.
package rundb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			input_file TEXT,
			output_file TEXT,
			n_events BIGINT,
			seed BIGINT,
			detector_json TEXT,
			config_json TEXT,
			started TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			finished TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS triggers (
			trigger_id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			event_group_id BIGINT,
			shower_id BIGINT,
			station_id INTEGER,
			channel_id INTEGER,
			solution TEXT,
			amplitude DOUBLE,
			travel_time DOUBLE,
			viewing_angle DOUBLE,
			weight DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS veff (
			veff_id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			energy DOUBLE,
			veff DOUBLE,
			veff_err DOUBLE,
			n_triggered BIGINT,
			n_events BIGINT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// StartRun records a new run and returns its id.
func (db *DB) StartRun(inputFile, outputFile string, nEvents, seed int64, detectorJSON, configJSON string) (string, error) {
	runID := uuid.New().String()
	_, err := db.Exec(`INSERT INTO runs (run_id, input_file, output_file, n_events, seed, detector_json, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, inputFile, outputFile, nEvents, seed, detectorJSON, configJSON)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

// FinishRun marks a run as completed.
func (db *DB) FinishRun(runID string) error {
	res, err := db.Exec(`UPDATE runs SET finished = ? WHERE run_id = ?`, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// Trigger is one channel trigger of a simulated event.
type Trigger struct {
	EventGroupID int64
	ShowerID     int64
	StationID    int
	ChannelID    int
	Solution     string
	Amplitude    float64
	TravelTime   float64
	ViewingAngle float64
	Weight       float64
}

// RecordTrigger stores a trigger for the run.
func (db *DB) RecordTrigger(runID string, t Trigger) error {
	_, err := db.Exec(`INSERT INTO triggers
		(run_id, event_group_id, shower_id, station_id, channel_id, solution, amplitude, travel_time, viewing_angle, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, t.EventGroupID, t.ShowerID, t.StationID, t.ChannelID,
		t.Solution, t.Amplitude, t.TravelTime, t.ViewingAngle, t.Weight)
	if err != nil {
		return fmt.Errorf("record trigger: %w", err)
	}
	return nil
}

// Triggers returns the triggers of a run ordered by event group.
func (db *DB) Triggers(runID string) ([]Trigger, error) {
	rows, err := db.Query(`SELECT event_group_id, shower_id, station_id, channel_id, solution, amplitude, travel_time, viewing_angle, weight
		FROM triggers WHERE run_id = ? ORDER BY event_group_id, shower_id, station_id, channel_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trigger
	for rows.Next() {
		var t Trigger
		if err := rows.Scan(&t.EventGroupID, &t.ShowerID, &t.StationID, &t.ChannelID,
			&t.Solution, &t.Amplitude, &t.TravelTime, &t.ViewingAngle, &t.Weight); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// VeffResult is an effective volume at one energy.
type VeffResult struct {
	Energy     float64
	Veff       float64
	VeffErr    float64
	NTriggered int64
	NEvents    int64
}

// RecordVeff stores an effective volume result for the run.
func (db *DB) RecordVeff(runID string, v VeffResult) error {
	_, err := db.Exec(`INSERT INTO veff (run_id, energy, veff, veff_err, n_triggered, n_events)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, v.Energy, v.Veff, v.VeffErr, v.NTriggered, v.NEvents)
	if err != nil {
		return fmt.Errorf("record veff: %w", err)
	}
	return nil
}

// VeffResults returns the effective volumes of a run ordered by energy.
func (db *DB) VeffResults(runID string) ([]VeffResult, error) {
	rows, err := db.Query(`SELECT energy, veff, veff_err, n_triggered, n_events
		FROM veff WHERE run_id = ? ORDER BY energy`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VeffResult
	for rows.Next() {
		var v VeffResult
		if err := rows.Scan(&v.Energy, &v.Veff, &v.VeffErr, &v.NTriggered, &v.NEvents); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DetectorJSON returns the detector description stored with a run.
func (db *DB) DetectorJSON(runID string) (string, error) {
	var s string
	err := db.QueryRow(`SELECT detector_json FROM runs WHERE run_id = ?`, runID).Scan(&s)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("unknown run %s", runID)
	}
	if err != nil {
		return "", err
	}
	return s, nil
}
