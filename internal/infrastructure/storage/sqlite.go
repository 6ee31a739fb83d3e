package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"narrative-server/pkg/logger"
)

// ErrNoCampaign is returned by Load when the store holds no saved state.
var ErrNoCampaign = errors.New("no saved campaign")

// UnitRecord is a persisted unit. Properties travel as the unit's JSON
// property bag so schema changes in the domain never require a migration.
type UnitRecord struct {
	ID    string
	Name  string
	Kind  string
	Props json.RawMessage
}

// DiaryRecord is one persisted chronicle line.
type DiaryRecord struct {
	Round     int
	Turn      int
	ActorID   string
	ActorName string
	GoalID    string
	Action    string
	Text      string
	Timestamp int64
}

// CampaignState is everything a shutdown writes and a restart reads.
type CampaignState struct {
	Seed       int64
	Round      int
	GlobalTurn int
	SavedAt    int64
	Units      []UnitRecord
	Diary      []DiaryRecord
}

// CampaignStore persists campaign state in a single sqlite file. It is only
// written during shutdown, never while turns are in flight.
type CampaignStore struct {
	db *sql.DB
}

const campaignSchema = `
CREATE TABLE IF NOT EXISTS campaign (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	seed        INTEGER NOT NULL,
	round       INTEGER NOT NULL,
	global_turn INTEGER NOT NULL,
	saved_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS units (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	kind  TEXT NOT NULL,
	props TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS diary (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	round      INTEGER NOT NULL,
	turn       INTEGER NOT NULL,
	actor_id   TEXT NOT NULL,
	actor_name TEXT NOT NULL,
	goal_id    TEXT,
	action     TEXT,
	text       TEXT NOT NULL,
	timestamp  INTEGER NOT NULL
);`

func OpenCampaignStore(path string) (*CampaignStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open campaign store: %w", err)
	}
	if _, err := db.Exec(campaignSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init campaign schema: %w", err)
	}
	logger.Log.WithField("path", path).Info("Campaign store opened")
	return &CampaignStore{db: db}, nil
}

// Save replaces the stored campaign wholesale inside one transaction.
func (s *CampaignStore) Save(state CampaignState) error {
	if state.SavedAt == 0 {
		state.SavedAt = time.Now().Unix()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM campaign", "DELETE FROM units", "DELETE FROM diary"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear previous campaign: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO campaign (id, seed, round, global_turn, saved_at) VALUES (1, ?, ?, ?, ?)",
		state.Seed, state.Round, state.GlobalTurn, state.SavedAt,
	); err != nil {
		return fmt.Errorf("save campaign row: %w", err)
	}

	for _, u := range state.Units {
		if _, err := tx.Exec(
			"INSERT INTO units (id, name, kind, props) VALUES (?, ?, ?, ?)",
			u.ID, u.Name, u.Kind, string(u.Props),
		); err != nil {
			return fmt.Errorf("save unit %s: %w", u.ID, err)
		}
	}

	for _, d := range state.Diary {
		if _, err := tx.Exec(
			"INSERT INTO diary (round, turn, actor_id, actor_name, goal_id, action, text, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			d.Round, d.Turn, d.ActorID, d.ActorName, d.GoalID, d.Action, d.Text, d.Timestamp,
		); err != nil {
			return fmt.Errorf("save diary line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{
		"round": state.Round,
		"units": len(state.Units),
		"diary": len(state.Diary),
	}).Info("Campaign saved")
	return nil
}

// Load reads the stored campaign back. ErrNoCampaign when nothing was saved.
func (s *CampaignStore) Load() (CampaignState, error) {
	var state CampaignState
	err := s.db.QueryRow("SELECT seed, round, global_turn, saved_at FROM campaign WHERE id = 1").
		Scan(&state.Seed, &state.Round, &state.GlobalTurn, &state.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, ErrNoCampaign
	}
	if err != nil {
		return state, fmt.Errorf("load campaign row: %w", err)
	}

	rows, err := s.db.Query("SELECT id, name, kind, props FROM units")
	if err != nil {
		return state, fmt.Errorf("load units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u UnitRecord
		var props string
		if err := rows.Scan(&u.ID, &u.Name, &u.Kind, &props); err != nil {
			return state, fmt.Errorf("scan unit: %w", err)
		}
		u.Props = json.RawMessage(props)
		state.Units = append(state.Units, u)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("iterate units: %w", err)
	}

	diaryRows, err := s.db.Query(
		"SELECT round, turn, actor_id, actor_name, goal_id, action, text, timestamp FROM diary ORDER BY seq")
	if err != nil {
		return state, fmt.Errorf("load diary: %w", err)
	}
	defer diaryRows.Close()
	for diaryRows.Next() {
		var d DiaryRecord
		if err := diaryRows.Scan(&d.Round, &d.Turn, &d.ActorID, &d.ActorName, &d.GoalID, &d.Action, &d.Text, &d.Timestamp); err != nil {
			return state, fmt.Errorf("scan diary line: %w", err)
		}
		state.Diary = append(state.Diary, d)
	}
	if err := diaryRows.Err(); err != nil {
		return state, fmt.Errorf("iterate diary: %w", err)
	}

	return state, nil
}

func (s *CampaignStore) Close() error {
	return s.db.Close()
}
