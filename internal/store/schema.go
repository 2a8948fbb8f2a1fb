package store

import (
	"database/sql"
	"fmt"
)

const (
	tableLLMEvents   = "llm_request_events"
	tableGenerations = "worksheet_generations"
	tableTiers       = "worksheet_tiers"
)

// migrations are idempotent and run in order on every Open.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     TEXT    NOT NULL,
		provider      TEXT    NOT NULL,
		model         TEXT    NOT NULL,
		purpose       TEXT    NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT    NOT NULL DEFAULT '',
		request_body  TEXT    NOT NULL DEFAULT '',
		response_body TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,

	`CREATE TABLE IF NOT EXISTS worksheet_generations (
		id            TEXT    PRIMARY KEY,
		sequence      INTEGER NOT NULL UNIQUE,
		created_at    TEXT    NOT NULL,
		question_type TEXT    NOT NULL,
		language      TEXT    NOT NULL DEFAULT '',
		total_marks   INTEGER NOT NULL DEFAULT 0,
		topic         TEXT    NOT NULL DEFAULT '',
		model         TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS worksheet_tiers (
		generation_id TEXT    NOT NULL REFERENCES worksheet_generations (id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		tier          TEXT    NOT NULL,
		raw_text      TEXT    NOT NULL,
		PRIMARY KEY (generation_id, tier)
	)`,
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
