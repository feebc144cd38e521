package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// IsHumanInControl reports whether a human operator currently owns the
// session. An absent row, a stored false, and a read failure all resolve to
// false: the AI owns a session by default, and failures fail open toward the
// AI rather than toward silence.
func (s *Store) IsHumanInControl(sessionID string) bool {
	var controlled bool
	err := s.db.QueryRow(
		`SELECT is_human_controlled FROM human_control WHERE session_id = ?`,
		sessionID,
	).Scan(&controlled)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("control: read failed for session %s, defaulting to AI control: %v", sessionID, err)
		}
		return false
	}
	return controlled
}

// SetHumanControl upserts the control flag for a session. Last writer wins;
// operator actions are manually triggered so no optimistic concurrency is
// applied.
func (s *Store) SetHumanControl(sessionID string, humanControlled bool) error {
	_, err := s.db.Exec(`
		INSERT INTO human_control (session_id, is_human_controlled, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			is_human_controlled = excluded.is_human_controlled,
			updated_at = excluded.updated_at
	`, sessionID, humanControlled)
	if err != nil {
		return fmt.Errorf("upsert control state: %w", err)
	}
	return nil
}
