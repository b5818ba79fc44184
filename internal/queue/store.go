package queue

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/playrps/backend/internal/protocol"
)

// Store is MM's persistence surface: a match row per created match, a
// match_results row per completed one (spec.md §6 Persistence layout).
// Grounded on the teacher's db.Exec/db.Get style (internal/admin/admin.go).
type Store struct {
	db *sqlx.DB
}

// NewStore wraps db. A nil db disables persistence entirely — matchmaking
// keeps working (RecordMatch is a no-op), while RecordResult returns an error
// so result ingest answers 500.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RecordMatch persists a newly created match. Failure here is logged and
// swallowed (spec.md §7 Persistence policy: "in-flight matchmaking — the
// match is already playing, DB metadata is best-effort").
func (s *Store) RecordMatch(gameID protocol.Id, players [2]protocol.Id, gamesToWin uint8) {
	if s.db == nil {
		return
	}
	_, err := s.db.Exec(
		`INSERT INTO match (id, player_1_id, player_2_id, games_to_win) VALUES ($1, $2, $3, $4)`,
		gameID, players[0], players[1], gamesToWin,
	)
	if err != nil {
		log.Printf("[QUEUE] failed to record match %s: %v", gameID, err)
	}
}

// RecordResult writes a completed match's result. Unlike RecordMatch, this is
// surfaced to the caller (the POST /game/result HTTP handler returns 500 on
// error), since it is a control-plane write rather than best-effort metadata.
func (s *Store) RecordResult(gameID protocol.Id, gamesWon [2]uint32) error {
	if s.db == nil {
		return fmt.Errorf("queue: no database configured")
	}
	_, err := s.db.Exec(
		`INSERT INTO match_results (id, player_1_score, player_2_score) VALUES ($1, $2, $3)`,
		gameID, gamesWon[0], gamesWon[1],
	)
	if err != nil {
		return fmt.Errorf("queue: record result for %s: %w", gameID, err)
	}
	updateELO(gameID, gamesWon)
	return nil
}

// updateELO is a placeholder hook (spec.md §4.2: "ELO update is a placeholder
// hook (non-core)"). ELO math itself is out of scope.
func updateELO(gameID protocol.Id, gamesWon [2]uint32) {
	log.Printf("[QUEUE] updateELO placeholder invoked for match %s: %v", gameID, gamesWon)
}
