package persistence

import (
	"fmt"

	"github.com/sakura-arcade/gameserver/models"
)

// MatchStore archives finished matches. Live game state is never stored;
// a process restart loses all rooms by design.
type MatchStore interface {
	SaveMatch(rec *models.MatchRecord) error
	// PlayerRecord returns aggregate stats for one player across all
	// archived matches: matches played and total score.
	PlayerRecord(playerID string) (map[string]interface{}, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
