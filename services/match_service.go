package services

import (
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/models"
	"github.com/sakura-arcade/gameserver/persistence"
)

// MatchService archives finished matches and answers record queries. It
// implements room.Archiver; writes happen off the calling goroutine so a
// slow database never touches a room's serialized path.
type MatchService struct {
	store persistence.MatchStore
}

func NewMatchService(store persistence.MatchStore) *MatchService {
	return &MatchService{store: store}
}

func (s *MatchService) ArchiveMatch(rec *models.MatchRecord) {
	if s == nil || s.store == nil {
		return
	}
	go func() {
		if err := s.store.SaveMatch(rec); err != nil {
			logger.Log.Errorf("Failed to archive match for room %s: %v", rec.RoomID, err)
			return
		}
		logger.Log.Infof("Archived match for room %s (%s)", rec.RoomID, rec.GameKey)
	}()
}

// PlayerRecord returns aggregate archived stats for one player.
func (s *MatchService) PlayerRecord(playerID string) (map[string]interface{}, error) {
	if s == nil || s.store == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.store.PlayerRecord(playerID)
}
