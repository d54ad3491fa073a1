package room

import (
	"encoding/json"

	"github.com/sakura-arcade/gameserver/game"
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/models"
	"github.com/sakura-arcade/gameserver/network"
)

// snapshotLocked projects the room for one viewer. Everything shared is
// included; hand contents are included for the viewer only — no snapshot
// ever carries another player's cards.
func (r *Room) snapshotLocked(viewerID string) *models.RoomSnapshot {
	snap := &models.RoomSnapshot{
		ID:             r.ID,
		AdminID:        r.adminID,
		Locked:         r.locked,
		Settings:       r.settings,
		GameKey:        string(r.variant),
		GameName:       r.variant.Name(),
		DealerIndex:    r.dealerIndex,
		RoundIndex:     r.roundIndex,
		RoundSizes:     game.RoundSizes,
		Phase:          string(r.phaseLocked()),
		Scores:         copyIntMap(r.scores),
		History:        r.history,
		Me:             viewerID,
		Timers:         r.deadline,
		TrickReactions: r.trickReactions,
		Bids:           map[string]int{},
		TricksWon:      map[string]int{},
		HandsCount:     map[string]int{},
	}

	snap.Players = make([]models.PlayerInfo, len(r.players))
	for i, p := range r.players {
		snap.Players[i] = models.PlayerInfo{
			ID: p.ID, Name: p.Name, Avatar: p.Avatar,
			Connected: p.Connected, SeatIndex: p.SeatIndex,
		}
	}

	if r.roundIndex < len(game.RoundSizes) {
		snap.RoundSize = game.RoundSizes[r.roundIndex]
	}

	if len(r.chat) > 100 {
		snap.Chat = r.chat[len(r.chat)-100:]
	} else {
		snap.Chat = r.chat
	}

	if r.round != nil {
		snap.RoundSize = r.round.Size
		snap.Trump = game.TrumpLabel(r.round.Trump)
		snap.Bids = copyIntMap(r.round.Bids)
		snap.TricksWon = copyIntMap(r.round.TricksWon)
		snap.TurnOrder = append([]string{}, r.round.PlayOrder...)
		snap.CurrentTrick = append([]game.TrickPlay{}, r.round.CurrentTrick...)
		snap.LeadSuit = r.round.LeadSuit()
		for id, h := range r.round.Hands {
			snap.HandsCount[id] = len(h)
		}
		if hand, ok := r.round.Hands[viewerID]; ok {
			snap.Hand = append([]game.Card{}, hand...)
		}
		if !r.finished {
			switch r.round.Phase {
			case game.PhaseBidding:
				snap.CurrentTurn, _ = r.round.CurrentBidderID()
			case game.PhasePlaying:
				snap.CurrentTurn, _ = r.round.CurrentPlayerID()
			}
		}
	}

	return snap
}

// Snapshot builds the projection for one player. Exposed for the server's
// join/create replies.
func (r *Room) Snapshot(viewerID string) *models.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(viewerID)
}

// broadcastLocked fans per-player projections out to every connected seat.
// Delivery is fire-and-forget; the sender must never block.
func (r *Room) broadcastLocked() {
	for _, p := range r.players {
		if p.Session == nil || !p.Connected {
			continue
		}
		data, err := json.Marshal(r.snapshotLocked(p.ID))
		if err != nil {
			logger.Log.Errorf("Room %s snapshot marshal failed: %v", r.ID, err)
			return
		}
		r.sender.Unicast(p.Session, network.MsgTypeRoomState, data)
	}
}
