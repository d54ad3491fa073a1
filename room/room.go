package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sakura-arcade/gameserver/game"
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/models"
	"github.com/sakura-arcade/gameserver/session"
	"github.com/sakura-arcade/gameserver/timer"
)

const (
	minPlayers  = 3
	maxPlayers  = 6
	chatBacklog = 500
)

// Room owns one table's full lifecycle: lobby, the rounds of an active
// game, the finished screen and admin resets. Every state-mutating request
// is serialized by a single mutex, so actions apply one at a time in
// arrival order; illegal actions are rejected before any mutation.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	players  []*Player // seat order
	adminID  string
	settings Settings
	variant  game.Variant
	locked   bool
	finished bool

	dealerIndex  int
	roundIndex   int
	round        *game.Round
	scores       map[string]int
	history      []game.HistoryEntry
	nextLeaderID string

	chat           []models.ChatMessage
	trickReactions map[string]map[string]map[string]bool // trick index -> emoji -> player id

	// deadline is the advisory countdown clients render; turnEpoch guards
	// the enforcement callback against racing a live human action.
	deadline     *models.TurnDeadline
	turnEpoch    uint64
	pendingTimer int64

	sender   Sender
	timers   *timer.Manager
	archiver Archiver
}

// NewRoom creates a room with the creating connection seated as admin.
// timers and archiver may be nil (no deadline enforcement / no archive).
func NewRoom(id string, creator *session.Session, name string, defaults Settings, sender Sender, timers *timer.Manager, archiver Archiver) *Room {
	r := &Room{
		ID:             id,
		CreatedAt:      time.Now(),
		adminID:        creator.GetID(),
		settings:       defaults,
		variant:        game.VariantContract,
		scores:         make(map[string]int),
		trickReactions: make(map[string]map[string]map[string]bool),
		sender:         sender,
		timers:         timers,
		archiver:       archiver,
	}
	p := r.seatLocked(creator, name)
	r.sysMsgLocked(fmt.Sprintf("%s created the room", p.Name))
	return r
}

func (r *Room) seatLocked(sess *session.Session, name string) *Player {
	if name == "" {
		name = fmt.Sprintf("Player%d", len(r.players)+1)
	}
	p := &Player{
		ID:        sess.GetID(),
		Name:      truncate(name, 24),
		Avatar:    defaultAvatar,
		SeatIndex: len(r.players),
		Connected: true,
		Session:   sess,
	}
	r.players = append(r.players, p)
	r.scores[p.ID] = 0
	sess.SetRoom(r.ID)
	return p
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (r *Room) memberLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerIDsLocked() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) phaseLocked() game.Phase {
	if r.finished {
		return game.PhaseFinished
	}
	if r.round == nil {
		return game.PhaseLobby
	}
	return r.round.Phase
}

func (r *Room) sysMsgLocked(text string) {
	r.chat = append(r.chat, models.ChatMessage{
		ID:   newChatID(),
		Ts:   time.Now().UnixMilli(),
		Sys:  true,
		Text: text,
	})
	if len(r.chat) > chatBacklog {
		r.chat = r.chat[1:]
	}
}

func newChatID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Join seats a new connection. Joining is only possible in the lobby of an
// unlocked room.
func (r *Room) Join(sess *session.Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		return game.RuleErr("room is locked")
	}
	if r.phaseLocked() != game.PhaseLobby {
		return game.PhaseErr("game already started")
	}
	if r.memberLocked(sess.GetID()) != nil {
		return game.ProtocolErr("already in this room")
	}
	p := r.seatLocked(sess, name)
	r.sysMsgLocked(fmt.Sprintf("%s joined", p.Name))
	r.broadcastLocked()
	return nil
}

// Rename changes the acting player's own display name.
func (r *Room) Rename(actorID, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.memberLocked(actorID)
	if p == nil {
		return game.AuthErr("you are not in this room")
	}
	newName = truncate(newName, 24)
	if newName == "" {
		return game.ProtocolErr("name must not be empty")
	}
	r.sysMsgLocked(fmt.Sprintf("%s → %s", p.Name, newName))
	p.Name = newName
	r.broadcastLocked()
	return nil
}

// SetAvatar changes the acting player's avatar tag.
func (r *Room) SetAvatar(actorID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.memberLocked(actorID)
	if p == nil {
		return game.AuthErr("you are not in this room")
	}
	if emoji == "" {
		emoji = defaultAvatar
	}
	p.Avatar = truncate(emoji, 4)
	r.sysMsgLocked(fmt.Sprintf("%s changed avatar %s", p.Name, p.Avatar))
	r.broadcastLocked()
	return nil
}

// SetVariant switches the scoring variant. Admin only, lobby only: the
// variant decides whether a bidding phase exists, so it cannot change
// under a live round.
func (r *Room) SetVariant(actorID string, key game.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if actorID != r.adminID {
		return game.AuthErr("only admin can change game")
	}
	if r.phaseLocked() != game.PhaseLobby {
		return game.PhaseErr("variant can only change in the lobby")
	}
	if !key.Valid() {
		return game.ProtocolErr("unknown game variant %q", key)
	}
	r.variant = key
	r.sysMsgLocked(fmt.Sprintf("Game set to %s", key.Name()))
	r.broadcastLocked()
	return nil
}

// UpdateSettings applies a partial settings change. Admin only.
func (r *Room) UpdateSettings(actorID string, patch SettingsPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if actorID != r.adminID {
		return game.AuthErr("only admin can change settings")
	}
	r.settings.apply(patch)
	r.sysMsgLocked("Settings updated")
	r.broadcastLocked()
	return nil
}

// Start begins the game. Any seated player may start; the player count
// must be within [3,6].
func (r *Room) Start(actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if r.phaseLocked() != game.PhaseLobby {
		return game.PhaseErr("game already started")
	}
	if len(r.players) < minPlayers || len(r.players) > maxPlayers {
		return game.RuleErr("players must be between %d and %d", minPlayers, maxPlayers)
	}
	r.roundIndex = 0
	r.dealerIndex = 0
	r.startRoundLocked()
	r.broadcastLocked()
	return nil
}

func (r *Room) startRoundLocked() {
	r.round = game.StartRound(r.playerIDsLocked(), r.dealerIndex, r.roundIndex, r.variant, r.nextLeaderID)
	r.trickReactions = make(map[string]map[string]map[string]bool)
	r.scheduleTurnLocked()
}

// Bid submits a bid for the acting player.
func (r *Room) Bid(actorID string, bid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if r.round == nil || r.finished {
		return game.PhaseErr("no round in progress")
	}
	if !r.variant.NeedsBids() {
		return game.PhaseErr("this game has no bidding")
	}
	if err := r.round.HandleBid(actorID, bid); err != nil {
		return err
	}
	r.afterBidLocked()
	r.broadcastLocked()
	return nil
}

func (r *Room) afterBidLocked() {
	if r.round.Phase == game.PhasePlaying {
		r.sysMsgLocked("Bidding complete. Play begins.")
	}
	r.scheduleTurnLocked()
}

// Play submits a card for the acting player.
func (r *Room) Play(actorID string, card game.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if r.round == nil || r.finished {
		return game.PhaseErr("no round in progress")
	}
	res, err := r.round.HandlePlay(actorID, card)
	if err != nil {
		return err
	}
	r.afterPlayLocked(res)
	r.broadcastLocked()
	return nil
}

func (r *Room) afterPlayLocked(res *game.TrickResult) {
	if res != nil {
		// Reactions attach to the trick on the table; it is gone now.
		r.trickReactions = make(map[string]map[string]map[string]bool)
	}
	if r.round.Phase == game.PhaseComplete {
		r.finalizeRoundLocked()
		return
	}
	r.scheduleTurnLocked()
}

func (r *Room) finalizeRoundLocked() {
	ids := r.playerIDsLocked()
	delta := r.variant.ScoreRound(ids, r.round.Bids, r.round.TricksWon)

	totals := make(map[string]int, len(ids))
	for _, id := range ids {
		r.scores[id] += delta[id]
		totals[id] = r.scores[id]
	}

	r.history = append(r.history, game.HistoryEntry{
		Round:  r.roundIndex + 1,
		Cards:  r.round.Size,
		Trump:  game.TrumpLabel(r.round.Trump),
		Bids:   copyIntMap(r.round.Bids),
		Won:    copyIntMap(r.round.TricksWon),
		Delta:  delta,
		Totals: totals,
		Game:   r.variant.Name(),
	})

	r.nextLeaderID = game.MostTricksWinner(ids, r.round.TricksWon)
	r.dealerIndex = (r.dealerIndex + 1) % len(r.players)
	r.roundIndex++

	if r.roundIndex < len(game.RoundSizes) {
		r.startRoundLocked()
		return
	}

	r.finished = true
	r.clearTurnLocked()
	r.sysMsgLocked("Game over")
	r.archiveLocked()
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *Room) archiveLocked() {
	if r.archiver == nil {
		return
	}
	players := make([]models.PlayerInfo, len(r.players))
	for i, p := range r.players {
		players[i] = models.PlayerInfo{
			ID: p.ID, Name: p.Name, Avatar: p.Avatar,
			Connected: p.Connected, SeatIndex: p.SeatIndex,
		}
	}
	r.archiver.ArchiveMatch(&models.MatchRecord{
		RoomID:     r.ID,
		GameKey:    string(r.variant),
		Players:    players,
		Scores:     copyIntMap(r.scores),
		History:    append([]game.HistoryEntry{}, r.history...),
		FinishedAt: time.Now(),
	})
}

// Admin executes an admin-only operation: lock, unlock, kick, newgame
// (reset to lobby) or rematch (reset and immediately restart).
func (r *Room) Admin(actorID, op, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if actorID != r.adminID {
		return game.AuthErr("only admin can do that")
	}

	switch op {
	case "lock":
		r.locked = true
		r.sysMsgLocked("Room locked")
	case "unlock":
		r.locked = false
		r.sysMsgLocked("Room unlocked")
	case "kick":
		if err := r.kickLocked(targetID); err != nil {
			return err
		}
	case "newgame":
		r.resetToLobbyLocked()
		r.sysMsgLocked("Reset to lobby")
	case "rematch":
		// A rematch re-validates the player count: the start gate applies
		// to every round restart.
		if len(r.players) < minPlayers || len(r.players) > maxPlayers {
			return game.RuleErr("players must be between %d and %d", minPlayers, maxPlayers)
		}
		r.resetToLobbyLocked()
		r.sysMsgLocked("Rematch!")
		r.startRoundLocked()
	default:
		return game.ProtocolErr("unknown admin op %q", op)
	}
	r.broadcastLocked()
	return nil
}

func (r *Room) kickLocked(targetID string) error {
	idx := -1
	for i, p := range r.players {
		if p.ID == targetID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return game.ProtocolErr("no such player")
	}
	target := r.players[idx]
	if target.Session != nil {
		target.Session.SetRoom("")
		target.Session.Close()
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.scores, targetID)
	for i, p := range r.players {
		p.SeatIndex = i
	}
	r.sysMsgLocked("A player was removed by admin")
	// A kicked seat inside a live round keeps its dealt hand; the turn
	// deadline auto-plays it so the round still ends.
	return nil
}

func (r *Room) resetToLobbyLocked() {
	r.finished = false
	r.round = nil
	r.roundIndex = 0
	r.dealerIndex = 0
	r.history = nil
	r.nextLeaderID = ""
	r.trickReactions = make(map[string]map[string]map[string]bool)
	r.scores = make(map[string]int, len(r.players))
	for _, p := range r.players {
		r.scores[p.ID] = 0
	}
	r.clearTurnLocked()
}

// Chat appends a chat message. Pure pass-through storage.
func (r *Room) Chat(actorID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.memberLocked(actorID)
	if p == nil {
		return game.AuthErr("you are not in this room")
	}
	if !r.settings.ChatEnabled {
		return game.RuleErr("chat is disabled")
	}
	text = truncate(text, 500)
	if text == "" {
		return game.ProtocolErr("empty message")
	}
	r.chat = append(r.chat, models.ChatMessage{
		ID:        newChatID(),
		Ts:        time.Now().UnixMilli(),
		PlayerID:  p.ID,
		Name:      p.Name,
		Text:      text,
		Reactions: make(map[string]map[string]bool),
	})
	if len(r.chat) > chatBacklog {
		r.chat = r.chat[1:]
	}
	r.broadcastLocked()
	return nil
}

// ReactChat toggles the acting player's emoji reaction on a chat message.
func (r *Room) ReactChat(actorID, messageID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if !r.settings.ReactionsEnabled {
		return game.RuleErr("reactions are disabled")
	}
	for i := range r.chat {
		if r.chat[i].ID != messageID {
			continue
		}
		if r.chat[i].Reactions == nil {
			r.chat[i].Reactions = make(map[string]map[string]bool)
		}
		byPlayer := r.chat[i].Reactions[emoji]
		if byPlayer == nil {
			byPlayer = make(map[string]bool)
			r.chat[i].Reactions[emoji] = byPlayer
		}
		if byPlayer[actorID] {
			delete(byPlayer, actorID)
		} else {
			byPlayer[actorID] = true
		}
		r.broadcastLocked()
		return nil
	}
	return game.ProtocolErr("no such message")
}

// ReactTrick toggles the acting player's emoji reaction on the trick in
// progress, keyed by trick index.
func (r *Room) ReactTrick(actorID, index, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(actorID) == nil {
		return game.AuthErr("you are not in this room")
	}
	if !r.settings.ReactionsEnabled {
		return game.RuleErr("reactions are disabled")
	}
	byEmoji := r.trickReactions[index]
	if byEmoji == nil {
		byEmoji = make(map[string]map[string]bool)
		r.trickReactions[index] = byEmoji
	}
	byPlayer := byEmoji[emoji]
	if byPlayer == nil {
		byPlayer = make(map[string]bool)
		byEmoji[emoji] = byPlayer
	}
	if byPlayer[actorID] {
		delete(byPlayer, actorID)
	} else {
		byPlayer[actorID] = true
	}
	r.broadcastLocked()
	return nil
}

// Disconnect marks the player's connection gone. Seats are kept so a round
// can finish via deadline enforcement. Returns true when no connected
// player remains; the registry then removes the room.
func (r *Room) Disconnect(actorID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.memberLocked(actorID)
	if p == nil {
		return false
	}
	p.Connected = false
	p.Session = nil
	r.sysMsgLocked(fmt.Sprintf("%s disconnected", p.Name))

	for _, q := range r.players {
		if q.Connected {
			r.broadcastLocked()
			return false
		}
	}
	return true
}

// Close releases the room's pending timer. Called by the registry on removal.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearTurnLocked()
}

// --- turn deadline bookkeeping and enforcement ---

func (r *Room) clearTurnLocked() {
	r.turnEpoch++
	r.deadline = nil
	if r.pendingTimer != 0 && r.timers != nil {
		r.timers.RemoveTimer(r.pendingTimer)
	}
	r.pendingTimer = 0
}

// scheduleTurnLocked stores the advisory deadline for the turn holder and
// arms the enforcement callback. The epoch ties the callback to exactly
// this turn.
func (r *Room) scheduleTurnLocked() {
	r.clearTurnLocked()
	if r.round == nil || r.finished {
		return
	}

	var kind string
	var holder string
	var secs int
	switch r.round.Phase {
	case game.PhaseBidding:
		id, ok := r.round.CurrentBidderID()
		if !ok {
			return
		}
		kind, holder, secs = "bid", id, r.settings.BidSeconds
	case game.PhasePlaying:
		id, ok := r.round.CurrentPlayerID()
		if !ok {
			return
		}
		kind, holder, secs = "play", id, r.settings.PlaySeconds
	default:
		return
	}

	r.deadline = &models.TurnDeadline{
		Type:     kind,
		For:      holder,
		Deadline: time.Now().Add(time.Duration(secs) * time.Second).UnixMilli(),
	}
	if r.timers != nil {
		epoch := r.turnEpoch
		r.pendingTimer = r.timers.AddTimer(time.Duration(secs)*time.Second, 0, func() {
			r.enforceDeadline(epoch)
		})
	}
}

// enforceDeadline runs on timer expiry, through the same serialized path as
// player actions. A stale epoch means the turn already resolved: the human
// acted first and the callback is a no-op.
func (r *Room) enforceDeadline(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if epoch != r.turnEpoch || r.round == nil || r.finished {
		return
	}

	switch r.round.Phase {
	case game.PhaseBidding:
		id, ok := r.round.CurrentBidderID()
		if !ok {
			return
		}
		bid := r.round.AutoBid(id)
		if err := r.round.HandleBid(id, bid); err != nil {
			logger.Log.Errorf("Room %s auto-bid for %s failed: %v", r.ID, id, err)
			return
		}
		logger.Log.Infof("Room %s auto-bid %d for %s on deadline", r.ID, bid, id)
		r.afterBidLocked()
	case game.PhasePlaying:
		id, ok := r.round.CurrentPlayerID()
		if !ok {
			return
		}
		card, ok := r.round.AutoPlay(id)
		if !ok {
			return
		}
		res, err := r.round.HandlePlay(id, card)
		if err != nil {
			logger.Log.Errorf("Room %s auto-play for %s failed: %v", r.ID, id, err)
			return
		}
		logger.Log.Infof("Room %s auto-played %s for %s on deadline", r.ID, card, id)
		r.afterPlayLocked(res)
	default:
		return
	}
	r.broadcastLocked()
}
