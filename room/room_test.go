package room

import (
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/sakura-arcade/gameserver/game"
	"github.com/sakura-arcade/gameserver/network"
	"github.com/sakura-arcade/gameserver/session"
)

// MockSender is a test double for the Sender interface.
type MockSender struct{}

func (m *MockSender) Unicast(sess *session.Session, msgID uint16, data []byte) {}

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func newTestSession(id string) *session.Session {
	return session.NewSession(id, &MockConnection{})
}

// newTestRoom creates a room with n seated players p0..p(n-1); p0 is admin.
func newTestRoom(t *testing.T, n int) *Room {
	t.Helper()
	r := NewRoom("test_room", newTestSession("p0"), "Alice", DefaultSettings(), &MockSender{}, nil, nil)
	for i := 1; i < n; i++ {
		if err := r.Join(newTestSession(fmt.Sprintf("p%d", i)), fmt.Sprintf("Player%d", i)); err != nil {
			t.Fatalf("Join p%d failed: %v", i, err)
		}
	}
	return r
}

func TestManager_CreateAndGetRoom(t *testing.T) {
	manager := NewManager(&MockSender{}, nil, nil, DefaultSettings())

	r := manager.CreateRoom(newTestSession("p0"), "Alice")
	if r == nil {
		t.Fatal("CreateRoom should not return nil")
	}
	if len(r.ID) != 8 {
		t.Errorf("Expected an 8-char room id, got %q", r.ID)
	}

	retrieved, exists := manager.GetRoom(r.ID)
	if !exists {
		t.Fatal("GetRoom should find the created room")
	}
	if retrieved != r {
		t.Error("GetRoom should return the same room instance")
	}

	// Room ids match case-insensitively.
	upper, exists := manager.GetRoom(strings.ToUpper(r.ID))
	if !exists || upper != r {
		t.Error("GetRoom should match ids case-insensitively")
	}

	manager.RemoveRoom(r.ID)
	if _, exists := manager.GetRoom(r.ID); exists {
		t.Error("Removed room should not be found")
	}
}

func TestManager_RemovesRoomWhenLastPlayerDisconnects(t *testing.T) {
	manager := NewManager(&MockSender{}, nil, nil, DefaultSettings())
	sess := newTestSession("p0")
	r := manager.CreateRoom(sess, "Alice")

	manager.HandleDisconnect(sess)
	if _, exists := manager.GetRoom(r.ID); exists {
		t.Error("Room should be removed when its last player disconnects")
	}
}

func TestRoom_JoinLockedAndStarted(t *testing.T) {
	r := newTestRoom(t, 3)

	r.locked = true
	if err := r.Join(newTestSession("late"), "Late"); game.KindOf(err) != game.RejectRule {
		t.Errorf("Joining a locked room should be rejected, got %v", err)
	}
	r.locked = false

	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Join(newTestSession("late"), "Late"); game.KindOf(err) != game.RejectPhase {
		t.Errorf("Joining a started game should be a phase rejection, got %v", err)
	}
}

func TestRoom_StartPlayerCountGate(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.Start("p0"); game.KindOf(err) != game.RejectRule {
		t.Errorf("Starting with 2 players should be rejected, got %v", err)
	}

	r = newTestRoom(t, 7)
	if err := r.Start("p0"); game.KindOf(err) != game.RejectRule {
		t.Errorf("Starting with 7 players should be rejected, got %v", err)
	}

	r = newTestRoom(t, 3)
	if err := r.Start("p0"); err != nil {
		t.Errorf("Starting with 3 players should succeed, got %v", err)
	}
}

func TestRoom_StartRequiresMembership(t *testing.T) {
	r := newTestRoom(t, 4)
	if err := r.Start("stranger"); game.KindOf(err) != game.RejectAuth {
		t.Errorf("Non-member start should be an auth rejection, got %v", err)
	}
}

func TestRoom_AdminOnlyOps(t *testing.T) {
	r := newTestRoom(t, 3)

	if err := r.Admin("p1", "lock", ""); game.KindOf(err) != game.RejectAuth {
		t.Errorf("Non-admin lock should be rejected, got %v", err)
	}
	if err := r.Admin("p0", "lock", ""); err != nil {
		t.Errorf("Admin lock failed: %v", err)
	}
	if !r.locked {
		t.Error("Room should be locked")
	}

	if err := r.SetVariant("p1", game.VariantTrickHigh); game.KindOf(err) != game.RejectAuth {
		t.Errorf("Non-admin variant change should be rejected, got %v", err)
	}
	if err := r.SetVariant("p0", game.VariantTrickHigh); err != nil {
		t.Errorf("Admin variant change failed: %v", err)
	}
	if err := r.SetVariant("p0", game.Variant("poker")); game.KindOf(err) != game.RejectProtocol {
		t.Errorf("Unknown variant should be rejected, got %v", err)
	}

	secs := 999
	if err := r.UpdateSettings("p0", SettingsPatch{BidSeconds: &secs}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if r.settings.BidSeconds != 120 {
		t.Errorf("BidSeconds should clamp to 120, got %d", r.settings.BidSeconds)
	}
}

func TestRoom_Kick(t *testing.T) {
	r := newTestRoom(t, 4)

	if err := r.Admin("p0", "kick", "p2"); err != nil {
		t.Fatalf("Kick failed: %v", err)
	}
	if len(r.players) != 3 {
		t.Fatalf("Expected 3 players after kick, got %d", len(r.players))
	}
	if r.memberLocked("p2") != nil {
		t.Error("Kicked player should be gone")
	}
	// Seats are reindexed to stay contiguous.
	for i, p := range r.players {
		if p.SeatIndex != i {
			t.Errorf("Seat %d holds index %d after kick", i, p.SeatIndex)
		}
	}
	if _, ok := r.scores["p2"]; ok {
		t.Error("Kicked player's score entry should be removed")
	}
}

func TestRoom_RematchRevalidatesPlayerCount(t *testing.T) {
	r := newTestRoom(t, 3)
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Admin("p0", "kick", "p2"); err != nil {
		t.Fatalf("Kick failed: %v", err)
	}
	if err := r.Admin("p0", "rematch", ""); game.KindOf(err) != game.RejectRule {
		t.Errorf("Rematch with 2 players should be rejected, got %v", err)
	}
}

func TestRoom_VariantLockedDuringGame(t *testing.T) {
	r := newTestRoom(t, 3)
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.SetVariant("p0", game.VariantTrickHigh); game.KindOf(err) != game.RejectPhase {
		t.Errorf("Variant change mid-game should be a phase rejection, got %v", err)
	}
}

func TestRoom_SnapshotHidesOtherHands(t *testing.T) {
	r := newTestRoom(t, 4)
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	snap := r.Snapshot("p1")
	if snap.Me != "p1" {
		t.Errorf("Snapshot viewer should be p1, got %s", snap.Me)
	}
	if len(snap.Hand) != 7 {
		t.Errorf("Viewer should see their 7 cards, got %d", len(snap.Hand))
	}
	for id, count := range snap.HandsCount {
		if count != 7 {
			t.Errorf("HandsCount[%s] = %d, want 7", id, count)
		}
	}
	// The confidentiality invariant: the snapshot carries exactly one hand.
	if snap.Phase != string(game.PhaseBidding) {
		t.Errorf("Expected bidding phase, got %s", snap.Phase)
	}
	if snap.Timers == nil || snap.Timers.Type != "bid" {
		t.Error("Snapshot should carry the advisory bid deadline")
	}
	if snap.Timers != nil && snap.Timers.For != snap.CurrentTurn {
		t.Error("Deadline holder should match the current turn")
	}
}

// playOutRound drives the current round to completion with auto-selected
// legal cards.
func playOutRound(t *testing.T, r *Room) {
	t.Helper()
	start := r.roundIndex
	for r.roundIndex == start && !r.finished {
		id, ok := r.round.CurrentPlayerID()
		if !ok {
			t.Fatal("No current player while round in progress")
		}
		card, ok := r.round.AutoPlay(id)
		if !ok {
			t.Fatalf("Player %s has no card to play", id)
		}
		if err := r.Play(id, card); err != nil {
			t.Fatalf("Play %s by %s failed: %v", card, id, err)
		}
	}
}

func TestRoom_EndToEndFirstTwoRounds(t *testing.T) {
	r := newTestRoom(t, 4)
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Round 1: 7 cards each, trump H, dealer is seat 0 so p1 bids first.
	if r.round.Size != 7 {
		t.Fatalf("Round 1 should deal 7 cards, got %d", r.round.Size)
	}
	if r.round.Trump != "H" {
		t.Errorf("Round 1 trump should be H, got %s", r.round.Trump)
	}

	for _, b := range []struct {
		id  string
		bid int
	}{{"p1", 2}, {"p2", 1}, {"p3", 1}} {
		if err := r.Bid(b.id, b.bid); err != nil {
			t.Fatalf("Bid by %s failed: %v", b.id, err)
		}
	}
	// Dealer p0 bids last; 2+1+1+3 == 7 violates the dealer constraint.
	if err := r.Bid("p0", 3); game.KindOf(err) != game.RejectRule {
		t.Fatalf("Dealer bid of 3 should be rejected, got %v", err)
	}
	if err := r.Bid("p0", 2); err != nil {
		t.Fatalf("Dealer bid of 2 should be accepted: %v", err)
	}
	if r.round.Phase != game.PhasePlaying {
		t.Fatalf("Bidding complete should enter playing, got %s", r.round.Phase)
	}

	playOutRound(t, r)

	if len(r.history) != 1 {
		t.Fatalf("History should gain exactly one entry, got %d", len(r.history))
	}
	entry := r.history[0]
	if entry.Round != 1 || entry.Cards != 7 || entry.Trump != "H" {
		t.Errorf("Unexpected history entry: %+v", entry)
	}
	total := 0
	for _, won := range entry.Won {
		total += won
	}
	if total != 7 {
		t.Errorf("Tricks won should sum to 7, got %d", total)
	}

	// Round 2: dealer advanced one seat, 6 cards, next trump in the cycle.
	if r.dealerIndex != 1 {
		t.Errorf("Dealer seat should advance to 1, got %d", r.dealerIndex)
	}
	if r.round.Size != 6 {
		t.Errorf("Round 2 should deal 6 cards, got %d", r.round.Size)
	}
	if r.round.Trump != "C" {
		t.Errorf("Round 2 trump should be C, got %s", r.round.Trump)
	}
	if r.round.Phase != game.PhaseBidding {
		t.Errorf("Round 2 should open with bidding, got %s", r.round.Phase)
	}
}

func TestRoom_FullGameFinishes(t *testing.T) {
	r := newTestRoom(t, 3)
	r.variant = game.VariantTrickHigh // no bidding, rounds play straight through
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for !r.finished {
		playOutRound(t, r)
	}

	if len(r.history) != len(game.RoundSizes) {
		t.Errorf("Expected %d history entries, got %d", len(game.RoundSizes), len(r.history))
	}
	if r.phaseLocked() != game.PhaseFinished {
		t.Errorf("Expected finished phase, got %s", r.phaseLocked())
	}
	// TrickHigh: every score equals total tricks won across rounds, and
	// scores only ever grow.
	for id, score := range r.scores {
		if score < 0 {
			t.Errorf("Score for %s should be non-negative, got %d", id, score)
		}
	}

	// Post-game actions are rejected, then reset restores the lobby.
	if err := r.Bid("p0", 0); game.KindOf(err) != game.RejectPhase {
		t.Errorf("Bid after game end should be a phase rejection, got %v", err)
	}
	if err := r.Admin("p0", "newgame", ""); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if r.phaseLocked() != game.PhaseLobby {
		t.Errorf("Reset should restore the lobby, got %s", r.phaseLocked())
	}
	for id, score := range r.scores {
		if score != 0 {
			t.Errorf("Reset should zero scores, %s has %d", id, score)
		}
	}
}

func TestRoom_ChatAndReactions(t *testing.T) {
	r := newTestRoom(t, 3)

	if err := r.Chat("stranger", "hi"); game.KindOf(err) != game.RejectAuth {
		t.Errorf("Non-member chat should be rejected, got %v", err)
	}
	if err := r.Chat("p1", "hello table"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var msgID string
	for _, m := range r.chat {
		if !m.Sys {
			msgID = m.ID
		}
	}
	if msgID == "" {
		t.Fatal("Chat message not stored")
	}

	if err := r.ReactChat("p2", msgID, "🔥"); err != nil {
		t.Fatalf("ReactChat failed: %v", err)
	}
	// Toggling twice removes the reaction again.
	if err := r.ReactChat("p2", msgID, "🔥"); err != nil {
		t.Fatalf("ReactChat toggle failed: %v", err)
	}
	for _, m := range r.chat {
		if m.ID == msgID && len(m.Reactions["🔥"]) != 0 {
			t.Error("Second reaction should toggle the first off")
		}
	}

	off := false
	if err := r.UpdateSettings("p0", SettingsPatch{ChatEnabled: &off}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if err := r.Chat("p1", "anyone?"); game.KindOf(err) != game.RejectRule {
		t.Errorf("Chat while disabled should be rejected, got %v", err)
	}
}

func TestRoom_DeadlineEnforcement(t *testing.T) {
	r := newTestRoom(t, 3)
	if err := r.Start("p0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	epoch := r.turnEpoch
	bidder, _ := r.round.CurrentBidderID()

	// A stale epoch is a no-op: the human already acted.
	r.enforceDeadline(epoch - 1)
	if _, ok := r.round.Bids[bidder]; ok {
		t.Fatal("Stale deadline must not act")
	}

	// The live epoch auto-bids for the turn holder.
	r.enforceDeadline(epoch)
	if bid, ok := r.round.Bids[bidder]; !ok || bid != 0 {
		t.Fatalf("Deadline should auto-bid 0 for %s, got %v", bidder, r.round.Bids)
	}
	if next, _ := r.round.CurrentBidderID(); next == bidder {
		t.Error("Auto-bid should advance the turn")
	}
}
