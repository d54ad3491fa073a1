package models

import (
	"time"

	"github.com/sakura-arcade/gameserver/game"
)

// PlayerInfo is the public view of a seated player.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Connected bool   `json:"connected"`
	SeatIndex int    `json:"seatIndex"`
}

// TurnDeadline is the advisory deadline of the turn in progress. Clients
// render a countdown from it; enforcement happens server-side.
type TurnDeadline struct {
	Type     string `json:"type"` // "bid" or "play"
	For      string `json:"for"`
	Deadline int64  `json:"deadline"` // unix milliseconds
}

// ChatMessage is pass-through chat storage; the server applies no rules to
// it beyond the rolling cap.
type ChatMessage struct {
	ID        string                     `json:"id"`
	Ts        int64                      `json:"ts"`
	PlayerID  string                     `json:"playerId,omitempty"`
	Name      string                     `json:"name,omitempty"`
	Text      string                     `json:"text"`
	Sys       bool                       `json:"sys,omitempty"`
	Reactions map[string]map[string]bool `json:"reactions,omitempty"` // emoji -> playerID
}

// RoomSnapshot is one player's filtered view of a room. Hand is populated
// for the requesting player only; everyone else appears in HandsCount.
type RoomSnapshot struct {
	ID       string         `json:"id"`
	AdminID  string         `json:"adminId"`
	Locked   bool           `json:"locked"`
	Settings interface{}    `json:"settings"`
	GameKey  string         `json:"gameKey"`
	GameName string         `json:"gameName"`
	Players  []PlayerInfo   `json:"players"`

	DealerIndex int    `json:"dealerIndex"`
	RoundIndex  int    `json:"roundIndex"`
	RoundSize   int    `json:"roundSize"`
	RoundSizes  []int  `json:"roundSizes"`
	Phase       string `json:"phase"`
	Trump       string `json:"trump"`

	Bids       map[string]int      `json:"bids"`
	TricksWon  map[string]int      `json:"tricksWon"`
	HandsCount map[string]int      `json:"handsCount"`
	Scores     map[string]int      `json:"scores"`
	History    []game.HistoryEntry `json:"history"`

	TurnOrder    []string         `json:"turnOrder"`
	CurrentTurn  string           `json:"currentTurn"`
	CurrentTrick []game.TrickPlay `json:"currentTrick"`
	LeadSuit     string           `json:"leadSuit,omitempty"`

	Me   string      `json:"me"`
	Hand []game.Card `json:"hand,omitempty"`

	Timers *TurnDeadline `json:"timers,omitempty"`

	Chat           []ChatMessage                         `json:"chat"`
	TrickReactions map[string]map[string]map[string]bool `json:"trickReactions"`
}

// MatchRecord is the archive row written once when a game finishes. Live
// game state is never persisted; a process restart loses all rooms.
type MatchRecord struct {
	RoomID     string              `json:"room_id"`
	GameKey    string              `json:"game_key"`
	Players    []PlayerInfo        `json:"players"`
	Scores     map[string]int      `json:"scores"`
	History    []game.HistoryEntry `json:"history"`
	FinishedAt time.Time           `json:"finished_at"`
}
