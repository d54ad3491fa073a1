package room

import (
	"github.com/sakura-arcade/gameserver/session"
)

const defaultAvatar = "🌸"

// Player is one seat in a room. The id is the session id of the connection
// that joined; the seat index is fixed at join and never changes while the
// player remains seated.
type Player struct {
	ID        string
	Name      string
	Avatar    string
	SeatIndex int
	Connected bool
	Session   *session.Session
}

// Settings are the per-room knobs an admin may change. Turn durations are
// clamped to 5–120 seconds.
type Settings struct {
	BidSeconds       int  `json:"bidSeconds"`
	PlaySeconds      int  `json:"playSeconds"`
	Sounds           bool `json:"sounds"`
	ChatEnabled      bool `json:"chatEnabled"`
	ReactionsEnabled bool `json:"reactionsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		BidSeconds:       25,
		PlaySeconds:      35,
		Sounds:           true,
		ChatEnabled:      true,
		ReactionsEnabled: true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	BidSeconds       *int  `json:"bidSeconds"`
	PlaySeconds      *int  `json:"playSeconds"`
	Sounds           *bool `json:"sounds"`
	ChatEnabled      *bool `json:"chatEnabled"`
	ReactionsEnabled *bool `json:"reactionsEnabled"`
}

func clampSeconds(v int) int {
	if v < 5 {
		return 5
	}
	if v > 120 {
		return 120
	}
	return v
}

func (s *Settings) apply(p SettingsPatch) {
	if p.BidSeconds != nil {
		s.BidSeconds = clampSeconds(*p.BidSeconds)
	}
	if p.PlaySeconds != nil {
		s.PlaySeconds = clampSeconds(*p.PlaySeconds)
	}
	if p.Sounds != nil {
		s.Sounds = *p.Sounds
	}
	if p.ChatEnabled != nil {
		s.ChatEnabled = *p.ChatEnabled
	}
	if p.ReactionsEnabled != nil {
		s.ReactionsEnabled = *p.ReactionsEnabled
	}
}
