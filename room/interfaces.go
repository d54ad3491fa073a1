package room

import (
	"github.com/sakura-arcade/gameserver/models"
	"github.com/sakura-arcade/gameserver/session"
)

// Sender delivers a payload to a single connection. Implementations must
// not block: a slow peer must never stall a room's serialized mutation
// path. Defined here to break the import cycle with the broadcast package.
type Sender interface {
	Unicast(sess *session.Session, msgID uint16, data []byte)
}

// Archiver records a finished match. Implementations must not block the
// calling room.
type Archiver interface {
	ArchiveMatch(rec *models.MatchRecord)
}
