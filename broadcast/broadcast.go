package broadcast

import (
	"github.com/sakura-arcade/gameserver/session"
)

// AsyncSender delivers payloads to individual connections. Sessions drain
// their own buffered outbound queues, so Unicast never blocks: a slow or
// gone peer loses its own updates and never stalls a room's serialized
// mutation path.
type AsyncSender struct{}

func NewAsyncSender() *AsyncSender {
	return &AsyncSender{}
}

func (b *AsyncSender) Unicast(sess *session.Session, msgID uint16, data []byte) {
	if sess == nil {
		return
	}
	sess.Send(msgID, data)
}
