package network

// Message IDs of the framed wire protocol. 1xx are inbound player actions,
// 3xx are outbound server messages.
const (
	MsgTypeHeartbeat = 1

	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeStartGame  = 103
	MsgTypeBid        = 104
	MsgTypePlayCard   = 105
	MsgTypeAdminOp    = 106
	MsgTypeSettings   = 107
	MsgTypeSetGame    = 108
	MsgTypeRename     = 109
	MsgTypeAvatar     = 110
	MsgTypeChat       = 111
	MsgTypeReactChat  = 112
	MsgTypeReactTrick = 113

	MsgTypeRoomCreated = 301
	MsgTypeRoomState   = 302
	MsgTypeError       = 303
)
