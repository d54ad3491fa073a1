package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sakura-arcade/gameserver/broadcast"
	"github.com/sakura-arcade/gameserver/game"
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/monitor"
	"github.com/sakura-arcade/gameserver/network"
	"github.com/sakura-arcade/gameserver/room"
	gameserverrpc "github.com/sakura-arcade/gameserver/rpc"
	"github.com/sakura-arcade/gameserver/services"
	"github.com/sakura-arcade/gameserver/session"
	"github.com/sakura-arcade/gameserver/timer"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	matchService   *services.MatchService
	monitor        *monitor.Monitor
	rpcServer      *gameserverrpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, matchService *services.MatchService, mon *monitor.Monitor, defaults room.Settings) *GameServer {
	s := &GameServer{
		addr:           addr,
		sessionManager: session.NewManager(),
		matchService:   matchService,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.roomManager = room.NewManager(broadcast.NewAsyncSender(), timer.NewManager(), matchService, defaults)

	rpcServer, err := gameserverrpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(gameserverrpc.NewMatchQueryService(matchService))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.sessionManager.Remove(sess.GetID())
		s.roomManager.HandleDisconnect(sess)
		s.monitor.SetActiveRooms(s.roomManager.Count())
		sess.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// Inbound payload shapes. Each action is attributed to the session that
// sent it; clients never name themselves.
type joinRoomReq struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type createRoomReq struct {
	Name string `json:"name"`
}

type bidReq struct {
	Bid int `json:"bid"`
}

type playReq struct {
	Card string `json:"card"`
}

type adminReq struct {
	Op       string `json:"op"`
	PlayerID string `json:"playerId"`
}

type setGameReq struct {
	GameKey string `json:"gameKey"`
}

type renameReq struct {
	NewName string `json:"newName"`
}

type avatarReq struct {
	Emoji string `json:"emoji"`
}

type chatReq struct {
	Text string `json:"text"`
}

type reactChatReq struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type reactTrickReq struct {
	Index string `json:"index"`
	Emoji string `json:"emoji"`
}

type createdResp struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type errorResp struct {
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
}

// handlePacket routes one inbound action. A panic anywhere below is caught
// here so a malformed action or internal bug can never take down other
// rooms' processing.
func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.monitor.IncActionsReceived()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic handling message %d from session %s: %v", packet.MsgID, sess.GetID(), r)
		}
		s.monitor.ObserveActionLatency(time.Since(start))
	}()

	var err error
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
		return
	case network.MsgTypeCreateRoom:
		err = s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		err = s.handleJoinRoom(sess, packet)
	case network.MsgTypeStartGame:
		err = s.withRoom(sess, func(r *room.Room) error { return r.Start(sess.GetID()) })
	case network.MsgTypeBid:
		var req bidReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.Bid(sess.GetID(), req.Bid) })
		}
	case network.MsgTypePlayCard:
		var req playReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.Play(sess.GetID(), game.Card(req.Card)) })
		}
	case network.MsgTypeAdminOp:
		var req adminReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.Admin(sess.GetID(), req.Op, req.PlayerID) })
		}
	case network.MsgTypeSettings:
		var req room.SettingsPatch
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.UpdateSettings(sess.GetID(), req) })
		}
	case network.MsgTypeSetGame:
		var req setGameReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.SetVariant(sess.GetID(), game.Variant(req.GameKey)) })
		}
	case network.MsgTypeRename:
		var req renameReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.Rename(sess.GetID(), req.NewName) })
		}
	case network.MsgTypeAvatar:
		var req avatarReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.SetAvatar(sess.GetID(), req.Emoji) })
		}
	case network.MsgTypeChat:
		var req chatReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.Chat(sess.GetID(), req.Text) })
		}
	case network.MsgTypeReactChat:
		var req reactChatReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.ReactChat(sess.GetID(), req.MessageID, req.Emoji) })
		}
	case network.MsgTypeReactTrick:
		var req reactTrickReq
		if err = decode(packet.Data, &req); err == nil {
			err = s.withRoom(sess, func(r *room.Room) error { return r.ReactTrick(sess.GetID(), req.Index, req.Emoji) })
		}
	default:
		logger.Log.Infof("Unknown message type %d from session %s", packet.MsgID, sess.GetID())
		return
	}

	if err != nil {
		s.sendError(sess, err)
	}
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return game.ProtocolErr("malformed payload")
	}
	return nil
}

// withRoom resolves the session's room and runs fn against it.
func (s *GameServer) withRoom(sess *session.Session, fn func(r *room.Room) error) error {
	roomID := sess.Room()
	if roomID == "" {
		return game.PhaseErr("not in a room")
	}
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return game.ProtocolErr("room not found")
	}
	return fn(r)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) error {
	if sess.Room() != "" {
		return game.ProtocolErr("already in a room")
	}
	var req createRoomReq
	if err := decode(packet.Data, &req); err != nil {
		return err
	}

	r := s.roomManager.CreateRoom(sess, req.Name)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.ID)

	data, _ := json.Marshal(createdResp{RoomID: r.ID, PlayerID: sess.GetID()})
	sess.Send(network.MsgTypeRoomCreated, data)

	snap, _ := json.Marshal(r.Snapshot(sess.GetID()))
	sess.Send(network.MsgTypeRoomState, snap)
	return nil
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) error {
	if sess.Room() != "" {
		return game.ProtocolErr("already in a room")
	}
	var req joinRoomReq
	if err := decode(packet.Data, &req); err != nil {
		return err
	}

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		return game.ProtocolErr("room not found")
	}
	if err := r.Join(sess, req.Name); err != nil {
		return err
	}
	logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.ID)
	return nil
}

// sendError reports a rejection to the acting connection only; no other
// player sees anything.
func (s *GameServer) sendError(sess *session.Session, err error) {
	kind := game.KindOf(err)
	s.monitor.IncActionsRejected(string(kind))
	data, _ := json.Marshal(errorResp{Kind: string(kind), Msg: err.Error()})
	sess.Send(network.MsgTypeError, data)
}
