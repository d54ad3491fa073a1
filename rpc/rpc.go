package rpc

import (
	"net"
	"net/rpc"

	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/services"
)

// Server manages the ops RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// MatchQueryService exposes archive queries over net/rpc for ops tooling.
type MatchQueryService struct {
	matchService *services.MatchService
}

func NewMatchQueryService(ms *services.MatchService) *MatchQueryService {
	return &MatchQueryService{matchService: ms}
}

type GetPlayerRecordArgs struct {
	PlayerID string
}

type GetPlayerRecordReply struct {
	Data map[string]interface{}
}

func (qs *MatchQueryService) GetPlayerRecord(args *GetPlayerRecordArgs, reply *GetPlayerRecordReply) error {
	data, err := qs.matchService.PlayerRecord(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Data = data
	return nil
}
