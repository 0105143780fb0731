package ws

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"hilo-casino/internal/game"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer     = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// RoomDirectory resolves rooms for joining players and lists them for discovery.
type RoomDirectory interface {
	Join(roomID, connID, name string, onJoin func(*game.Room, game.Player)) (*game.Room, game.Player, error)
	List() []game.RoomSummary
}

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool

	// owned by the read goroutine
	room     *game.Room
	playerID string
}

func (c *Client) ID() string { return c.id }

// trySend queues msg unless the client is gone or its buffer is full.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		metricWSDropped.Add(1)
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type Server struct {
	rooms    RoomDirectory
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(rooms RoomDirectory, hub *Hub) *Server {
	return &Server{
		rooms:    rooms,
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: "conn_" + ulid.Make().String(), conn: conn, send: make(chan []byte, sendBuffer)}
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)
	log.Debug().Str("conn_id", client.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
		metricWSConnectionsActive.Add(-1)
		log.Debug().Str("conn_id", c.id).Msg("ws_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) dispatch(c *Client, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			c.trySend(errorFrame("unknown_command", "Lệnh không hợp lệ"))
		}
		return
	}
	switch cmd := cmd.(type) {
	case JoinCommand:
		s.handleJoin(c, cmd)
	case ListRoomsCommand:
		c.trySend(roomsFrame(s.rooms.List()))
	case BetCommand:
		if c.room == nil {
			return
		}
		side := game.Side(strings.ToUpper(strings.TrimSpace(cmd.Side)))
		s.reject(c, c.room.PlaceBet(c.playerID, side, cmd.Amount))
	case ChatCommand:
		if c.room == nil {
			return
		}
		s.reject(c, c.room.Chat(c.playerID, cmd.Text))
	case ResetBalanceCommand:
		if c.room == nil {
			return
		}
		s.reject(c, c.room.ResetBalance(c.playerID))
	}
}

// reject reports a validation failure to the sender. Unknown players are ignored.
func (s *Server) reject(c *Client, err error) {
	if err == nil || errors.Is(err, game.ErrUnknownPlayer) {
		return
	}
	c.trySend(errorFrame(game.ErrorCode(err), game.RejectReason(err)))
}

func (s *Server) handleJoin(c *Client, cmd JoinCommand) {
	s.leave(c)
	room, p, err := s.rooms.Join(cmd.RoomID, c.id, cmd.Name, func(room *game.Room, p game.Player) {
		c.trySend(welcomeFrame(room.ID(), p))
		s.hub.Subscribe(room.ID(), c)
	})
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("ws_join_failed")
		c.trySend(errorFrame("join_failed", "Không thể vào phòng"))
		return
	}
	c.room = room
	c.playerID = p.ID
	log.Info().Str("room_id", room.ID()).Str("player_id", p.ID).Str("name", p.Name).Msg("player_joined")
}

func (s *Server) leave(c *Client) {
	if c.room == nil {
		return
	}
	s.hub.Unsubscribe(c.room.ID(), c)
	if c.room.Leave(c.playerID) {
		log.Info().Str("room_id", c.room.ID()).Str("player_id", c.playerID).Msg("player_left")
	}
	c.room = nil
	c.playerID = ""
}

func (s *Server) unregister(c *Client) {
	s.leave(c)
	c.close()
}
