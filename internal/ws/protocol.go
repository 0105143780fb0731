package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"hilo-casino/internal/game"
)

type CommandType string

const (
	CmdJoin         CommandType = "JOIN"
	CmdBet          CommandType = "BET"
	CmdChat         CommandType = "CHAT"
	CmdResetBalance CommandType = "RESET_BALANCE"
	CmdListRooms    CommandType = "LIST_ROOMS"
)

var (
	ErrMalformed      = errors.New("malformed_message")
	ErrUnknownCommand = errors.New("unknown_command")
)

// Command is one of JoinCommand, BetCommand, ChatCommand, ResetBalanceCommand or ListRoomsCommand.
type Command interface {
	Type() CommandType
}

type JoinCommand struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type BetCommand struct {
	Side   string  `json:"side"`
	Amount float64 `json:"amount"`
}

type ChatCommand struct {
	Text string `json:"text"`
}

type ResetBalanceCommand struct{}

type ListRoomsCommand struct{}

func (JoinCommand) Type() CommandType         { return CmdJoin }
func (BetCommand) Type() CommandType          { return CmdBet }
func (ChatCommand) Type() CommandType         { return CmdChat }
func (ResetBalanceCommand) Type() CommandType { return CmdResetBalance }
func (ListRoomsCommand) Type() CommandType    { return CmdListRooms }

// DecodeCommand parses an inbound frame. Unparseable frames return
// ErrMalformed; well-formed frames with an unknown type return ErrUnknownCommand.
func DecodeCommand(raw []byte) (Command, error) {
	var base struct {
		Type CommandType `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var cmd Command
	switch base.Type {
	case CmdJoin:
		var c JoinCommand
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		cmd = c
	case CmdBet:
		var c BetCommand
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		cmd = c
	case CmdChat:
		var c ChatCommand
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		cmd = c
	case CmdResetBalance:
		cmd = ResetBalanceCommand{}
	case CmdListRooms:
		cmd = ListRoomsCommand{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, base.Type)
	}
	return cmd, nil
}

type WelcomeMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Balance  int64  `json:"balance"`
}

type RoomMessage struct {
	Type     string        `json:"type"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type StateMessage struct {
	Type        string     `json:"type"`
	RoomID      string     `json:"roomId"`
	RoundID     int64      `json:"roundId"`
	State       game.Phase `json:"state"`
	PhaseEndsAt int64      `json:"phaseEndsAt"`
}

type CountdownMessage struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	RoundID     int64  `json:"roundId"`
	RemainingMs int64  `json:"remainingMs"`
}

type ResultMessage struct {
	Type   string      `json:"type"`
	RoomID string      `json:"roomId"`
	Result game.Result `json:"result"`
}

type ChatMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	At       int64  `json:"at"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomsMessage struct {
	Type  string             `json:"type"`
	Rooms []game.RoomSummary `json:"rooms"`
}

// EncodeEvent renders a room event as its outbound frame.
func EncodeEvent(ev game.Event) ([]byte, error) {
	switch e := ev.(type) {
	case game.SnapshotUpdated:
		return json.Marshal(RoomMessage{Type: "ROOM", Snapshot: e.Snapshot})
	case game.PhaseChanged:
		return json.Marshal(StateMessage{
			Type:        "STATE",
			RoomID:      e.RoomID,
			RoundID:     e.RoundID,
			State:       e.Phase,
			PhaseEndsAt: e.EndsAt.UnixMilli(),
		})
	case game.CountdownTick:
		return json.Marshal(CountdownMessage{
			Type:        "COUNTDOWN",
			RoomID:      e.RoomID,
			RoundID:     e.RoundID,
			RemainingMs: e.Remaining.Milliseconds(),
		})
	case game.RoundSettled:
		return json.Marshal(ResultMessage{Type: "RESULT", RoomID: e.RoomID, Result: e.Result})
	case game.ChatPosted:
		return json.Marshal(ChatMessage{
			Type:     "CHAT",
			RoomID:   e.RoomID,
			PlayerID: e.PlayerID,
			Name:     e.Name,
			Text:     e.Text,
			At:       e.At.UnixMilli(),
		})
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}

func welcomeFrame(roomID string, p game.Player) []byte {
	msg, _ := json.Marshal(WelcomeMessage{
		Type:     "WELCOME",
		PlayerID: p.ID,
		RoomID:   roomID,
		Name:     p.Name,
		Balance:  p.Balance,
	})
	return msg
}

func errorFrame(code, message string) []byte {
	msg, _ := json.Marshal(ErrorMessage{Type: "ERR", Code: code, Message: message})
	return msg
}

func roomsFrame(rooms []game.RoomSummary) []byte {
	if rooms == nil {
		rooms = []game.RoomSummary{}
	}
	msg, _ := json.Marshal(RoomsMessage{Type: "ROOMS", Rooms: rooms})
	return msg
}
