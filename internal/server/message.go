package server

import (
	"encoding/json"
	"time"

	"github.com/cardroomhq/cardroom/internal/game"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Client to server
	MessageTypeAuth        MessageType = "auth"
	MessageTypeCreateTable MessageType = "create_table"
	MessageTypeJoinTable   MessageType = "join_table"
	MessageTypeLeaveTable  MessageType = "leave_table"
	MessageTypeListTables  MessageType = "list_tables"
	MessageTypeStartTable  MessageType = "start_table"
	MessageTypeStartHand   MessageType = "start_hand"
	MessageTypeAction      MessageType = "action"

	// Server to client
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeTableCreated MessageType = "table_created"
	MessageTypeTableJoined  MessageType = "table_joined"
	MessageTypeTableLeft    MessageType = "table_left"
	MessageTypeTableList    MessageType = "table_list"
	MessageTypeTableState   MessageType = "table_state"
	MessageTypeError        MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every WebSocket frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type AuthData struct {
	PlayerName string `json:"player_name"`
}

type CreateTableData struct {
	SmallBlind int `json:"small_blind"`
	BigBlind   int `json:"big_blind"`
	BuyIn      int `json:"buy_in"`
	MaxPlayers int `json:"max_players"`
}

type JoinTableData struct {
	// Table is a join code or table ID
	Table string `json:"table"`
}

type LeaveTableData struct {
	Table string `json:"table"`
}

type TableRefData struct {
	Table string `json:"table"`
}

type ActionData struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableCreatedData struct {
	TableID string `json:"table_id"`
	Code    string `json:"code"`
}

type TableJoinedData struct {
	TableID string `json:"table_id"`
	Seat    int    `json:"seat"`
}

type TableLeftData struct {
	TableID string `json:"table_id"`
	Chips   int    `json:"chips"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

// TableStateData carries a player-specific view plus the valid actions
// when it is the recipient's turn.
type TableStateData struct {
	View         game.TableView    `json:"view"`
	ValidActions []ValidActionInfo `json:"valid_actions,omitempty"`
}

type ValidActionInfo struct {
	Action string `json:"action"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}

func validActionInfos(actions []game.ValidAction) []ValidActionInfo {
	infos := make([]ValidActionInfo, len(actions))
	for i, va := range actions {
		infos[i] = ValidActionInfo{
			Action: va.Kind.String(),
			Min:    va.Min,
			Max:    va.Max,
		}
	}
	return infos
}
