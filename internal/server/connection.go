package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/cardroomhq/cardroom/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client. Reads are handled on readPump,
// writes are funneled through the send channel to writePump.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	tableID   string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *Service
}

// NewConnection creates a connection wrapper around an upgraded socket.
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *Service) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.Player())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player.
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// Player returns the associated player ID.
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetTable associates this connection with a table.
func (c *Connection) SetTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

// Table returns the associated table ID.
func (c *Connection) Table() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateTable:
		var data CreateTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse create table data")
			return
		}
		c.handleCreateTable(data)

	case MessageTypeJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join table data")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeLeaveTable:
		var data LeaveTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse leave table data")
			return
		}
		c.handleLeaveTable(data)

	case MessageTypeListTables:
		c.handleListTables()

	case MessageTypeStartTable, MessageTypeStartHand:
		var data TableRefData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse table reference")
			return
		}
		c.handleStart(msg.Type, data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse action data")
			return
		}
		c.handleAction(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

// authed resolves the player and the table reference, complaining to the
// client when either is missing.
func (c *Connection) authed(ref string) (playerID, tableID string, ok bool) {
	playerID = c.Player()
	if playerID == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return "", "", false
	}
	if ref == "" {
		ref = c.Table()
	}
	tableID, err := c.service.ResolveTable(ref)
	if err != nil {
		c.sendError("table_not_found", "no table "+ref)
		return "", "", false
	}
	return playerID, tableID, true
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "player name required")
		return
	}

	c.SetPlayer(data.PlayerName)
	c.logger.Info("player authenticated", "player", data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateTable(data CreateTableData) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}

	view, err := c.service.CreateTable(game.Settings{
		SmallBlind: data.SmallBlind,
		BigBlind:   data.BigBlind,
		BuyIn:      data.BuyIn,
		MaxPlayers: data.MaxPlayers,
	})
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeTableCreated, TableCreatedData{
		TableID: view.TableID,
		Code:    view.Code,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	playerID, tableID, ok := c.authed(data.Table)
	if !ok {
		return
	}

	seat, err := c.service.JoinTable(tableID, playerID, playerID)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.SetTable(tableID)

	response, _ := NewMessage(MessageTypeTableJoined, TableJoinedData{
		TableID: tableID,
		Seat:    seat,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveTable(data LeaveTableData) {
	playerID, tableID, ok := c.authed(data.Table)
	if !ok {
		return
	}

	chips, err := c.service.LeaveTable(tableID, playerID)
	if err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.SetTable("")

	response, _ := NewMessage(MessageTypeTableLeft, TableLeftData{
		TableID: tableID,
		Chips:   chips,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListTables() {
	response, _ := NewMessage(MessageTypeTableList, TableListData{
		Tables: c.service.ListTables(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStart(kind MessageType, data TableRefData) {
	_, tableID, ok := c.authed(data.Table)
	if !ok {
		return
	}

	var err error
	if kind == MessageTypeStartTable {
		err = c.service.StartTable(tableID)
	} else {
		err = c.service.StartHand(tableID)
	}
	if err != nil {
		c.sendError("start_failed", err.Error())
	}
	// State goes out through the notifier broadcast
}

func (c *Connection) handleAction(data ActionData) {
	playerID, tableID, ok := c.authed(data.Table)
	if !ok {
		return
	}

	kind, err := game.ParseActionKind(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}

	if err := c.service.SubmitAction(tableID, playerID, kind, data.Amount); err != nil {
		c.sendError("action_failed", err.Error())
	}
}
