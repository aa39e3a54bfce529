package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/cardroomhq/cardroom/internal/game"
)

// Server accepts WebSocket clients and fans committed table state out to
// them. It implements Notifier: after every transition each connection at
// the table gets its own view, so hole cards only travel to their owner.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	service     *Service
	httpServer  *http.Server
}

// NewServer creates a WebSocket server for the given service.
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetService sets the game service handling client requests.
func (s *Server) SetService(service *Service) {
	s.service = service
}

// Start runs the server until Stop is called or listening fails.
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.logger.Info("starting WebSocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down and closes every connection.
func (s *Server) Stop() error {
	s.cancel()

	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.service)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// TableChanged implements Notifier. Every connection at the table gets
// the view rendered for its own player, plus the valid actions when it is
// that player's turn.
func (s *Server) TableChanged(t *game.Table) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Table() != t.ID {
			continue
		}
		playerID := conn.Player()
		data := TableStateData{View: t.View(playerID)}
		if h := t.Hand; h != nil && !h.Complete {
			if seat := t.SeatByPlayer(playerID); seat != nil && seat.Number == h.ToAct {
				data.ValidActions = validActionInfos(h.ValidActions())
			}
		}

		msg, err := NewMessage(MessageTypeTableState, data)
		if err != nil {
			s.logger.Error("failed to build state message", "error", err)
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("failed to send state", "error", err, "player", playerID)
			continue
		}
		count++
	}

	s.logger.Debug("broadcast table state", "table", t.ID, "recipients", count)
}

// SendToPlayer sends a message to a specific connected player.
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.Player() == playerID {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("player not found: %s", playerID)
}

// ConnectedPlayers returns the authenticated player IDs.
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.Player(); playerID != "" {
			players = append(players, playerID)
		}
	}
	return players
}
