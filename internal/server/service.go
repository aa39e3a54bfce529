package server

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroomhq/cardroom/internal/game"
)

// DefaultActionTimeout is how long the seat to act may think before the
// engine acts for them.
const DefaultActionTimeout = 30 * time.Second

// errStaleTimer marks a timeout that fired for a turn that has already
// moved on. It never leaves the service.
var errStaleTimer = errors.New("stale action timer")

// Service owns every table and serializes all access to each one. Per
// table there is a single runner goroutine that applies transitions one
// at a time; callers submit closures and wait for the result, so no two
// operations ever interleave on the same table while independent tables
// progress concurrently.
type Service struct {
	store         Store
	notifier      Notifier
	logger        *log.Logger
	clock         quartz.Clock
	rng           *rand.Rand
	actionTimeout time.Duration

	mu      sync.Mutex
	runners map[string]*tableRunner
	codes   map[string]string // join code -> table ID
	closed  bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the clock used for action timeouts.
func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRNG seeds the per-table shuffle sources for deterministic tests.
func WithRNG(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithActionTimeout overrides the per-turn action timeout.
func WithActionTimeout(d time.Duration) Option {
	return func(s *Service) { s.actionTimeout = d }
}

// WithNotifier sets the notifier told about committed transitions.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a game service backed by the given store.
func NewService(store Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:         store,
		notifier:      NopNotifier{},
		logger:        logger.WithPrefix("service"),
		clock:         quartz.NewReal(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		actionTimeout: DefaultActionTimeout,
		runners:       make(map[string]*tableRunner),
		codes:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops every table runner. In-flight commands finish first.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, r := range s.runners {
		close(r.done)
	}
}

// CreateTable creates a table and starts its runner.
func (s *Service) CreateTable(settings game.Settings) (game.TableView, error) {
	t, err := game.NewTable(settings)
	if err != nil {
		return game.TableView{}, err
	}
	if err := s.store.SaveTable(t); err != nil {
		return game.TableView{}, fmt.Errorf("%w: %v", ErrStatePersistence, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return game.TableView{}, errors.New("service is closed")
	}
	s.startRunnerLocked(t)
	s.mu.Unlock()

	s.logger.Info("table created", "table", t.ID, "code", t.Code,
		"blinds", fmt.Sprintf("%d/%d", settings.SmallBlind, settings.BigBlind))
	return t.View(""), nil
}

// ResolveTable maps a join code or table ID to a table ID.
func (s *Service) ResolveTable(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.codes[ref]; ok {
		return id, nil
	}
	if _, ok := s.runners[ref]; ok {
		return ref, nil
	}
	if _, err := s.store.LoadTable(ref); err == nil {
		return ref, nil
	}
	return "", ErrTableNotFound
}

// JoinTable seats a player and returns their seat number.
func (s *Service) JoinTable(tableID, playerID, name string) (int, error) {
	var seatNum int
	err := s.do(tableID, func(t *game.Table, _ *rand.Rand) error {
		seat, err := t.AddSeat(playerID, name)
		if err != nil {
			return err
		}
		seatNum = seat.Number
		return nil
	})
	return seatNum, err
}

// LeaveTable removes a player's seat and returns their chips. A seat
// still in a live hand cannot leave.
func (s *Service) LeaveTable(tableID, playerID string) (int, error) {
	var chips int
	err := s.do(tableID, func(t *game.Table, _ *rand.Rand) error {
		seat := t.SeatByPlayer(playerID)
		if seat == nil {
			return fmt.Errorf("player %s is not seated", playerID)
		}
		c, err := t.RemoveSeat(seat.Number)
		if err != nil {
			return err
		}
		chips = c
		return nil
	})
	return chips, err
}

// StartTable moves a waiting table in progress and deals the first hand.
func (s *Service) StartTable(tableID string) error {
	return s.do(tableID, func(t *game.Table, rng *rand.Rand) error {
		if err := t.Start(); err != nil {
			return err
		}
		return t.StartHand(rng)
	})
}

// StartHand deals the next hand on a running table.
func (s *Service) StartHand(tableID string) error {
	return s.do(tableID, func(t *game.Table, rng *rand.Rand) error {
		return t.StartHand(rng)
	})
}

// PauseTable suspends dealing between hands.
func (s *Service) PauseTable(tableID string) error {
	return s.do(tableID, func(t *game.Table, _ *rand.Rand) error {
		return t.Pause()
	})
}

// ResumeTable continues a paused table.
func (s *Service) ResumeTable(tableID string) error {
	return s.do(tableID, func(t *game.Table, _ *rand.Rand) error {
		return t.Resume()
	})
}

// SubmitAction applies a player's action to the running hand.
func (s *Service) SubmitAction(tableID, playerID string, kind game.ActionKind, amount int) error {
	return s.do(tableID, func(t *game.Table, _ *rand.Rand) error {
		seat := t.SeatByPlayer(playerID)
		if seat == nil {
			return fmt.Errorf("%w: player %s is not seated", game.ErrInvalidAction, playerID)
		}
		if t.Hand == nil {
			return fmt.Errorf("%w: no hand in progress", game.ErrInvalidAction)
		}
		return t.Hand.Apply(game.Action{Seat: seat.Number, Kind: kind, Amount: amount})
	})
}

// View renders the table as seen by one player. An empty playerID gives
// the public view.
func (s *Service) View(tableID, playerID string) (game.TableView, error) {
	var view game.TableView
	err := s.read(tableID, func(t *game.Table) {
		view = t.View(playerID)
	})
	return view, err
}

// ValidActions returns the legal actions for the given player, or nil
// when it is not their turn.
func (s *Service) ValidActions(tableID, playerID string) ([]game.ValidAction, error) {
	var actions []game.ValidAction
	err := s.read(tableID, func(t *game.Table) {
		if t.Hand == nil {
			return
		}
		seat := t.SeatByPlayer(playerID)
		if seat == nil || seat.Number != t.Hand.ToAct {
			return
		}
		actions = t.Hand.ValidActions()
	})
	return actions, err
}

// TableInfo is a lobby listing entry.
type TableInfo struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Stakes     string `json:"stakes"`
	Status     string `json:"status"`
}

// ListTables returns a lobby listing of every table.
func (s *Service) ListTables() []TableInfo {
	s.mu.Lock()
	ids := make([]string, 0, len(s.runners))
	for id := range s.runners {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	infos := make([]TableInfo, 0, len(ids))
	for _, id := range ids {
		err := s.read(id, func(t *game.Table) {
			infos = append(infos, TableInfo{
				ID:         t.ID,
				Code:       t.Code,
				Players:    len(t.Seats),
				MaxPlayers: t.Settings.MaxPlayers,
				Stakes:     fmt.Sprintf("%d/%d", t.Settings.SmallBlind, t.Settings.BigBlind),
				Status:     t.Status.String(),
			})
		})
		if err != nil {
			continue // removed between listing and read
		}
	}
	return infos
}

// command is one unit of work for a table runner. Exactly one of apply
// and read is set; apply goes through clone, persist and swap, read sees
// the current state without committing anything.
type command struct {
	apply func(t *game.Table, rng *rand.Rand) error
	read  func(t *game.Table)
	reply chan error
}

// startRunnerLocked registers and starts the runner for a table. Callers
// hold s.mu.
func (s *Service) startRunnerLocked(t *game.Table) *tableRunner {
	r := &tableRunner{
		svc:      s,
		table:    t,
		commands: make(chan command),
		done:     make(chan struct{}),
		rng:      rand.New(rand.NewSource(s.rng.Int63())),
		logger:   s.logger.WithPrefix("table").With("table", t.ID),
	}
	s.runners[t.ID] = r
	s.codes[t.Code] = t.ID
	go r.run()
	return r
}

// runner returns the live runner for a table. A table that is in the
// store but has no runner, because the process restarted, is resurrected
// from its last committed snapshot.
func (s *Service) runner(tableID string) (*tableRunner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runners[tableID]; ok {
		return r, nil
	}
	if s.closed {
		return nil, ErrTableNotFound
	}
	t, err := s.store.LoadTable(tableID)
	if err != nil {
		return nil, ErrTableNotFound
	}
	s.logger.Info("restored table from store", "table", tableID)
	return s.startRunnerLocked(t), nil
}

func (s *Service) do(tableID string, apply func(*game.Table, *rand.Rand) error) error {
	r, err := s.runner(tableID)
	if err != nil {
		return err
	}
	return r.submit(command{apply: apply, reply: make(chan error, 1)})
}

func (s *Service) read(tableID string, read func(*game.Table)) error {
	r, err := s.runner(tableID)
	if err != nil {
		return err
	}
	return r.submit(command{read: read, reply: make(chan error, 1)})
}

// tableRunner serializes all access to one table. Only the run goroutine
// touches table, timer and generation.
type tableRunner struct {
	svc      *Service
	table    *game.Table
	commands chan command
	done     chan struct{}
	rng      *rand.Rand
	logger   *log.Logger

	timer      *quartz.Timer
	generation int
}

func (r *tableRunner) submit(cmd command) error {
	select {
	case r.commands <- cmd:
		return <-cmd.reply
	case <-r.done:
		return ErrTableNotFound
	}
}

func (r *tableRunner) run() {
	for {
		select {
		case cmd := <-r.commands:
			if cmd.read != nil {
				cmd.read(r.table)
				cmd.reply <- nil
				continue
			}
			cmd.reply <- r.transition(cmd.apply)
		case <-r.done:
			if r.timer != nil {
				r.timer.Stop()
			}
			return
		}
	}
}

// transition applies one operation atomically: it runs against a clone,
// the clone is persisted, and only then does it become the current state.
// Any failure leaves the previous state untouched.
func (r *tableRunner) transition(apply func(*game.Table, *rand.Rand) error) error {
	next := r.table.Clone()
	if err := apply(next, r.rng); err != nil {
		return err
	}

	if err := r.svc.store.SaveTable(next); err != nil {
		r.logger.Warn("state save failed, retrying", "error", err)
		if err = r.svc.store.SaveTable(next); err != nil {
			r.logger.Error("state save failed, transition rolled back", "error", err)
			return fmt.Errorf("%w: %v", ErrStatePersistence, err)
		}
	}

	r.table = next
	r.generation++
	r.rearmTimer()
	r.svc.notifier.TableChanged(next)
	return nil
}

// rearmTimer schedules the action timeout for the seat to act, if any.
// The generation captured at arm time lets a late firing recognize that
// the turn it was watching is over.
func (r *tableRunner) rearmTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	h := r.table.Hand
	if h == nil || h.Complete || h.ToAct == 0 {
		return
	}

	gen := r.generation
	seat := h.ToAct
	r.timer = r.svc.clock.AfterFunc(r.svc.actionTimeout, func() {
		r.expire(gen, seat)
	})
}

// expire acts for a seat whose time ran out: check when legal, otherwise
// fold. It goes through the same command path as player actions, so it
// can never interleave with one.
func (r *tableRunner) expire(gen, seat int) {
	cmd := command{
		reply: make(chan error, 1),
		apply: func(t *game.Table, _ *rand.Rand) error {
			if r.generation != gen {
				return errStaleTimer
			}
			h := t.Hand
			if h == nil || h.Complete || h.ToAct != seat {
				return errStaleTimer
			}

			action := game.Action{Seat: seat, Kind: game.Fold}
			for _, va := range h.ValidActions() {
				if va.Kind == game.Check {
					action.Kind = game.Check
					break
				}
			}
			r.logger.Info("action timeout", "seat", seat, "action", action.Kind.String())
			return h.Apply(action)
		},
	}
	if err := r.submit(cmd); err != nil && !errors.Is(err, errStaleTimer) && !errors.Is(err, ErrTableNotFound) {
		r.logger.Error("timeout action failed", "seat", seat, "error", err)
	}
}
