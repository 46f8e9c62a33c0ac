// Package room runs each game room as an isolated actor: joins, inbound
// messages, disconnects and heartbeat ticks are handled strictly one at a
// time, so the roster and match state need no locks. Rooms are fully
// independent of each other.
package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/minqi/rush24/internal/game"
	"github.com/minqi/rush24/internal/puzzle"
)

// DefaultHeartbeat is the fixed liveness ping interval.
const DefaultHeartbeat = 30 * time.Second

const inboxSize = 64

type event any

type joinEvent struct {
	id   string
	name string
	conn sender
}

type messageEvent struct {
	id   string
	data []byte
}

type leaveEvent struct {
	id string
}

// Options configures a room. Zero values fall back to real clock, real
// puzzle generator and DefaultHeartbeat.
type Options struct {
	Clock     clockwork.Clock
	Heartbeat time.Duration
	Puzzles   game.PuzzleSource
	Logger    zerolog.Logger
	OnIdle    func(*Room)
}

// Room is one game room. External goroutines only ever enqueue events;
// all state lives with the actor goroutine.
type Room struct {
	Code string

	inbox  chan event
	clock  clockwork.Clock
	pulse  time.Duration
	log    zerolog.Logger
	onIdle func(*Room)

	// actor-owned
	roster  *game.Roster
	session *game.Session
	conns   map[string]sender
	ticker  clockwork.Ticker

	mu     sync.Mutex
	closed bool
}

func New(code string, opts Options) *Room {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.Puzzles == nil {
		opts.Puzzles = puzzle.New()
	}
	r := &Room{
		Code:   code,
		inbox:  make(chan event, inboxSize),
		clock:  opts.Clock,
		pulse:  opts.Heartbeat,
		log:    opts.Logger.With().Str("room", code).Logger(),
		onIdle: opts.OnIdle,
		roster: game.NewRoster(),
		conns:  make(map[string]sender),
	}
	r.session = game.NewSession(code, r.roster, opts.Puzzles, r, r.log)
	go r.run()
	return r
}

// join registers a player. It reports false when the join was not
// enqueued, either because the room already shut down (the caller must
// spawn a fresh room) or because the inbox is full (the caller must
// refuse the join).
func (r *Room) join(id, name string, conn sender) bool {
	return r.deliver(joinEvent{id: id, name: name, conn: conn})
}

// Message routes a raw inbound frame from a player into the actor.
func (r *Room) Message(id string, data []byte) {
	r.deliver(messageEvent{id: id, data: data})
}

// Leave records a disconnect. Idempotent: duplicate leaves for the same
// id, or leaves after the room shut down, are no-ops.
func (r *Room) Leave(id string) {
	r.deliver(leaveEvent{id: id})
}

// deliver enqueues ev and reports whether it was accepted. The send
// never blocks: the room refuses events after it has shut down and
// drops them when the inbox is full, returning false either way.
func (r *Room) deliver(ev event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.inbox <- ev:
		return true
	default:
		r.log.Warn().Msg("room inbox full, dropping event")
		return false
	}
}

// isClosed reports whether the room has committed to shutting down.
func (r *Room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// tryClose commits to shutdown, unless an event slipped into the inbox
// behind the final leave. The length check shares the mutex with
// deliver, so a late join is either visible here (and the room keeps
// running to serve it) or arrives after closed is set and is refused.
func (r *Room) tryClose() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.inbox) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) run() {
	r.log.Info().Msg("room started")
	for {
		var tick <-chan time.Time
		if r.ticker != nil {
			tick = r.ticker.Chan()
		}
		select {
		case ev := <-r.inbox:
			r.handle(ev)
		case <-tick:
			r.heartbeat()
		}
		if r.roster.Len() == 0 && r.tryClose() {
			break
		}
	}
	r.shutdown()
}

// handle dispatches one event. A panic while handling it is contained to
// that event so the room keeps serving the next one.
func (r *Room) handle(ev event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("event handler panicked")
		}
	}()
	switch ev := ev.(type) {
	case joinEvent:
		r.handleJoin(ev)
	case messageEvent:
		r.handleMessage(ev)
	case leaveEvent:
		r.handleLeave(ev)
	}
}

func (r *Room) handleJoin(ev joinEvent) {
	r.conns[ev.id] = ev.conn
	p := r.roster.Add(ev.id, ev.name)
	r.ensureHeartbeat()
	r.Send(ev.id, game.Hello(ev.id, r.Code, r.roster.Snapshot()))
	r.Broadcast(game.Players(r.roster.Snapshot()))
	r.log.Info().Str("player", ev.id).Str("name", p.Name).Int("players", r.roster.Len()).Msg("player joined")
}

// handleMessage decodes and routes a client frame. Malformed or unknown
// payloads are logged and dropped, never fatal to the room.
func (r *Room) handleMessage(ev messageEvent) {
	var msg game.ClientMessage
	if err := json.Unmarshal(ev.data, &msg); err != nil {
		r.log.Warn().Err(err).Str("player", ev.id).Msg("malformed message dropped")
		return
	}
	switch msg.Type {
	case game.MsgStart:
		r.session.Start()
	case game.MsgSubmit:
		r.session.Submit(ev.id, msg.OK, msg.Time)
	default:
		r.log.Warn().Str("player", ev.id).Str("type", msg.Type).Msg("unknown message type dropped")
	}
}

func (r *Room) handleLeave(ev leaveEvent) {
	c, known := r.conns[ev.id]
	if known {
		delete(r.conns, ev.id)
		c.close()
	}
	r.roster.Remove(ev.id)
	if known {
		r.log.Info().Str("player", ev.id).Int("players", r.roster.Len()).Msg("player left")
	}
	// With nobody left the run loop retires the room and the match
	// dies with it.
	if known && r.roster.Len() > 0 {
		r.Broadcast(game.Players(r.roster.Snapshot()))
	}
}

func (r *Room) heartbeat() {
	r.Broadcast(game.Ping(r.clock.Now().UnixMilli()))
}

// ensureHeartbeat starts the ticker lazily on the first join after a
// quiet period.
func (r *Room) ensureHeartbeat() {
	if r.ticker == nil {
		r.ticker = r.clock.NewTicker(r.pulse)
	}
}

func (r *Room) stopHeartbeat() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

// shutdown clears all state and tells the directory this instance is
// gone. tryClose has already sealed the inbox, so a join racing the
// shutdown sees deliver fail and gets a fresh room from the directory.
func (r *Room) shutdown() {
	r.stopHeartbeat()
	r.session.Reset()
	for _, c := range r.conns {
		c.close()
	}
	r.log.Info().Msg("room empty, retiring")
	if r.onIdle != nil {
		r.onIdle(r)
	}
}

// Send implements game.Sink for one player. Actor goroutine only.
func (r *Room) Send(playerID string, v any) {
	if c, ok := r.conns[playerID]; ok {
		c.send(v)
	}
}

// Broadcast implements game.Sink for the whole room. Actor goroutine only.
func (r *Room) Broadcast(v any) {
	for _, c := range r.conns {
		c.send(v)
	}
}
