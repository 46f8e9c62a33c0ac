package room

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Room codes avoid lookalike glyphs (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 4

// Directory maps room codes to live room actors. A code is either absent
// or active: rooms are created lazily when the first player joins (or via
// Allocate for the create-room endpoint) and dropped when the last player
// leaves. A later join under the same code gets a fresh room with fully
// reset state.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
	opts  Options
	log   zerolog.Logger
}

func NewDirectory(opts Options, log zerolog.Logger) *Directory {
	return &Directory{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		opts:  opts,
		log:   log,
	}
}

// Allocate picks a code not currently in use. The room itself is only
// created when the first player joins it.
func (d *Directory) Allocate() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		code := d.newCode()
		if _, taken := d.rooms[code]; !taken {
			return code
		}
	}
}

// Join allocates a player id, attaches the connection to the room for
// code and starts its pumps.
func (d *Directory) Join(code, name string, conn *websocket.Conn) string {
	id := uuid.NewString()
	c := newClient(id, conn, d.log)
	rm := d.attach(code, id, name, c)
	go c.writePump()
	go c.readPump(rm)
	return id
}

// attach finds or lazily creates the room for code and registers the
// player. A room that raced to shutdown rejects the join; the directory
// then replaces it with a fresh instance under the same code. A live
// room whose inbox is full also rejects the join, but must not be
// replaced: the connection is closed instead so the client retries.
func (d *Directory) attach(code, id, name string, s sender) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	rm := d.rooms[code]
	if rm == nil {
		rm = d.spawn(code)
		d.rooms[code] = rm
	}
	if rm.join(id, name, s) {
		return rm
	}
	if !rm.isClosed() {
		d.log.Warn().Str("room", code).Str("player", id).Msg("room backlogged, join refused")
		s.close()
		return rm
	}
	rm = d.spawn(code)
	d.rooms[code] = rm
	rm.join(id, name, s)
	return rm
}

func (d *Directory) spawn(code string) *Room {
	opts := d.opts
	opts.Logger = d.log
	opts.OnIdle = d.retire
	return New(code, opts)
}

// retire drops a room that emptied out. The identity check keeps a
// shutdown notification from an old instance from removing its
// replacement.
func (d *Directory) retire(rm *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rooms[rm.Code] == rm {
		delete(d.rooms, rm.Code)
	}
}

// Active returns the number of live rooms.
func (d *Directory) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// Codes lists live room codes, sorted, for the debug endpoint.
func (d *Directory) Codes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	codes := make([]string, 0, len(d.rooms))
	for code := range d.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (d *Directory) newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[d.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
