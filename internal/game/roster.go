package game

import "github.com/samber/lo"

// MaxNameLen caps display names; longer names are truncated, not rejected.
const MaxNameLen = 16

// Player is one connected participant's live score state. Wins and Time
// accumulate over the current match and reset when a new one starts.
type Player struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Wins int     `json:"wins"`
	Time float64 `json:"time"`
}

// Roster tracks the players of one room in join order. It is owned by a
// single room actor and is not safe for concurrent use.
type Roster struct {
	order []*Player
	byID  map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{byID: make(map[string]*Player)}
}

func (r *Roster) Add(id, name string) *Player {
	if p, ok := r.byID[id]; ok {
		return p
	}
	p := &Player{ID: id, Name: TruncateName(name)}
	r.order = append(r.order, p)
	r.byID[id] = p
	return p
}

// Remove is a no-op for unknown ids, so duplicate disconnects are safe.
func (r *Roster) Remove(id string) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	r.order = lo.Reject(r.order, func(p *Player, _ int) bool { return p.ID == id })
}

func (r *Roster) Get(id string) *Player { return r.byID[id] }

func (r *Roster) Len() int { return len(r.order) }

// ResetScores zeroes every player's wins and time for a fresh match.
func (r *Roster) ResetScores() {
	for _, p := range r.order {
		p.Wins = 0
		p.Time = 0
	}
}

// Snapshot copies the players in join order. The same ordering backs the
// lobby display and seeds the final standings sort.
func (r *Roster) Snapshot() []Player {
	return lo.Map(r.order, func(p *Player, _ int) Player { return *p })
}

// TruncateName limits a display name to MaxNameLen runes.
func TruncateName(name string) string {
	rs := []rune(name)
	if len(rs) > MaxNameLen {
		rs = rs[:MaxNameLen]
	}
	return string(rs)
}
