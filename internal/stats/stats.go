// Package stats keeps a small in-memory daily leaderboard. Records roll
// over at UTC midnight and are lost on restart; match history is not
// persisted anywhere.
package stats

import (
	"sync"
	"time"
)

// FastestWin is the quickest winning answer recorded today.
type FastestWin struct {
	Seconds float64 `json:"seconds"`
	Player  string  `json:"player"`
	Room    string  `json:"room"`
	Time    int64   `json:"time"`
}

// BestMatch is the strongest full-match result recorded today. Ties on
// wins go to the lower cumulative time.
type BestMatch struct {
	Wins    int     `json:"wins"`
	Seconds float64 `json:"seconds"`
	Player  string  `json:"player"`
	Room    string  `json:"room"`
	Time    int64   `json:"time"`
}

type Daily struct {
	Date       string     `json:"date"`
	FastestWin FastestWin `json:"fastest_win"`
	BestMatch  BestMatch  `json:"best_match"`
}

var (
	mu    sync.Mutex
	state = fresh(today())
)

func today() string { return time.Now().UTC().Format("2006-01-02") }

func fresh(date string) Daily {
	// Seconds < 0 marks "no record yet"; an instant answer is a legal 0s.
	return Daily{Date: date, FastestWin: FastestWin{Seconds: -1}}
}

func rollover() {
	if d := today(); state.Date != d {
		state = fresh(d)
	}
}

func Get() Daily {
	mu.Lock()
	defer mu.Unlock()
	rollover()
	return state
}

// MaybeFastestWin records seconds if it beats today's fastest win.
func MaybeFastestWin(seconds float64, player, room string) {
	if seconds < 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	rollover()
	if state.FastestWin.Seconds < 0 || seconds < state.FastestWin.Seconds {
		state.FastestWin = FastestWin{Seconds: seconds, Player: player, Room: room, Time: time.Now().Unix()}
	}
}

// MaybeBestMatch records a finished match's winner if it beats today's
// best result.
func MaybeBestMatch(wins int, seconds float64, player, room string) {
	if wins <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	rollover()
	b := state.BestMatch
	if wins > b.Wins || (wins == b.Wins && (b.Time == 0 || seconds < b.Seconds)) {
		state.BestMatch = BestMatch{Wins: wins, Seconds: seconds, Player: player, Room: room, Time: time.Now().Unix()}
	}
}

// Reset clears today's records. Intended for tests and dev convenience.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	state = fresh(today())
}
