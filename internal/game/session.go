package game

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/minqi/rush24/internal/puzzle"
	"github.com/minqi/rush24/internal/stats"
)

// Rounds per match.
const Rounds = 10

// Loss reasons carried in the verdict event.
const (
	ReasonWrongAnswer = "wrong answer"
	ReasonOverPar     = "over par"
)

// PuzzleSource yields one puzzle per round.
type PuzzleSource interface {
	Generate() puzzle.Puzzle
}

// Sink delivers events to players: Send to one, Broadcast to the room.
// Implementations must tolerate departed players.
type Sink interface {
	Send(playerID string, v any)
	Broadcast(v any)
}

type match struct {
	qn      int
	puzzles []puzzle.Puzzle
	started time.Time
}

// Session is the per-room match state machine: Idle until a start, then
// Running through 10 rounds, then back to Idle. All methods assume the
// single-threaded access of the owning room actor.
type Session struct {
	room    string
	roster  *Roster
	puzzles PuzzleSource
	sink    Sink
	log     zerolog.Logger
	match   *match
}

func NewSession(room string, roster *Roster, src PuzzleSource, sink Sink, log zerolog.Logger) *Session {
	return &Session{room: room, roster: roster, puzzles: src, sink: sink, log: log}
}

// Running reports whether a match is in progress.
func (s *Session) Running() bool { return s.match != nil }

// Start begins a fresh 10-round match. A second start while one is
// running is silently ignored; that is protocol behavior, not an error.
func (s *Session) Start() {
	if s.match != nil {
		s.log.Debug().Msg("start ignored, match already running")
		return
	}
	puzzles := make([]puzzle.Puzzle, Rounds)
	for i := range puzzles {
		puzzles[i] = s.puzzles.Generate()
	}
	s.roster.ResetScores()
	s.match = &match{puzzles: puzzles, started: time.Now()}
	s.log.Info().Int("players", s.roster.Len()).Msg("match started")
	s.sink.Broadcast(StartEvent{Type: "start", Room: s.room})
	s.advance()
}

// Submit scores one player's answer for the current round, then advances
// the round for everyone. The first submission closes the round; there is
// no wait-for-all barrier, and par is scoring data, not a deadline.
func (s *Session) Submit(playerID string, ok bool, elapsed float64) {
	if s.match == nil {
		return
	}
	p := s.roster.Get(playerID)
	if p == nil {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}
	q := s.match.puzzles[s.match.qn-1]
	p.Time += elapsed
	verdict := VerdictEvent{Type: "verdict", QN: s.match.qn, Par: q.Par, Time: elapsed}
	switch {
	case ok && elapsed <= float64(q.Par):
		p.Wins++
		verdict.OK = true
		stats.MaybeFastestWin(elapsed, p.Name, s.room)
	case ok:
		verdict.Reason = ReasonOverPar
	default:
		verdict.Reason = ReasonWrongAnswer
	}
	s.sink.Send(playerID, verdict)
	s.sink.Broadcast(Players(s.roster.Snapshot()))
	s.advance()
}

// Reset discards any in-progress match without emitting events. Used when
// the room empties out.
func (s *Session) Reset() { s.match = nil }

// advance moves to the next round, or settles the match after the last.
func (s *Session) advance() {
	if s.match == nil {
		return
	}
	s.match.qn++
	if s.match.qn > Rounds {
		ranked := s.standings()
		summary := renderSummary(ranked)
		if len(ranked) > 0 {
			top := ranked[0]
			stats.MaybeBestMatch(top.Wins, top.Time, top.Name, s.room)
		}
		s.sink.Broadcast(EndEvent{Type: "end", Summary: summary})
		s.log.Info().Str("summary", summary).Msg("match ended")
		s.match = nil
		return
	}
	q := s.match.puzzles[s.match.qn-1]
	s.sink.Broadcast(QuestionEvent{Type: "question", QN: s.match.qn, Nums: q.Nums, Par: q.Par})
}

// standings ranks players by wins descending, cumulative time ascending
// on ties.
func (s *Session) standings() []Player {
	ranked := s.roster.Snapshot()
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Wins != ranked[j].Wins {
			return ranked[i].Wins > ranked[j].Wins
		}
		return ranked[i].Time < ranked[j].Time
	})
	return ranked
}

func renderSummary(ranked []Player) string {
	lines := lo.Map(ranked, func(p Player, i int) string {
		return fmt.Sprintf("%d.%s (%d/%d | %.1fs)", i+1, p.Name, p.Wins, Rounds, p.Time)
	})
	return strings.Join(lines, "  ")
}
