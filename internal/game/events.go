package game

// Wire events. Every frame is a flat JSON object with a "type"
// discriminator; field names are part of the protocol the browser client
// was built against and must not change.

type HelloEvent struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Room    string   `json:"room"`
	Players []Player `json:"players"`
}

func Hello(id, room string, players []Player) HelloEvent {
	return HelloEvent{Type: "hello", ID: id, Room: room, Players: players}
}

type PlayersEvent struct {
	Type    string   `json:"type"`
	Players []Player `json:"players"`
}

func Players(players []Player) PlayersEvent {
	return PlayersEvent{Type: "players", Players: players}
}

type StartEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type QuestionEvent struct {
	Type string `json:"type"`
	QN   int    `json:"qn"`
	Nums [4]int `json:"nums"`
	Par  int    `json:"par"`
}

// VerdictEvent is unicast to the submitting player only. Reason is set
// on losses and distinguishes a wrong answer from a correct-but-late one.
type VerdictEvent struct {
	Type   string  `json:"type"`
	QN     int     `json:"qn"`
	OK     bool    `json:"ok"`
	Par    int     `json:"par"`
	Time   float64 `json:"time"`
	Reason string  `json:"reason,omitempty"`
}

type EndEvent struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

type PingEvent struct {
	Type string `json:"type"`
	T    int64  `json:"t"`
}

func Ping(unixMilli int64) PingEvent {
	return PingEvent{Type: "ping", T: unixMilli}
}

// ClientMessage is an inbound frame from a player.
type ClientMessage struct {
	Type string  `json:"type"`
	OK   bool    `json:"ok"`
	Time float64 `json:"time"`
}

const (
	MsgStart  = "start"
	MsgSubmit = "submit"
)
