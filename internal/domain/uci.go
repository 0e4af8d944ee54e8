package domain

type ScoreKind string

const (
	ScoreCentipawn  ScoreKind = "cp"
	ScoreMate       ScoreKind = "mate"
	ScoreLowerBound ScoreKind = "lowerbound"
	ScoreUpperBound ScoreKind = "upperbound"
)

// Score is an engine evaluation from the side to move's point of view.
// Ordered compares across kinds: mate scores sit above or below every centipawn value.
type Score struct {
	Kind    ScoreKind `json:"kind" bson:"kind"`
	Raw     int       `json:"raw" bson:"raw"`
	Ordered int       `json:"ordered" bson:"ordered"`
	Display string    `json:"display" bson:"display"`
}

func (s Score) Compare(other Score) int {
	switch {
	case s.Ordered < other.Ordered:
		return -1
	case s.Ordered > other.Ordered:
		return 1
	}
	return 0
}

func (s Score) IsMate() bool {
	return s.Kind == ScoreMate
}

// Pv is one principal variation of the running search, indexed by multipv-1.
// Nil fields were not reported yet.
type Pv struct {
	Score  *Score   `json:"score,omitempty" bson:"score,omitempty"`
	Depth  *int     `json:"depth,omitempty" bson:"depth,omitempty"`
	Moves  []string `json:"moves,omitempty" bson:"moves,omitempty"`
	TimeMs *int     `json:"time_ms,omitempty" bson:"time_ms,omitempty"`
	Nodes  *int     `json:"nodes,omitempty" bson:"nodes,omitempty"`
}

// SearchInfo holds the fields of a single info line.
type SearchInfo struct {
	Depth          *int
	SelDepth       *int
	TimeMs         *int
	Nodes          *int
	MultiPV        *int
	CurrMove       string
	CurrMoveNumber *int
	HashFull       *int
	NPS            *int
	TBHits         *int
	SBHits         *int
	CPULoad        *int
	PV             []string
	Score          *Score
	String         string
}

type SearchResult struct {
	BestMove string `json:"bestmove" bson:"bestmove"`
	Ponder   string `json:"ponder,omitempty" bson:"ponder,omitempty"`
}

func (r SearchResult) HasPonder() bool {
	return r.Ponder != ""
}

type OptionType string

const (
	OptionCheck  OptionType = "check"
	OptionSpin   OptionType = "spin"
	OptionCombo  OptionType = "combo"
	OptionButton OptionType = "button"
	OptionString OptionType = "string"
)

// OptionSpec is a tunable declared by the engine during the uci handshake.
type OptionSpec struct {
	Name    string     `json:"name"`
	Type    OptionType `json:"type"`
	Default *string    `json:"default,omitempty"`
	Min     *int       `json:"min,omitempty"`
	Max     *int       `json:"max,omitempty"`
	Vars    []string   `json:"vars,omitempty"`
}

// Setting is a name/value pair sent with setoption.
type Setting struct {
	Name  string
	Value string
}

// Position is the board to search. An empty FEN means the start position.
type Position struct {
	FEN   string   `json:"fen,omitempty" bson:"fen,omitempty"`
	Moves []string `json:"moves,omitempty" bson:"moves,omitempty"`
}

type Reply string

const (
	ReplyUCIOK    Reply = "uciok"
	ReplyReadyOK  Reply = "readyok"
	ReplyBestMove Reply = "bestmove"
	ReplyQuit     Reply = "quit"
)

type EngineState int

const (
	StateIdle EngineState = iota
	StateHandshaking
	StateReady
	StateSearching
	StateQuitting
	StateTerminated
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StateQuitting:
		return "quitting"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

type LineKind int

const (
	LineUnknown LineKind = iota
	LineInfo
	LineBestMove
	LineID
	LineOption
	LineUCIOK
	LineReadyOK
	LineQuit
)

// Line is one classified line of engine output. Only the payload matching Kind is set.
type Line struct {
	Kind   LineKind
	Info   SearchInfo
	Result SearchResult
	IDKey  string
	IDVal  string
	Option OptionSpec
}
