package uci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess_uci/internal/domain"
)

func TestParseInfoFields(t *testing.T) {
	line := ParseLine("info depth 12 seldepth 18 multipv 2 score cp -35 nodes 500000 nps 900000 hashfull 12 tbhits 0 time 555 pv e2e4 e7e5")
	require.Equal(t, domain.LineInfo, line.Kind)

	info := line.Info
	require.NotNil(t, info.Depth)
	assert.Equal(t, 12, *info.Depth)
	assert.Equal(t, 18, *info.SelDepth)
	assert.Equal(t, 2, *info.MultiPV)
	assert.Equal(t, 500000, *info.Nodes)
	assert.Equal(t, 900000, *info.NPS)
	assert.Equal(t, 12, *info.HashFull)
	assert.Equal(t, 0, *info.TBHits)
	assert.Equal(t, 555, *info.TimeMs)
	require.NotNil(t, info.Score)
	assert.Equal(t, -35, info.Score.Ordered)
	assert.Equal(t, "-0.35", info.Score.Display)
	assert.Equal(t, []string{"e2e4", "e7e5"}, info.PV)
	assert.Nil(t, info.SBHits)
	assert.Nil(t, info.CPULoad)
	assert.Empty(t, info.String)
}

func TestParseInfoFieldOrderDoesNotMatter(t *testing.T) {
	a := ParseLine("info nodes 10 depth 3 score mate 2 pv a2a3").Info
	b := ParseLine("info score mate 2 depth 3 nodes 10 pv a2a3").Info
	assert.Equal(t, a, b)
}

func TestParseInfoMalformedFieldIsAbsent(t *testing.T) {
	info := ParseLine("info depth x12 nodes 100 score cp abc pv e2e4").Info
	assert.Nil(t, info.Depth)
	assert.Nil(t, info.Score)
	require.NotNil(t, info.Nodes)
	assert.Equal(t, 100, *info.Nodes)
	assert.Equal(t, []string{"e2e4"}, info.PV)
}

func TestParseInfoPvConsumesRestOfLine(t *testing.T) {
	info := ParseLine("info depth 5 pv e2e4 depth 9 e7e5").Info
	require.NotNil(t, info.Depth)
	assert.Equal(t, 5, *info.Depth)
	assert.Equal(t, []string{"e2e4", "depth", "9", "e7e5"}, info.PV)

	info = ParseLine("info depth 5 pv").Info
	assert.Nil(t, info.PV)
}

func TestParseInfoCurrMove(t *testing.T) {
	info := ParseLine("info depth 20 currmove g1f3 currmovenumber 4").Info
	assert.Equal(t, "g1f3", info.CurrMove)
	require.NotNil(t, info.CurrMoveNumber)
	assert.Equal(t, 4, *info.CurrMoveNumber)
}

func TestParseInfoString(t *testing.T) {
	info := ParseLine("info string NNUE evaluation using nn-5af11540bbfe.nnue  (Enabled) depth 3").Info
	assert.Equal(t, "NNUE evaluation using nn-5af11540bbfe.nnue  (Enabled) depth 3", info.String)
	assert.Nil(t, info.Depth)

	info = ParseLine("info depth 2 string Hello World").Info
	assert.Equal(t, "Hello World", info.String)
	require.NotNil(t, info.Depth)
	assert.Equal(t, 2, *info.Depth)
}

func TestParseInfoScoreBounds(t *testing.T) {
	lower := ParseLine("info depth 10 score lowerbound pv e2e4").Info.Score
	require.NotNil(t, lower)
	assert.Equal(t, domain.ScoreCentipawn, lower.Kind)
	assert.Equal(t, minOrder, lower.Ordered)

	upper := ParseLine("info depth 10 score upperbound pv e2e4").Info.Score
	require.NotNil(t, upper)
	assert.Equal(t, maxOrder, upper.Ordered)

	assert.Nil(t, ParseLine("info score weird 5").Info.Score)
}

func TestParseInfoMateScore(t *testing.T) {
	score := ParseLine("info depth 30 score mate -4 pv h7h8").Info.Score
	require.NotNil(t, score)
	assert.Equal(t, domain.ScoreMate, score.Kind)
	assert.Equal(t, -4, score.Raw)
	assert.Equal(t, "#-4", score.Display)
}

func TestParseBestMove(t *testing.T) {
	line := ParseLine("bestmove e2e4 ponder e7e5")
	require.Equal(t, domain.LineBestMove, line.Kind)
	assert.Equal(t, domain.SearchResult{BestMove: "e2e4", Ponder: "e7e5"}, line.Result)
	assert.True(t, line.Result.HasPonder())

	line = ParseLine("bestmove a7a8q")
	assert.Equal(t, domain.SearchResult{BestMove: "a7a8q"}, line.Result)

	line = ParseLine("bestmove e2e4 ponder")
	assert.Equal(t, domain.SearchResult{BestMove: "e2e4"}, line.Result)

	line = ParseLine("bestmove")
	assert.Equal(t, domain.LineBestMove, line.Kind)
	assert.Empty(t, line.Result.BestMove)
}

func TestParseID(t *testing.T) {
	line := ParseLine("id name Stockfish 16.1")
	require.Equal(t, domain.LineID, line.Kind)
	assert.Equal(t, "name", line.IDKey)
	assert.Equal(t, "Stockfish 16.1", line.IDVal)

	line = ParseLine("id author the Stockfish developers (see AUTHORS file)")
	assert.Equal(t, "author", line.IDKey)
	assert.Equal(t, "the Stockfish developers (see AUTHORS file)", line.IDVal)

	assert.Equal(t, domain.LineUnknown, ParseLine("id name").Kind)
}

func TestParseOption(t *testing.T) {
	spin := ParseLine("option name Threads type spin default 1 min 1 max 1024")
	require.Equal(t, domain.LineOption, spin.Kind)
	assert.Equal(t, "Threads", spin.Option.Name)
	assert.Equal(t, domain.OptionSpin, spin.Option.Type)
	require.NotNil(t, spin.Option.Default)
	assert.Equal(t, "1", *spin.Option.Default)
	assert.Equal(t, 1, *spin.Option.Min)
	assert.Equal(t, 1024, *spin.Option.Max)
	assert.Nil(t, spin.Option.Vars)

	button := ParseLine("option name Clear Hash type button").Option
	assert.Equal(t, "Clear Hash", button.Name)
	assert.Equal(t, domain.OptionButton, button.Type)
	assert.Nil(t, button.Default)

	combo := ParseLine("option name Analysis Contempt type combo default Both var Off var White var Black var Both").Option
	assert.Equal(t, "Analysis Contempt", combo.Name)
	assert.Equal(t, domain.OptionCombo, combo.Type)
	assert.Equal(t, "Both", *combo.Default)
	assert.Equal(t, []string{"Off", "White", "Black", "Both"}, combo.Vars)

	str := ParseLine("option name Debug Log File type string default").Option
	assert.Equal(t, "Debug Log File", str.Name)
	assert.Equal(t, domain.OptionString, str.Type)
	assert.Nil(t, str.Default)

	check := ParseLine("option name Ponder type check default false").Option
	assert.Equal(t, domain.OptionCheck, check.Type)
	assert.Equal(t, "false", *check.Default)
}

func TestParseOptionTwiceIsStable(t *testing.T) {
	const raw = "option name Style type combo default Normal var Solid var Normal var Risky"
	first := ParseLine(raw)
	second := ParseLine(raw)
	assert.Equal(t, first, second)
	assert.Len(t, second.Option.Vars, 3)
}

func TestParseOptionMalformed(t *testing.T) {
	assert.Equal(t, domain.LineUnknown, ParseLine("option name Threads").Kind)
	assert.Equal(t, domain.LineUnknown, ParseLine("option Threads type spin").Kind)

	opt := ParseLine("option name Hash type spin default 16 min one max 33554432").Option
	assert.Nil(t, opt.Min)
	assert.Equal(t, 33554432, *opt.Max)
}

func TestParseSignalsAndUnknown(t *testing.T) {
	assert.Equal(t, domain.LineUCIOK, ParseLine("uciok").Kind)
	assert.Equal(t, domain.LineReadyOK, ParseLine("readyok").Kind)
	assert.Equal(t, domain.LineQuit, ParseLine("quit").Kind)
	assert.Equal(t, domain.LineUnknown, ParseLine("Stockfish 16.1 by the Stockfish developers").Kind)
	assert.Equal(t, domain.LineUnknown, ParseLine("readyokay").Kind)
	assert.Equal(t, domain.LineUnknown, ParseLine("   ").Kind)
}
