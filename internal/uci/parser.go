package uci

import (
	"strconv"
	"strings"

	"chess_uci/internal/domain"
)

// token is one whitespace separated word of a line and its byte offset.
type token struct {
	text string
	pos  int
}

func tokenize(line string) []token {
	var tokens []token
	start := -1
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			if start >= 0 {
				tokens = append(tokens, token{text: line[start:i], pos: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: line[start:], pos: start})
	}
	return tokens
}

func indexOf(tokens []token, word string) int {
	for i, t := range tokens {
		if t.text == word {
			return i
		}
	}
	return -1
}

// tail returns the raw text of the line from tokens[i] to the end.
func tail(line string, tokens []token, i int) (string, bool) {
	if i < 0 || i >= len(tokens) {
		return "", false
	}
	return line[tokens[i].pos:], true
}

func texts(tokens []token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.text
	}
	return out
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseLine classifies one line of engine output. Unrecognised lines come back as
// LineUnknown; a line is never rejected.
func ParseLine(line string) domain.Line {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return domain.Line{Kind: domain.LineUnknown}
	}

	switch tokens[0].text {
	case "info":
		return domain.Line{Kind: domain.LineInfo, Info: parseInfo(line, tokens)}
	case "bestmove":
		return domain.Line{Kind: domain.LineBestMove, Result: parseBestMove(tokens)}
	case "id":
		key, value, ok := parseID(line, tokens)
		if !ok {
			return domain.Line{Kind: domain.LineUnknown}
		}
		return domain.Line{Kind: domain.LineID, IDKey: key, IDVal: value}
	case "option":
		opt, ok := parseOption(tokens)
		if !ok {
			return domain.Line{Kind: domain.LineUnknown}
		}
		return domain.Line{Kind: domain.LineOption, Option: opt}
	case "uciok":
		return domain.Line{Kind: domain.LineUCIOK}
	case "readyok":
		return domain.Line{Kind: domain.LineReadyOK}
	case "quit":
		return domain.Line{Kind: domain.LineQuit}
	}
	return domain.Line{Kind: domain.LineUnknown}
}

// info

func parseInfo(line string, tokens []token) domain.SearchInfo {
	fields := tokens[1:]

	// pv and string consume the rest of the line, whichever comes first.
	region := fields
	tailAt := -1
	for i, t := range fields {
		if t.text == "pv" || t.text == "string" {
			region = fields[:i]
			tailAt = i
			break
		}
	}

	info := domain.SearchInfo{
		Depth:          intField(region, "depth"),
		SelDepth:       intField(region, "seldepth"),
		TimeMs:         intField(region, "time"),
		Nodes:          intField(region, "nodes"),
		MultiPV:        intField(region, "multipv"),
		CurrMoveNumber: intField(region, "currmovenumber"),
		HashFull:       intField(region, "hashfull"),
		NPS:            intField(region, "nps"),
		TBHits:         intField(region, "tbhits"),
		SBHits:         intField(region, "sbhits"),
		CPULoad:        intField(region, "cpuload"),
		CurrMove:       wordField(region, "currmove"),
		Score:          scoreField(region),
	}

	if tailAt >= 0 {
		switch fields[tailAt].text {
		case "pv":
			if moves := fields[tailAt+1:]; len(moves) > 0 {
				info.PV = texts(moves)
			}
		case "string":
			if s, ok := tail(line, fields, tailAt+1); ok {
				info.String = s
			}
		}
	}
	return info
}

func intField(tokens []token, name string) *int {
	i := indexOf(tokens, name)
	if i < 0 || i+1 >= len(tokens) {
		return nil
	}
	v, ok := parseDigits(tokens[i+1].text)
	if !ok {
		return nil
	}
	return &v
}

func wordField(tokens []token, name string) string {
	i := indexOf(tokens, name)
	if i < 0 || i+1 >= len(tokens) {
		return ""
	}
	return tokens[i+1].text
}

func scoreField(tokens []token) *domain.Score {
	i := indexOf(tokens, "score")
	if i < 0 || i+1 >= len(tokens) {
		return nil
	}

	kind := domain.ScoreKind(tokens[i+1].text)
	switch kind {
	case domain.ScoreLowerBound, domain.ScoreUpperBound:
		s := NormalizeScore(kind, 0)
		return &s
	case domain.ScoreCentipawn, domain.ScoreMate:
		if i+2 >= len(tokens) {
			return nil
		}
		v, err := strconv.Atoi(tokens[i+2].text)
		if err != nil {
			return nil
		}
		s := NormalizeScore(kind, v)
		return &s
	}
	return nil
}

// bestmove

// parseBestMove returns an empty result for a bare bestmove line; the line
// still ends the search.
func parseBestMove(tokens []token) domain.SearchResult {
	if len(tokens) < 2 {
		return domain.SearchResult{}
	}
	result := domain.SearchResult{BestMove: tokens[1].text}
	if len(tokens) >= 4 && tokens[2].text == "ponder" {
		result.Ponder = tokens[3].text
	}
	return result
}

// id

func parseID(line string, tokens []token) (string, string, bool) {
	if len(tokens) < 3 {
		return "", "", false
	}
	value, _ := tail(line, tokens, 2)
	return tokens[1].text, value, true
}

// option

var optionKeywords = map[string]bool{
	"default": true,
	"min":     true,
	"max":     true,
	"var":     true,
}

func parseOption(tokens []token) (domain.OptionSpec, bool) {
	if len(tokens) < 5 || tokens[1].text != "name" {
		return domain.OptionSpec{}, false
	}

	// The name may contain spaces and runs up to the last type keyword.
	typeAt := -1
	for i := len(tokens) - 2; i > 2; i-- {
		if tokens[i].text == "type" {
			typeAt = i
			break
		}
	}
	if typeAt < 0 {
		return domain.OptionSpec{}, false
	}

	opt := domain.OptionSpec{
		Name: strings.Join(texts(tokens[2:typeAt]), " "),
		Type: domain.OptionType(tokens[typeAt+1].text),
	}

	rest := tokens[typeAt+2:]
	for i := 0; i < len(rest); i++ {
		word := rest[i].text
		if !optionKeywords[word] {
			continue
		}
		end := i + 1
		for end < len(rest) && !optionKeywords[rest[end].text] {
			end++
		}
		value := strings.Join(texts(rest[i+1:end]), " ")

		switch word {
		case "default":
			if value != "" && opt.Default == nil {
				opt.Default = &value
			}
		case "min":
			if v, err := strconv.Atoi(value); err == nil && opt.Min == nil {
				opt.Min = &v
			}
		case "max":
			if v, err := strconv.Atoi(value); err == nil && opt.Max == nil {
				opt.Max = &v
			}
		case "var":
			if value != "" {
				opt.Vars = append(opt.Vars, value)
			}
		}
		i = end - 1
	}
	return opt, true
}
