package domain

import (
	"strconv"
	"strings"
)

// GoCommand is the argument of a go search: either ByDepth or SearchParams.
type GoCommand interface {
	Args() string
}

// ByDepth searches to a fixed depth. Zero or negative depth searches infinitely.
type ByDepth int

func (d ByDepth) Args() string {
	if d <= 0 {
		return "infinite"
	}
	return "depth " + strconv.Itoa(int(d))
}

// SearchParams maps to the go command's parameters. Nil limits are not sent;
// an empty set searches infinitely.
type SearchParams struct {
	SearchMoves []string `json:"searchmoves,omitempty"`
	Ponder      bool     `json:"ponder,omitempty"`
	Infinite    bool     `json:"infinite,omitempty"`
	WTime       *int     `json:"wtime,omitempty"`
	BTime       *int     `json:"btime,omitempty"`
	WInc        *int     `json:"winc,omitempty"`
	BInc        *int     `json:"binc,omitempty"`
	MovesToGo   *int     `json:"movestogo,omitempty"`
	Depth       *int     `json:"depth,omitempty"`
	Nodes       *int     `json:"nodes,omitempty"`
	Mate        *int     `json:"mate,omitempty"`
	MoveTime    *int     `json:"movetime,omitempty"`
}

func (p SearchParams) Args() string {
	var parts []string
	if len(p.SearchMoves) > 0 {
		parts = append(parts, "searchmoves "+strings.Join(p.SearchMoves, " "))
	}
	if p.Ponder {
		parts = append(parts, "ponder")
	}
	limits := []struct {
		name  string
		value *int
	}{
		{"wtime", p.WTime},
		{"btime", p.BTime},
		{"winc", p.WInc},
		{"binc", p.BInc},
		{"movestogo", p.MovesToGo},
		{"depth", p.Depth},
		{"nodes", p.Nodes},
		{"mate", p.Mate},
		{"movetime", p.MoveTime},
	}
	for _, l := range limits {
		if l.value != nil && *l.value >= 0 {
			parts = append(parts, l.name+" "+strconv.Itoa(*l.value))
		}
	}
	if p.Infinite || len(parts) == 0 {
		parts = append(parts, "infinite")
	}
	return strings.Join(parts, " ")
}

func IntPtr(value int) *int {
	return &value
}
