package uci

import (
	"sync"

	"chess_uci/internal/domain"
)

// searchState folds the info lines of the current search into per-multipv variations.
type searchState struct {
	mu    sync.RWMutex
	lines []domain.Pv
	last  domain.SearchResult
}

// reset is called once per go command.
func (s *searchState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.last = domain.SearchResult{}
}

func (s *searchState) apply(info domain.SearchInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := 0
	if info.MultiPV != nil {
		idx = max(0, *info.MultiPV-1)
	}
	for len(s.lines) < idx+1 {
		s.lines = append(s.lines, domain.Pv{})
	}
	pv := &s.lines[idx]

	// A score is only meaningful together with the line it evaluates.
	if info.Score != nil && info.PV != nil {
		score := *info.Score
		pv.Score = &score
		pv.Moves = append([]string(nil), info.PV...)
	}
	if info.Depth != nil {
		pv.Depth = domain.IntPtr(*info.Depth)
	}
	if info.TimeMs != nil {
		pv.TimeMs = domain.IntPtr(*info.TimeMs)
	}
	if info.Nodes != nil {
		pv.Nodes = domain.IntPtr(*info.Nodes)
	}
}

func (s *searchState) finish(result domain.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = result
}

func (s *searchState) pvs() []domain.Pv {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Pv, len(s.lines))
	for i, pv := range s.lines {
		out[i] = copyPv(pv)
	}
	return out
}

func (s *searchState) result() domain.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func copyPv(pv domain.Pv) domain.Pv {
	out := domain.Pv{Moves: append([]string(nil), pv.Moves...)}
	if pv.Score != nil {
		score := *pv.Score
		out.Score = &score
	}
	if pv.Depth != nil {
		out.Depth = domain.IntPtr(*pv.Depth)
	}
	if pv.TimeMs != nil {
		out.TimeMs = domain.IntPtr(*pv.TimeMs)
	}
	if pv.Nodes != nil {
		out.Nodes = domain.IntPtr(*pv.Nodes)
	}
	return out
}
