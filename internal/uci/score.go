package uci

import (
	"math"
	"strconv"

	"chess_uci/internal/domain"
)

const (
	maxOrder = math.MaxInt
	minOrder = math.MinInt
)

// NormalizeScore maps a raw engine score onto a single ascending order.
// Mate in N is placed above every centipawn value and mate in 1 above mate in 2;
// being mated is mirrored below. Bounds saturate to the extremes.
func NormalizeScore(kind domain.ScoreKind, raw int) domain.Score {
	switch kind {
	case domain.ScoreMate:
		return domain.Score{
			Kind:    domain.ScoreMate,
			Raw:     raw,
			Ordered: adjustedMateScore(raw),
			Display: "#" + strconv.Itoa(raw),
		}
	case domain.ScoreLowerBound:
		return centipawnScore(minOrder)
	case domain.ScoreUpperBound:
		return centipawnScore(maxOrder)
	}
	return centipawnScore(raw)
}

func centipawnScore(raw int) domain.Score {
	return domain.Score{
		Kind:    domain.ScoreCentipawn,
		Raw:     raw,
		Ordered: raw,
		Display: strconv.FormatFloat(float64(raw)/100, 'f', -1, 64),
	}
}

func adjustedMateScore(raw int) int {
	switch {
	case raw >= 0:
		return maxOrder - raw
	case raw == math.MinInt:
		// -raw does not fit in an int
		return minOrder
	}
	return minOrder - raw
}
