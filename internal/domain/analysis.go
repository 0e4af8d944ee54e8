package domain

import "time"

type AnalysisRequest struct {
	Position Position     `json:"position"`
	Depth    int          `json:"depth,omitempty"`
	Params   SearchParams `json:"params"`
	MultiPV  int          `json:"multipv,omitempty"`
}

// GoCommand uses the depth shorthand when no other limit is set and merges the
// depth into the parameter set otherwise.
func (r AnalysisRequest) GoCommand() GoCommand {
	if r.Depth <= 0 {
		return r.Params
	}
	if r.Params.Args() == "infinite" && !r.Params.Infinite {
		return ByDepth(r.Depth)
	}
	params := r.Params
	if params.Depth == nil {
		params.Depth = IntPtr(r.Depth)
	}
	return params
}

// Analysis is a finished search as it is cached and archived.
type Analysis struct {
	ID         string            `json:"id" bson:"_id"`
	Key        string            `json:"key" bson:"key"`
	Engine     map[string]string `json:"engine" bson:"engine"`
	Position   Position          `json:"position" bson:"position"`
	Command    string            `json:"command" bson:"command"`
	Result     SearchResult      `json:"result" bson:"result"`
	PVs        []Pv              `json:"pvs" bson:"pvs"`
	FromCache  bool              `json:"-" bson:"-"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	DurationMs int64             `json:"duration_ms" bson:"duration_ms"`
}
