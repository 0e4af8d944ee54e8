package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chess_uci/internal/domain"
	ownErrors "chess_uci/internal/errors"
)

const stopGracePeriod = 2 * time.Second

type AnalysisStore interface {
	GetCachedAnalysis(ctx context.Context, key string) (domain.Analysis, error)
	CacheAnalysis(ctx context.Context, analysis domain.Analysis) error
	ArchiveAnalysis(ctx context.Context, analysis domain.Analysis) error
	RecentAnalyses(ctx context.Context, pos domain.Position, limit int64) ([]domain.Analysis, error)
}

// Engine is the part of the uci driver the use case needs.
type Engine interface {
	ID() map[string]string
	SetOption(name, value string) error
	UCINewGame() error
	IsReady(ctx context.Context) error
	Position(pos domain.Position) error
	Go(ctx context.Context, cmd domain.GoCommand, onInfo func(domain.SearchInfo), onResult func(domain.SearchResult)) (domain.SearchResult, error)
	Stop() error
	Wait(ctx context.Context, timeout time.Duration) error
	PVs() []domain.Pv
}

type AnalysisUseCase struct {
	store  AnalysisStore
	engine Engine
	log    *zap.SugaredLogger

	mu sync.Mutex // one search at a time
	// multiPV is the value last sent by this use case; 0 until the first search,
	// since the engine may have been configured with any value before.
	multiPV int
	now     func() time.Time
}

func NewAnalysisUseCase(store AnalysisStore, engine Engine, log *zap.SugaredLogger) *AnalysisUseCase {
	return &AnalysisUseCase{
		store:  store,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

// Analyze returns the cached analysis of the request or runs the search on the engine.
func (a *AnalysisUseCase) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Analysis, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cmd := req.GoCommand()
	command := "go " + cmd.Args()
	multiPV := max(req.MultiPV, 1)
	engineName := a.engine.ID()["name"]
	key := analysisKey(engineName, req.Position, command, multiPV)

	cached, err := a.store.GetCachedAnalysis(ctx, key)
	switch {
	case err == nil:
		a.log.Infow("analysis served from cache", "key", key)
		cached.FromCache = true
		return cached, nil
	case errors.Is(err, ownErrors.ErrCacheMiss), errors.Is(err, ownErrors.ErrStoreNotAvailable):
	default:
		a.log.Warnw("failed to read analysis cache", "key", key, "error", err)
	}

	if multiPV != a.multiPV {
		if err := a.engine.SetOption("MultiPV", strconv.Itoa(multiPV)); err != nil {
			return domain.Analysis{}, err
		}
		a.multiPV = multiPV
	}
	if err := a.engine.UCINewGame(); err != nil {
		return domain.Analysis{}, err
	}
	if err := a.engine.IsReady(ctx); err != nil {
		return domain.Analysis{}, err
	}
	if err := a.engine.Position(req.Position); err != nil {
		return domain.Analysis{}, err
	}

	started := a.now()
	result, err := a.engine.Go(ctx, cmd, a.logProgress, nil)
	if err != nil {
		if ctx.Err() != nil {
			a.stopSearch()
		}
		return domain.Analysis{}, err
	}

	analysis := domain.Analysis{
		ID:         uuid.New().String(),
		Key:        key,
		Engine:     a.engine.ID(),
		Position:   req.Position,
		Command:    command,
		Result:     result,
		PVs:        a.engine.PVs(),
		CreatedAt:  started.UTC(),
		DurationMs: a.now().Sub(started).Milliseconds(),
	}
	a.save(ctx, analysis)
	return analysis, nil
}

// History returns the archived analyses of exactly this position, moves included.
func (a *AnalysisUseCase) History(ctx context.Context, pos domain.Position, limit int64) ([]domain.Analysis, error) {
	return a.store.RecentAnalyses(ctx, pos, limit)
}

// stopSearch ends a search whose caller went away so the engine is idle for the next one.
func (a *AnalysisUseCase) stopSearch() {
	if err := a.engine.Stop(); err != nil {
		a.log.Warnw("failed to stop search", "error", err)
		return
	}
	if err := a.engine.Wait(context.Background(), stopGracePeriod); err != nil {
		a.log.Warnw("engine did not stop in time", "error", err)
	}
}

func (a *AnalysisUseCase) save(ctx context.Context, analysis domain.Analysis) {
	if err := a.store.CacheAnalysis(ctx, analysis); err != nil && !errors.Is(err, ownErrors.ErrStoreNotAvailable) {
		a.log.Errorw("failed to cache analysis", "id", analysis.ID, "error", err)
	}
	if err := a.store.ArchiveAnalysis(ctx, analysis); err != nil && !errors.Is(err, ownErrors.ErrStoreNotAvailable) {
		a.log.Errorw("failed to archive analysis", "id", analysis.ID, "error", err)
	}
}

func (a *AnalysisUseCase) logProgress(info domain.SearchInfo) {
	if info.Depth == nil || info.Score == nil || info.PV == nil {
		return
	}
	multiPV := 1
	if info.MultiPV != nil {
		multiPV = *info.MultiPV
	}
	a.log.Debugw("search progress", "multipv", multiPV, "depth", *info.Depth, "score", info.Score.Display, "pv", strings.Join(info.PV, " "))
}

// analysisKey identifies a search by engine, position, go command and multipv.
func analysisKey(engineName string, pos domain.Position, command string, multiPV int) string {
	h := sha256.New()
	for _, part := range []string{engineName, pos.FEN, strings.Join(pos.Moves, " "), command, strconv.Itoa(multiPV)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}
