package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"chess_uci/internal/domain"
	ownErrors "chess_uci/internal/errors"
)

const (
	analysesCollection  = "analyses"
	mongoRequestTimeout = 5 * time.Second
)

// AnalysisRepository caches finished analyses in redis and archives them in mongo.
// Either store may be nil.
type AnalysisRepository struct {
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
	ttl   time.Duration
}

func NewAnalysisRepository(log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database, ttl time.Duration) *AnalysisRepository {
	return &AnalysisRepository{
		log:   log,
		redis: redis,
		mongo: mongo,
		ttl:   ttl,
	}
}

func (r *AnalysisRepository) GetCachedAnalysis(ctx context.Context, key string) (domain.Analysis, error) {
	if r.redis == nil {
		return domain.Analysis{}, ownErrors.ErrStoreNotAvailable
	}
	val, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Analysis{}, ownErrors.ErrCacheMiss
		}
		return domain.Analysis{}, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}

	return decodeAnalysis(val)
}

func (r *AnalysisRepository) CacheAnalysis(ctx context.Context, analysis domain.Analysis) error {
	if r.redis == nil {
		return ownErrors.ErrStoreNotAvailable
	}
	bytes, err := encodeAnalysis(analysis)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, analysis.Key, bytes, r.ttl).Err()
}

func (r *AnalysisRepository) ArchiveAnalysis(ctx context.Context, analysis domain.Analysis) error {
	if r.mongo == nil {
		return ownErrors.ErrStoreNotAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, mongoRequestTimeout)
	defer cancel()

	_, err := r.mongo.Collection(analysesCollection).InsertOne(ctx, analysis)
	if err != nil {
		return fmt.Errorf("failed to archive analysis %s: %w", analysis.ID, err)
	}
	return nil
}

// RecentAnalyses returns the latest archived analyses of a position, newest first.
func (r *AnalysisRepository) RecentAnalyses(ctx context.Context, pos domain.Position, limit int64) ([]domain.Analysis, error) {
	if r.mongo == nil {
		return nil, ownErrors.ErrStoreNotAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, mongoRequestTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.mongo.Collection(analysesCollection).Find(ctx, positionFilter(pos), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Analysis
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode analyses: %w", err)
	}
	return out, nil
}

// positionFilter matches the whole embedded position document: the start position
// has no fen field and the moves are part of the position.
func positionFilter(pos domain.Position) bson.M {
	return bson.M{"position": pos}
}

func encodeAnalysis(analysis domain.Analysis) ([]byte, error) {
	bytes, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	return bytes, nil
}

func decodeAnalysis(val string) (domain.Analysis, error) {
	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(val), &analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return analysis, nil
}
