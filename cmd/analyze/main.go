package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chess_uci/internal/adapters"
	"chess_uci/internal/bootstrap"
	"chess_uci/internal/domain"
	"chess_uci/internal/repository"
	"chess_uci/internal/uci"
	"chess_uci/internal/usecase/analysis"
)

const historyLimit = 5

// usage: analyze [fen [move ...]]
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = ".env"
	}
	cfg, err := bootstrap.Setup(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup configuration:", err)
		os.Exit(1)
	}

	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel, logger)

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		logger.Errorw("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger, args []string) error {
	redisClient, mongoDB, closeStores := initStores(ctx, log, cfg)
	defer closeStores()

	proc := adapters.NewEngineProcess(cfg.EnginePath, cfg.Args(), cfg.EngineDir, log)
	engine, err := uci.Start(ctx, proc, log,
		uci.WithReplyTimeout(cfg.ReplyTimeout),
		uci.WithQuitTimeout(cfg.QuitTimeout),
		uci.WithIOLogging(cfg.LogSend, cfg.LogRecv),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Quit(context.Background()); err != nil {
			log.Errorw("failed to quit engine", "error", err)
		}
	}()

	if err := engine.SetOptions(cfg.Settings()...); err != nil {
		return err
	}
	printIdentity(engine)

	store := repository.NewAnalysisRepository(log, redisClient, mongoDB, cfg.CacheTTL)
	analyses := analysis.NewAnalysisUseCase(store, engine, log)

	pos := parsePosition(args)
	result, err := analyses.Analyze(ctx, cfg.SearchRequest(pos))
	if err != nil {
		return err
	}
	printAnalysis(result)

	if mongoDB != nil {
		history, err := analyses.History(ctx, pos, historyLimit)
		if err != nil {
			log.Warnw("failed to load analysis history", "error", err)
		} else {
			fmt.Printf("%d archived analyses of this position\n", len(history))
		}
	}
	return nil
}

func NewLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// initStores connects the configured stores. Stores that are not configured or not
// reachable are left nil and the analysis runs without them.
func initStores(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (*redis.Client, *mongo.Database, func()) {
	var closers []func(context.Context) error
	var redisClient *redis.Client
	var mongoDB *mongo.Database

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Warnw("analysis cache disabled", "error", err)
		} else {
			redisClient = redisAdapter.GetClient()
			closers = append(closers, redisAdapter.Close)
		}
	}
	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Warnw("analysis archive disabled", "error", err)
		} else {
			mongoDB = mongoAdapter.Database
			closers = append(closers, mongoAdapter.Close)
		}
	}

	return redisClient, mongoDB, func() {
		for _, c := range closers {
			if err := c(context.Background()); err != nil {
				log.Warnw("failed to close store", "error", err)
			}
		}
	}
}

func parsePosition(args []string) domain.Position {
	if len(args) == 0 {
		return domain.Position{}
	}
	fen := strings.TrimSpace(args[0])
	if fen == "startpos" {
		fen = ""
	}
	return domain.Position{FEN: fen, Moves: args[1:]}
}

func printIdentity(engine *uci.Engine) {
	id := engine.ID()
	fmt.Printf("engine: %s by %s, %d options\n", id["name"], id["author"], len(engine.Options()))
}

func printAnalysis(a domain.Analysis) {
	source := "engine"
	if a.FromCache {
		source = "cache"
	}
	fmt.Printf("%s (%s, %d ms)\n", a.Command, source, a.DurationMs)

	line := "bestmove " + a.Result.BestMove
	if a.Result.HasPonder() {
		line += " ponder " + a.Result.Ponder
	}
	fmt.Println(line)

	for i, pv := range a.PVs {
		fmt.Printf("%d: %s/%s %s", i+1, scoreText(pv.Score), intText(pv.Depth), strings.Join(pv.Moves, " "))
		if pv.TimeMs != nil && pv.Nodes != nil {
			fmt.Printf(" (%d ms, %d nodes)", *pv.TimeMs, *pv.Nodes)
		}
		fmt.Println()
	}
}

func scoreText(s *domain.Score) string {
	if s == nil {
		return "?"
	}
	return s.Display
}

func intText(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
