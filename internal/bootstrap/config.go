package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chess_uci/internal/domain"
)

type Config struct {
	EnginePath     string        `mapstructure:"ENGINE_PATH"`
	EngineArgs     string        `mapstructure:"ENGINE_ARGS"`
	EngineDir      string        `mapstructure:"ENGINE_DIR"`
	EngineOptions  string        `mapstructure:"ENGINE_OPTIONS"`
	ReplyTimeout   time.Duration `mapstructure:"REPLY_TIMEOUT"`
	QuitTimeout    time.Duration `mapstructure:"QUIT_TIMEOUT"`
	SearchDepth    int           `mapstructure:"SEARCH_DEPTH"`
	SearchMoveTime int           `mapstructure:"SEARCH_MOVETIME"`
	MultiPV        int           `mapstructure:"MULTIPV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogSend        bool          `mapstructure:"LOG_SEND"`
	LogRecv        bool          `mapstructure:"LOG_RECV"`
	RedisUrl       string        `mapstructure:"REDIS_URL"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	MongoUri       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
}

var defaults = map[string]any{
	"ENGINE_PATH":     "stockfish",
	"ENGINE_ARGS":     "",
	"ENGINE_DIR":      "",
	"ENGINE_OPTIONS":  "",
	"REPLY_TIMEOUT":   "5s",
	"QUIT_TIMEOUT":    "5s",
	"SEARCH_DEPTH":    16,
	"SEARCH_MOVETIME": 0,
	"MULTIPV":         1,
	"LOG_LEVEL":       "info",
	"LOG_SEND":        false,
	"LOG_RECV":        false,
	"REDIS_URL":       "",
	"CACHE_TTL":       "24h",
	"MONGO_URI":       "",
	"MONGO_DATABASE":  "chess_uci",
}

// Setup reads cfgPath (env file format) and lets environment variables override it.
// A missing file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c Config) Args() []string {
	return strings.Fields(c.EngineArgs)
}

// SearchRequest builds the analysis request for pos with the configured search limits.
func (c Config) SearchRequest(pos domain.Position) domain.AnalysisRequest {
	req := domain.AnalysisRequest{
		Position: pos,
		Depth:    c.SearchDepth,
		MultiPV:  c.MultiPV,
	}
	if c.SearchMoveTime > 0 {
		req.Params.MoveTime = domain.IntPtr(c.SearchMoveTime)
	}
	return req
}

// Settings parses ENGINE_OPTIONS, a list of Name=Value pairs separated by ';'.
// Names may contain spaces; a pair without '=' is a button.
func (c Config) Settings() []domain.Setting {
	var out []domain.Setting
	for _, pair := range strings.Split(c.EngineOptions, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		out = append(out, domain.Setting{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return out
}
