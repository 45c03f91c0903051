package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the environment variables that may override the YAML
// file. Unset variables leave their pointer nil.
type envOverrides struct {
	HTTPAddr        *string        `envconfig:"HTTP_ADDR"`
	DataProvider    *string        `envconfig:"DATA_PROVIDER"`
	VsTraderBaseURL *string        `envconfig:"VSTRADER_BASE_URL"`
	VsTraderAPIKey  *string        `envconfig:"VSTRADER_API_KEY"`
	FetchTimeout    *time.Duration `envconfig:"FETCH_TIMEOUT"`
	BaselineWindow  *int           `envconfig:"BASELINE_WINDOW"`
	Period          *string        `envconfig:"HISTORY_PERIOD"`
	ZoneMultipliers []float64      `envconfig:"ZONE_MULTIPLIERS"`
	WatchCron       *string        `envconfig:"CRON_WATCH"`
	WatchSymbols    []string       `envconfig:"WATCH_SYMBOLS"`
	RunOnStart      *bool          `envconfig:"RUN_ON_START"`
	StateFile       *string        `envconfig:"ZONE_STATE_FILE"`
	BotToken        *string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID          *string        `envconfig:"TELEGRAM_CHAT_ID"`
	SQLitePath      *string        `envconfig:"SQLITE_PATH"`
	PostgresDSN     *string        `envconfig:"POSTGRES_DSN"`
	RedisAddr       *string        `envconfig:"REDIS_ADDR"`
	RedisPassword   *string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         *int           `envconfig:"REDIS_DB"`
	LogLevel        *string        `envconfig:"LOG_LEVEL"`
	LogFormat       *string        `envconfig:"LOG_FORMAT"`
	Proxy           *string        `envconfig:"HTTPS_PROXY"`
}

func applyEnv(cfg *Config) error {
	// .env is optional; deployments usually inject real environment variables.
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	setStr(&cfg.Server.Addr, env.HTTPAddr)
	setStr(&cfg.DataSource.Provider, env.DataProvider)
	setStr(&cfg.DataSource.BaseURL, env.VsTraderBaseURL)
	setStr(&cfg.DataSource.APIKey, env.VsTraderAPIKey)
	if env.FetchTimeout != nil {
		cfg.DataSource.Timeout = *env.FetchTimeout
	}
	if env.BaselineWindow != nil {
		cfg.Valuation.Window = *env.BaselineWindow
	}
	setStr(&cfg.Valuation.Period, env.Period)
	if len(env.ZoneMultipliers) > 0 {
		cfg.Valuation.Multipliers = env.ZoneMultipliers
	}
	setStr(&cfg.Watch.Cron, env.WatchCron)
	setStr(&cfg.Watch.StateFile, env.StateFile)
	if len(env.WatchSymbols) > 0 {
		cfg.Watch.Symbols = env.WatchSymbols
	}
	if env.RunOnStart != nil {
		cfg.Watch.RunOnStart = *env.RunOnStart
	}
	setStr(&cfg.Telegram.BotToken, env.BotToken)
	setStr(&cfg.Telegram.ChatID, env.ChatID)
	setStr(&cfg.Database.SQLitePath, env.SQLitePath)
	setStr(&cfg.Database.PostgresDSN, env.PostgresDSN)
	setStr(&cfg.Redis.Addr, env.RedisAddr)
	setStr(&cfg.Redis.Password, env.RedisPassword)
	if env.RedisDB != nil {
		cfg.Redis.DB = *env.RedisDB
	}
	setStr(&cfg.Log.Level, env.LogLevel)
	setStr(&cfg.Log.Format, env.LogFormat)
	setStr(&cfg.Proxy, env.Proxy)
	return nil
}

func setStr(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
