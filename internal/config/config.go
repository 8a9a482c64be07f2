package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Discord     DiscordConfig    `mapstructure:"discord"`
	Screener    ScreenerConfig   `mapstructure:"screener"`
	Backtest    BacktestConfig   `mapstructure:"backtest"`
	Indicators  IndicatorConfig  `mapstructure:"indicators"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type DiscordConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Timeout    string `mapstructure:"timeout"`
}

// ScreenerConfig controls the live scan: money management, universe
// filtering and alert policy.
type ScreenerConfig struct {
	Capital             float64 `mapstructure:"capital"`
	RiskFraction        float64 `mapstructure:"risk_fraction"`
	MinWinRate          float64 `mapstructure:"min_win_rate"`
	MinTrades           int     `mapstructure:"min_trades"`
	MinLots             int     `mapstructure:"min_lots"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	StockListFile       string  `mapstructure:"stock_list_file"`
	HistoryPeriod       string  `mapstructure:"history_period"`
	ValueZoneProximity  float64 `mapstructure:"value_zone_proximity"`
	FibLookback         int     `mapstructure:"fib_lookback"`
	RateLimitDelay      string  `mapstructure:"rate_limit_delay"`
}

// BacktestConfig controls the historical simulation pass.
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	RiskFraction   float64 `mapstructure:"risk_fraction"`
	WarmupBars     int     `mapstructure:"warmup_bars"`
	FibLookback    int     `mapstructure:"fib_lookback"`
	EntryBandLow   float64 `mapstructure:"entry_band_low"`
	EntryBandHigh  float64 `mapstructure:"entry_band_high"`
	Workers        int     `mapstructure:"workers"`
}

type IndicatorConfig struct {
	SMALongPeriod   int     `mapstructure:"sma_long_period"`
	EMAMidPeriod    int     `mapstructure:"ema_mid_period"`
	RSIPeriod       int     `mapstructure:"rsi_period"`
	StochRSIPeriod  int     `mapstructure:"stoch_rsi_period"`
	StochKSmoothing int     `mapstructure:"stoch_k_smoothing"`
	StochDSmoothing int     `mapstructure:"stoch_d_smoothing"`
	MACDFast        int     `mapstructure:"macd_fast"`
	MACDSlow        int     `mapstructure:"macd_slow"`
	MACDSignal      int     `mapstructure:"macd_signal"`
	BBPeriod        int     `mapstructure:"bb_period"`
	BBStdDev        float64 `mapstructure:"bb_std_dev"`
	ADXPeriod       int     `mapstructure:"adx_period"`
	VolumeAvgPeriod int     `mapstructure:"volume_avg_period"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Screener.RiskFraction <= 0 || config.Screener.RiskFraction >= 1 {
		return nil, fmt.Errorf("screener risk_fraction must be in (0, 1), got %v", config.Screener.RiskFraction)
	}
	if config.Backtest.RiskFraction <= 0 || config.Backtest.RiskFraction >= 1 {
		return nil, fmt.Errorf("backtest risk_fraction must be in (0, 1), got %v", config.Backtest.RiskFraction)
	}
	if config.Screener.RateLimitDelay != "" {
		if _, err := time.ParseDuration(config.Screener.RateLimitDelay); err != nil {
			return nil, fmt.Errorf("invalid screener rate_limit_delay: %w", err)
		}
	}
	if config.Discord.Timeout != "" {
		if _, err := time.ParseDuration(config.Discord.Timeout); err != nil {
			return nil, fmt.Errorf("invalid discord timeout: %w", err)
		}
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "idx_screener")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", 0)

	// Discord
	viper.SetDefault("discord.webhook_url", "")
	viper.SetDefault("discord.timeout", "15s")

	// Screener: IDR capital, 2% risk per trade, IDX lot = 100 shares
	viper.SetDefault("screener.capital", 1400000.0)
	viper.SetDefault("screener.risk_fraction", 0.02)
	viper.SetDefault("screener.min_win_rate", 70.0)
	viper.SetDefault("screener.min_trades", 8)
	viper.SetDefault("screener.min_lots", 1)
	viper.SetDefault("screener.confidence_threshold", 0.75)
	viper.SetDefault("screener.stock_list_file", "stock_list.csv")
	viper.SetDefault("screener.history_period", "2y")
	viper.SetDefault("screener.value_zone_proximity", 0.15)
	viper.SetDefault("screener.fib_lookback", 120)
	viper.SetDefault("screener.rate_limit_delay", "500ms")

	// Backtest
	viper.SetDefault("backtest.initial_capital", 10000000.0)
	viper.SetDefault("backtest.risk_fraction", 0.02)
	viper.SetDefault("backtest.warmup_bars", 200)
	viper.SetDefault("backtest.fib_lookback", 120)
	viper.SetDefault("backtest.entry_band_low", 0.85)
	viper.SetDefault("backtest.entry_band_high", 1.15)
	viper.SetDefault("backtest.workers", 8)

	// Indicators
	viper.SetDefault("indicators.sma_long_period", 200)
	viper.SetDefault("indicators.ema_mid_period", 50)
	viper.SetDefault("indicators.rsi_period", 14)
	viper.SetDefault("indicators.stoch_rsi_period", 14)
	viper.SetDefault("indicators.stoch_k_smoothing", 3)
	viper.SetDefault("indicators.stoch_d_smoothing", 3)
	viper.SetDefault("indicators.macd_fast", 12)
	viper.SetDefault("indicators.macd_slow", 26)
	viper.SetDefault("indicators.macd_signal", 9)
	viper.SetDefault("indicators.bb_period", 20)
	viper.SetDefault("indicators.bb_std_dev", 2.0)
	viper.SetDefault("indicators.adx_period", 14)
	viper.SetDefault("indicators.volume_avg_period", 20)
}
