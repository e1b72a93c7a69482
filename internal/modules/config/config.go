package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const configFilePathENV = "CONFIG_FILE"

// Config собирается в два прохода: сначала дефолты + опциональный yaml из
// configs/, потом ENV поверх. Секреты (ключи, пассфраза, телеграм) — только ENV.
type Config struct {
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
	} `yaml:"service"`

	// Биржа
	BinanceBase   string `yaml:"binance_base"`    // REST, например https://api.binance.us
	BinanceWSBase string `yaml:"binance_ws_base"` // user-data stream
	APIKey        string `yaml:"-"`
	APISecret     string `yaml:"-"`

	// Вебхук
	TVPassphrase string `yaml:"-"`

	// Торговые параметры
	MaxPositions       int     `yaml:"max_positions"`        // лимит одновременных позиций
	TPPct              float64 `yaml:"tp_pct"`               // тейк в % от цены входа
	SLPct              float64 `yaml:"sl_pct"`               // стоп в % от цены входа
	DefaultNotionalPct float64 `yaml:"default_notional_pct"` // если алерт не прислал notional_pct

	// Управляемые инструменты: единый список базовых активов + одна котируемая
	// валюта. Символ и событие LONG_<BASE> выводятся из одного списка, чтобы
	// маппинг и набор символов не разъезжались.
	BaseAssets []string `yaml:"base_assets"`
	QuoteAsset string   `yaml:"quote_asset"`

	// User-data stream (уведомления об исполнении выходов)
	UserStream bool `yaml:"user_stream"`

	// Telegram
	TelegramBotToken string `yaml:"-"`
	TelegramChatID   int64  `yaml:"-"`

	// Jaeger; пустой host — трейсинг выключен
	JaegerHost string `yaml:"jaeger_host"`
	JaegerPort int    `yaml:"jaeger_port"`

	LogLevel string `yaml:"log_level"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BinanceBase:        "https://api.binance.us",
		BinanceWSBase:      "wss://stream.binance.us:9443",
		MaxPositions:       1,
		TPPct:              15,
		SLPct:              6,
		DefaultNotionalPct: 5,
		BaseAssets:         []string{"SOL", "JUP", "BONK"},
		QuoteAsset:         "USDT",
		JaegerPort:         6831,
		LogLevel:           "info",
	}
	cfg.Service.Host = "0.0.0.0"
	cfg.Service.PublicPort = 8080

	if name := os.Getenv(configFilePathENV); name != "" {
		file, err := os.Open("configs/" + name)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer func() { _ = file.Close() }()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	cfg.Service.Host = getenvDefault("SERVICE_HOST", cfg.Service.Host)
	cfg.Service.PublicPort = intFromEnv("PUBLIC_PORT", cfg.Service.PublicPort)

	cfg.BinanceBase = strings.TrimRight(getenvDefault("BINANCE_BASE", cfg.BinanceBase), "/")
	cfg.BinanceWSBase = getenvDefault("BINANCE_WS_BASE", cfg.BinanceWSBase)
	cfg.APIKey = os.Getenv("BINANCE_API_KEY")
	cfg.APISecret = os.Getenv("BINANCE_API_SECRET")
	cfg.TVPassphrase = os.Getenv("TV_PASSPHRASE")

	cfg.MaxPositions = intFromEnv("MAX_CONCURRENT_POSITIONS", cfg.MaxPositions)
	cfg.TPPct = floatFromEnv("TP_PCT", cfg.TPPct)
	cfg.SLPct = floatFromEnv("SL_PCT", cfg.SLPct)
	cfg.DefaultNotionalPct = floatFromEnv("DEFAULT_NOTIONAL_PCT", cfg.DefaultNotionalPct)
	cfg.UserStream = boolFromEnv("USER_STREAM", cfg.UserStream)

	if v := os.Getenv("BASE_ASSETS"); v != "" {
		cfg.BaseAssets = splitAssets(v)
	}
	cfg.QuoteAsset = getenvDefault("QUOTE_ASSET", cfg.QuoteAsset)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}

	cfg.JaegerHost = getenvDefault("JAEGER_HOST", cfg.JaegerHost)
	cfg.JaegerPort = intFromEnv("JAEGER_PORT", cfg.JaegerPort)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)

	if len(cfg.BaseAssets) == 0 {
		return nil, fmt.Errorf("config: base asset list is empty")
	}
	if cfg.QuoteAsset == "" {
		return nil, fmt.Errorf("config: quote asset is empty")
	}
	if cfg.TPPct <= 0 || cfg.SLPct <= 0 {
		return nil, fmt.Errorf("config: TP_PCT and SL_PCT must be positive")
	}
	return cfg, nil
}

// ListenAddr — адрес публичного HTTP (вебхук + health).
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.PublicPort)
}

// Symbols — управляемые торговые пары: <BASE><QUOTE>.
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.BaseAssets))
	for _, b := range c.BaseAssets {
		out = append(out, b+c.QuoteAsset)
	}
	return out
}

func splitAssets(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
