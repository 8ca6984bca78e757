// Package config загружает конфигурацию портала из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"portal"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"l2portal"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Игровой сервер бразильский, расписание фоновых задач живёт по Сан-Паулу
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`

	// --- Notifications ---
	// Пустой токен — уведомления уходят только в лог (notify.Noop)
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`

	// --- Admin ---
	// Argon2id-хеш пароля админ-панели, генерируется scripts/generate_hash.go,
	// проверяется internal/auth.VerifyPassword
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" default:""`

	// --- Auction ---
	// Cron-выражение обхода истёкших аукционов
	AuctionSweepSpec string `envconfig:"AUCTION_SWEEP_SPEC" default:"@every 1m"`
	// Максимальная длительность аукциона в часах (валидация при создании лота)
	AuctionMaxDurationHours int `envconfig:"AUCTION_MAX_DURATION_HOURS" default:"168"`

	// --- Boxes ---
	BoxMaxBoosters int `envconfig:"BOX_MAX_BOOSTERS" default:"50"`

	// --- Wallet ---
	WalletStartingBalance string `envconfig:"WALLET_STARTING_BALANCE" default:"0.00"`

	// --- Feature Flags ---
	FeatureBoxesEnabled    bool `envconfig:"FEATURE_BOXES_ENABLED" default:"true"`
	FeatureRouletteEnabled bool `envconfig:"FEATURE_ROULETTE_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// StartingBalance возвращает стартовый баланс нового кошелька.
// Значение уже проверено в Validate, ошибка здесь невозможна.
func (c *Config) StartingBalance() decimal.Decimal {
	d, _ := decimal.NewFromString(c.WalletStartingBalance)
	return d
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.AuctionSweepSpec == "" {
		return fmt.Errorf("AUCTION_SWEEP_SPEC не задан")
	}
	if c.AuctionMaxDurationHours <= 0 {
		return fmt.Errorf("AUCTION_MAX_DURATION_HOURS должен быть > 0")
	}
	if c.BoxMaxBoosters <= 0 {
		return fmt.Errorf("BOX_MAX_BOOSTERS должен быть > 0")
	}
	d, err := decimal.NewFromString(c.WalletStartingBalance)
	if err != nil {
		return fmt.Errorf("WALLET_STARTING_BALANCE не число: %w", err)
	}
	if d.IsNegative() {
		return fmt.Errorf("WALLET_STARTING_BALANCE не может быть отрицательным")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
