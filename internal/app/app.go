// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы,
// диспетчер уведомлений и планировщик.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/config"
	"serotonyl.ru/l2portal/internal/db/postgres"
	"serotonyl.ru/l2portal/internal/features/auction"
	"serotonyl.ru/l2portal/internal/features/bag"
	"serotonyl.ru/l2portal/internal/features/boxes"
	"serotonyl.ru/l2portal/internal/features/inventory"
	"serotonyl.ru/l2portal/internal/features/roulette"
	"serotonyl.ru/l2portal/internal/features/wallet"
	"serotonyl.ru/l2portal/internal/jobs"
	"serotonyl.ru/l2portal/internal/notify"
)

// App содержит все компоненты приложения.
// Сервисы публичны: внешний HTTP-слой портала дергает именно их.
type App struct {
	DB        *pgxpool.Pool
	Scheduler *jobs.Scheduler

	WalletService   *wallet.Service
	AuctionService  *auction.Service
	BoxService      *boxes.Service
	RouletteService *roulette.Service
	InventoryRepo   *inventory.Repository
	BagRepo         *bag.Repository
	Notifier        notify.Notifier
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Диспетчер уведомлений ===
	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, pool)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания Telegram-диспетчера: %w", err)
		}
		notifier = tg
		log.Info("Уведомления: Telegram")
	} else {
		notifier = notify.NewNoop()
		log.Info("Уведомления: только лог (токен не задан)")
	}

	// === 3. Репозитории ===
	walletRepo := wallet.NewRepository(pool)
	inventoryRepo := inventory.NewRepository(pool)
	auctionRepo := auction.NewRepository(pool)
	bagRepo := bag.NewRepository(pool)
	boxRepo := boxes.NewRepository(pool)
	rouletteRepo := roulette.NewRepository(pool)

	// === 4. Сервисы ===
	walletService := wallet.NewService(walletRepo, cfg)
	auctionService := auction.NewService(auctionRepo, notifier, cfg)
	boxService := boxes.NewService(boxRepo, cfg)
	rouletteService := roulette.NewService(rouletteRepo, cfg)

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(auctionService, cfg)

	return &App{
		DB:              pool,
		Scheduler:       scheduler,
		WalletService:   walletService,
		AuctionService:  auctionService,
		BoxService:      boxService,
		RouletteService: rouletteService,
		InventoryRepo:   inventoryRepo,
		BagRepo:         bagRepo,
		Notifier:        notifier,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Wallets},
		{2, migration002Inventories},
		{3, migration003Auctions},
		{4, migration004Boxes},
		{5, migration005Bags},
		{6, migration006Roulette},
		{7, migration007Notifications},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Wallets = `
CREATE TABLE IF NOT EXISTS wallets (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    balance NUMERIC(12,2) NOT NULL DEFAULT 0,
    bonus_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
    fichas INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    CHECK (balance >= 0),
    CHECK (bonus_balance >= 0),
    CHECK (fichas >= 0)
);
CREATE TABLE IF NOT EXISTS wallet_entries (
    id BIGSERIAL PRIMARY KEY,
    wallet_id BIGINT NOT NULL REFERENCES wallets(id),
    direction VARCHAR(7) NOT NULL CHECK (direction IN ('ENTRADA', 'SAIDA')),
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    description TEXT,
    origin VARCHAR(64),
    destination VARCHAR(64),
    reference UUID NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS bonus_entries (
    id BIGSERIAL PRIMARY KEY,
    wallet_id BIGINT NOT NULL REFERENCES wallets(id),
    direction VARCHAR(7) NOT NULL CHECK (direction IN ('ENTRADA', 'SAIDA')),
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    description TEXT,
    origin VARCHAR(64),
    destination VARCHAR(64),
    reference UUID NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_wallet_entries_wallet ON wallet_entries(wallet_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bonus_entries_wallet ON bonus_entries(wallet_id, created_at DESC);
`

var migration002Inventories = `
CREATE TABLE IF NOT EXISTS inventories (
    id BIGSERIAL PRIMARY KEY,
    character_name VARCHAR(35) NOT NULL,
    holding BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (character_name, holding)
);
CREATE TABLE IF NOT EXISTS inventory_items (
    id BIGSERIAL PRIMARY KEY,
    inventory_id BIGINT NOT NULL REFERENCES inventories(id),
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    quantity INTEGER NOT NULL CHECK (quantity >= 0),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (inventory_id, item_id, enchant)
);
`

var migration003Auctions = `
CREATE TABLE IF NOT EXISTS auctions (
    id BIGSERIAL PRIMARY KEY,
    seller_user_id BIGINT NOT NULL,
    seller_character VARCHAR(35) NOT NULL,
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    starting_bid NUMERIC(12,2) NOT NULL CHECK (starting_bid > 0),
    current_bid NUMERIC(12,2),
    highest_bidder_user_id BIGINT,
    highest_bidder_character VARCHAR(35),
    end_time TIMESTAMP NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_auctions_status_end ON auctions(status, end_time);
CREATE TABLE IF NOT EXISTS bids (
    id BIGSERIAL PRIMARY KEY,
    auction_id BIGINT NOT NULL REFERENCES auctions(id),
    bidder_user_id BIGINT NOT NULL,
    bidder_character VARCHAR(35) NOT NULL,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bids_auction ON bids(auction_id, created_at DESC);
`

var migration004Boxes = `
CREATE TABLE IF NOT EXISTS box_types (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    price NUMERIC(12,2) NOT NULL CHECK (price > 0),
    boosters_amount INTEGER NOT NULL CHECK (boosters_amount > 0),
    chance_legendary DECIMAL(5,2) NOT NULL DEFAULT 0,
    chance_epic DECIMAL(5,2) NOT NULL DEFAULT 0,
    chance_rare DECIMAL(5,2) NOT NULL DEFAULT 0,
    chance_common DECIMAL(5,2) NOT NULL DEFAULT 100,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS box_type_items (
    id BIGSERIAL PRIMARY KEY,
    box_type_id BIGINT NOT NULL REFERENCES box_types(id),
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(128) NOT NULL,
    rarity VARCHAR(16) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_box_type_items_type ON box_type_items(box_type_id);
CREATE TABLE IF NOT EXISTS boxes (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    box_type_id BIGINT NOT NULL REFERENCES box_types(id),
    opened BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    opened_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_boxes_user ON boxes(user_id);
CREATE TABLE IF NOT EXISTS box_items (
    id BIGSERIAL PRIMARY KEY,
    box_id BIGINT NOT NULL REFERENCES boxes(id),
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(128) NOT NULL,
    rarity VARCHAR(16) NOT NULL,
    probability DECIMAL(8,4) NOT NULL DEFAULT 1.0
);
CREATE INDEX IF NOT EXISTS idx_box_items_box ON box_items(box_id);
`

var migration005Bags = `
CREATE TABLE IF NOT EXISTS bags (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS bag_items (
    id BIGSERIAL PRIMARY KEY,
    bag_id BIGINT NOT NULL REFERENCES bags(id),
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(128) NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (bag_id, item_id, enchant)
);
`

var migration006Roulette = `
CREATE TABLE IF NOT EXISTS roulette_prizes (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    item_id INTEGER NOT NULL,
    enchant INTEGER NOT NULL DEFAULT 0,
    weight DECIMAL(8,4) NOT NULL CHECK (weight > 0),
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS roulette_spins (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    prize_id BIGINT NOT NULL REFERENCES roulette_prizes(id),
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_roulette_spins_user ON roulette_spins(user_id, created_at DESC);
`

var migration007Notifications = `
CREATE TABLE IF NOT EXISTS notification_channels (
    user_id BIGINT PRIMARY KEY,
    telegram_chat_id BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
`
