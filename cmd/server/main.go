package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/pizza_shop/internal/cart"
	"github.com/Skotchmaster/pizza_shop/internal/checkout"
	"github.com/Skotchmaster/pizza_shop/internal/config"
	"github.com/Skotchmaster/pizza_shop/internal/db"
	"github.com/Skotchmaster/pizza_shop/internal/httpserver"
	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/payment"
	"github.com/Skotchmaster/pizza_shop/internal/search"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:], os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	store, closeStore, err := openStore(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	var events ledger.Publisher
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		events = prod
	}

	index := &search.Index{Name: cfg.ESIndex}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
		client, err := search.NewClient(esCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		esCancel()
		if err != nil {
			logger.Warn("es_unavailable", "error", err)
		} else {
			index.ES = client
		}
	}

	store = storage.Prefixed(store, cfg.KeyPrefix)
	led := &ledger.Ledger{Store: store, Events: events}
	sessionCart := &cart.Cart{Store: store}
	circle := &payment.CircleProvider{Delay: time.Second}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		MenuHandler: &httpserver.MenuHTTP{Ledger: led, Index: index},
		CartHandler: &httpserver.CartHTTP{Cart: sessionCart, Ledger: led},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &checkout.Service{
			Ledger: led,
			Cart:   sessionCart,
			Circle: circle,
			Wallet: &payment.WalletProvider{Delay: 2 * time.Second},
		}},
		LedgerHandler:  &httpserver.LedgerHTTP{Ledger: led},
		PaymentHandler: &httpserver.PaymentHTTP{Circle: circle},
		AdminHandler: &httpserver.AdminHTTP{
			Ledger:       led,
			Index:        index,
			JWTSecret:    cfg.JWTSecret,
			PasswordHash: cfg.AdminPasswordHash,
		},
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_starting", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := closeStore(); err != nil {
		logger.Error("storage_close_error", "error", err)
	}
	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), func() error { return nil }, nil

	case config.DriverSQLite, config.DriverPostgres:
		gdb, err := db.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st := &storage.GormStore{DB: gdb}
		if err := st.Migrate(ctx); err != nil {
			_ = db.Close(gdb)
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return st, func() error { return db.Close(gdb) }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return &storage.RedisStore{Client: client}, client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
