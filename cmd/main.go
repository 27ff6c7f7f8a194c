package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"almacen-front/internal/backend"
	"almacen-front/internal/config"
	"almacen-front/internal/logger"
	"almacen-front/internal/routes"
	"almacen-front/internal/scale"
	"almacen-front/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting front office",
		zap.String("environment", env),
	)

	if cfg.Backend.BaseURL == "" {
		logger.Fatal("Backend URL is missing. Please set the BACKEND_URL environment variable.")
	}

	store, err := session.NewStore(cfg.Session.StatePath, cfg.Session.TokenSkew, cfg.Session.AutoLogoutMargin)
	if err != nil {
		logger.Fatal("Failed to open session state", zap.Error(err))
	}
	defer store.Close()

	store.OnExpire(func() {
		logger.Info("Session expired, front panel will be redirected to login")
	})

	watchdog := session.NewWatchdog(store, cfg.Session.WatchdogInterval)
	watchdog.Start()
	defer watchdog.Stop()

	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, store, func() {
		logger.Warn("Backend rejected the session token, operator must log in again")
	})

	feed := scale.NewFeed(cfg.Scale.DefaultUnit)
	defer feed.Close()
	if cfg.Scale.WebsocketURL != "" {
		feed.SetAddress(cfg.Scale.WebsocketURL)
	} else if cfg.Scale.Broker != "" {
		source, err := scale.NewMQTTSource(&scale.MQTTSourceConfig{
			Broker:   cfg.Scale.Broker,
			ClientID: cfg.Scale.ClientID,
			Topic:    cfg.Scale.Topic,
		}, feed)
		if err != nil {
			logger.Fatal("Invalid scale broker configuration", zap.Error(err))
		}
		if err := source.Start(); err != nil {
			logger.Warn("Scale broker unavailable, running without scale", zap.Error(err))
		} else {
			defer source.Stop()
		}
	} else {
		logger.Info("No scale configured, quantities are manual")
	}

	router := routes.SetupRoutes(cfg, store, api, feed)

	host := cfg.Server.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Front office listening",
			zap.String("address", addr),
			zap.String("backend", cfg.Backend.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
