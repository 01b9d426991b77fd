package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/schedule"
	"github.com/KNICEX/market-pulse/internal/service/catalog"
	"github.com/KNICEX/market-pulse/internal/service/hub"
	"github.com/KNICEX/market-pulse/internal/service/notifier"
	"github.com/KNICEX/market-pulse/internal/web"
	"github.com/KNICEX/market-pulse/ioc"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	// .env 可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Errorf("load .env: %w", err))
	}

	viper.SetConfigFile(*file)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
}

func main() {
	initViper()
	ioc.InitLogger()

	db := ioc.InitDB()
	instrumentRepo := repo.NewInstrumentRepo(db)
	subscriptionRepo := repo.NewSubscriptionRepo(db)

	registry := ioc.InitRegistry(ioc.InitRedis())
	sink, closeSink := ioc.InitSink()
	defer func() {
		if err := closeSink(); err != nil {
			slog.Error("close notification sink", "error", err)
		}
	}()

	notifierCfg := ioc.NotifierCfg()
	reconcilerCfg := ioc.ReconcilerCfg()
	scheduler := ioc.InitScheduler(notifierCfg, instrumentRepo, subscriptionRepo, registry, sink)
	reconciler := ioc.InitReconciler(reconcilerCfg, instrumentRepo, registry)

	runner := schedule.NewRunner()
	if err := runner.Add(notifier.NewTask(scheduler), notifierCfg.Interval); err != nil {
		panic(err)
	}
	if err := runner.Add(catalog.NewTask(reconciler), reconcilerCfg.Interval); err != nil {
		panic(err)
	}
	runner.Start()
	defer runner.Stop()

	svc := hub.NewService(instrumentRepo, subscriptionRepo, registry, reconciler, scheduler)
	addr := viper.GetString("http.addr")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewServer(web.NewMarketHandler(svc)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
}
