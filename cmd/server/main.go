package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "portfolio-generator/internal/adapter/http"
	"portfolio-generator/internal/bootstrap"
	"portfolio-generator/internal/config"
	"portfolio-generator/internal/logger"
	"portfolio-generator/internal/observability"

	"github.com/gofiber/fiber/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	shutdownTracing := observability.InitTracing(ctx, log, cfg.TracingStdout)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	store, closeStore, err := bootstrap.TemplateStore(ctx, cfg)
	if err != nil {
		log.Fatal("template store init failed", "source", cfg.TemplateSource, "error", err)
	}
	defer closeStore()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Warn("storage not available, continuing without persistence", "error", err)
		storage = bootstrap.EmptyStorage()
	}
	defer storage.Close()

	processor := bootstrap.Processor(cfg, store, bootstrap.Converter(cfg), storage, log)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(httpadapter.RequestLogger(log))
	httpadapter.NewHandler(processor, storage.Exports).Register(app)

	go func() {
		log.Info("server listening", "port", cfg.Port, "templates", cfg.TemplateSource, "converter", cfg.PDFConverter)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
