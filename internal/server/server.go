package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arimedia/mediaplanner/internal/config"
	"github.com/arimedia/mediaplanner/internal/inventory"
	"github.com/arimedia/mediaplanner/internal/provider"
	"github.com/arimedia/mediaplanner/internal/telemetry"
)

// Run starts the HTTP API server
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orch, tele, err := BuildOrchestrator(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer tele.Shutdown()

	h := &SelectionsHandler{Orchestrator: orch}
	h.Register(e.Group("/api"))

	return e.Start(cfg.Server.Addr)
}

// BuildOrchestrator wires the selection pipeline from configuration
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*inventory.Orchestrator, *telemetry.Telemetry, error) {
	llm, err := provider.New(cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	tele := telemetry.NewTelemetry(cfg.Telemetry)

	files := make(map[inventory.EntryType]string, len(cfg.Inventory.Types))
	for tag, ts := range cfg.Inventory.Types {
		files[inventory.EntryType(tag)] = ts.File
	}
	store := inventory.NewStore(cfg.Inventory.DataDir, files, nil)

	cache, err := inventory.NewCache(ctx, cfg.Cache, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating selection cache: %w", err)
	}

	client := inventory.NewClient(llm, tele, nil)
	orch := inventory.NewOrchestrator(cfg.Inventory, store, client, cache, tele, nil)
	return orch, tele, nil
}
