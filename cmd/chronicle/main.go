package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/elvenpost/chronicle/internal/app"
	"github.com/elvenpost/chronicle/internal/config"
	"github.com/elvenpost/chronicle/internal/logger"
	"github.com/elvenpost/chronicle/internal/metrics"
	"github.com/elvenpost/chronicle/internal/scheduler"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	chronicle := app.New(cfg)
	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		log.Fatalf("scheduler error: %v", err)
	}

	run := func() {
		if err := chronicle.RunOnce(context.Background()); err != nil {
			logger.Error("chronicle run failed", "error", err)
		}
	}

	if err := sched.ScheduleDaily(cfg.DigestTime, run); err != nil {
		log.Fatalf("schedule error: %v", err)
	}

	if cfg.SendOnStart {
		sched.RunNow(run)
	}

	logger.Info("waiting for the appointed hour", "time", cfg.DigestTime, "timezone", cfg.Timezone)
	sched.Start()
	select {}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
