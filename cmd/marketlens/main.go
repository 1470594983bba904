package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketlens/marketlens/internal/api"
	"github.com/marketlens/marketlens/internal/artifact"
	"github.com/marketlens/marketlens/internal/collector"
	"github.com/marketlens/marketlens/internal/common"
	"github.com/marketlens/marketlens/internal/llm"
	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("marketlens: .env file not loaded", "error", err)
	} else {
		logger.Info("marketlens: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the workspace SQLite database")
	artifactRoot := flag.String("artifacts", defaultArtifactRoot(), "directory for rendered report artifacts")
	timeout := flag.String("timeout", "", "AI analysis budget override (e.g. 60s, 2m)")
	flag.Parse()

	logger.Info("marketlens: startup initiated", "addr", *addr, "db", *dbPath)

	pipelineCfg, err := report.LoadConfig()
	if err != nil {
		logger.Error("marketlens: pipeline config load failed", "error", err)
		fmt.Println("pipeline config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*timeout); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("marketlens: invalid timeout", "value", trimmed, "error", err)
			fmt.Println("timeout error:", err)
			os.Exit(1)
		}
		pipelineCfg.Timeout = dur
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("marketlens: store initialization failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	artifacts, err := artifact.NewStore(*artifactRoot)
	if err != nil {
		logger.Error("marketlens: artifact store initialization failed", "error", err)
		fmt.Println("artifact store error:", err)
		os.Exit(1)
	}

	dataCollector := collector.New(store, collector.WithMaxConcurrency(pipelineCfg.MaxConcurrency))
	persister := report.NewPersister(store, artifacts, pipelineCfg.MarkdownOnly)
	generator := report.NewGenerator(dataCollector, llm.NewProvider, persister,
		report.WithTimeout(pipelineCfg.Timeout))

	server, err := api.NewServer(generator, store, artifacts)
	if err != nil {
		logger.Error("marketlens: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("marketlens: server listening", "addr", *addr, "health", "/healthz",
		"ai_budget", pipelineCfg.Timeout)
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("marketlens: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "workspace.db")
}

func defaultArtifactRoot() string {
	return filepath.Join("data", "artifacts")
}
