package main

import (
	"context"
	"flag"
	"log"
	"os"

	"MakerLens/internal/di"
	"MakerLens/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	tradesFile := flag.String("trades", "", "trade history file (overrides config)")
	l2Dir := flag.String("l2-dir", "", "L2 capture directory (overrides config)")
	priceLog := flag.String("pricelog", "", "price log CSV (overrides config)")
	serve := flag.Bool("serve", false, "keep serving the API after the run")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *tradesFile != "" {
		cfg.Data.TradesFile = *tradesFile
	}
	if *l2Dir != "" {
		cfg.Data.L2Dir = *l2Dir
	}
	if *priceLog != "" {
		cfg.Data.PriceLogFile = *priceLog
	}
	if cfg.Data.TradesFile == "" || cfg.Data.L2Dir == "" {
		log.Fatal("trades file and L2 directory are required")
	}

	log.Printf("env=%s backend=%s trades=%s", cfg.Environment, cfg.Backend.Type, cfg.Data.TradesFile)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(context.Background(), *serve); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
