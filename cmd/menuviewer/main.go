package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/menuqr/internal/config"
	"github.com/danmuck/menuqr/internal/ledger"
	"github.com/danmuck/menuqr/internal/observability"
	"github.com/danmuck/menuqr/internal/viewer"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfgPath := flag.String("config", "", "viewer config path (toml)")
	flag.Parse()

	config.LoadEnv()
	log.Logger = observability.InitLogger("menuviewer")
	gin.SetMode(gin.ReleaseMode)

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "menuviewer: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.LoadViewerConfig(cfgPath)
	if err != nil {
		return err
	}

	var store *ledger.Store
	if cfg.LedgerPath != "" {
		store, err = ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	v, err := viewer.New(cfg, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return v.Serve(ctx)
}
