package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/sentence-dash/server/internal/api"
	"github.com/sentence-dash/server/internal/audit"
	"github.com/sentence-dash/server/internal/catalog"
	"github.com/sentence-dash/server/internal/config"
	"github.com/sentence-dash/server/internal/game"
	"github.com/sentence-dash/server/internal/storage"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`sentencedash - guess-the-sentence party game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT              Port to listen on (default: 8080)
  DB_PATH           SQLite database for prompts and the audit trail (default: sentencedash.db)
  TIMEOUT_SECONDS   Idle seconds before a game is evicted (default: 60)
  SWEEP_INTERVAL    How often the background sweep runs (default: 30s)
  CODE_MIN          Lower bound of the game code range (default: 1000)
  CODE_MAX          Upper bound of the game code range (default: 9999)
  AUDIT_BUFFER      Queued audit events before dropping (default: 64)
  ALLOW_ORIGINS     Comma-separated CORS origins (default: *)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("sentencedash %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)
	logger := zerologlog.Logger

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// Collaborator state lives in SQLite. Losing it degrades the catalog and
	// the audit trail but never the game itself.
	var auditor game.Auditor = game.NopAuditor{}
	var source catalog.Source
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("storage unavailable, running without prompt pool and audit trail")
	} else {
		defer db.Close()
		source = db
		dispatcher := audit.NewDispatcher(db, cfg.AuditBuffer, logger)
		defer dispatcher.Close()
		auditor = dispatcher
	}

	cat := catalog.New(source, logger)
	if err := cat.Load(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("prompt pool degraded to fallback")
	}

	store := game.NewStore(cfg.Timeout(), cfg.CodeMin, cfg.CodeMax, logger)
	engine := game.NewEngine(store, cat, auditor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Sweep(ctx, cfg.SweepInterval)

	gin.SetMode(gin.ReleaseMode)
	r := api.NewRouter(engine, cfg.AllowOrigins)

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
