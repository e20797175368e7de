package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"sotto/internal/domain"
	"sotto/internal/relay"
	"sotto/internal/server"
	"sotto/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
		dbPath     = flag.String("db", "", "SQLite path, empty for in-memory (overrides config)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if isSet("db") {
		cfg.DB = *dbPath
	}
	if *debug {
		cfg.Debug = true
	}
	if !cfg.Debug {
		log = log.Level(zerolog.InfoLevel)
	}

	var st domain.RecordStore
	if cfg.DB == "" {
		log.Warn().Msg("no database path; state is in memory only")
		st = store.NewMemory()
	} else {
		sq, err := store.OpenSQLite(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DB).Msg("open database")
		}
		defer sq.Close()
		st = sq
	}

	hub := relay.NewHub(log)
	srv := server.New(st, hub, log)

	router := srv.Routes()
	router.Handle("/ws", relay.NewHandler(hub, srv.Authenticate, log))

	log.Info().Str("addr", cfg.Addr).Msg("sottod listening")
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

// isSet reports whether a flag was given on the command line, so an
// explicit -db "" can select the in-memory store over the config file.
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
