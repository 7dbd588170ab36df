package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eldritch-elbow/rock-paper-etc/internal/config"
	"github.com/eldritch-elbow/rock-paper-etc/internal/otel"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
	"github.com/eldritch-elbow/rock-paper-etc/internal/ws"
)

type serverConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	OriginAllowlist []string      `env:"ORIGIN_ALLOWLIST" envSeparator:","`
	RulesPath       string        `env:"RPS_RULES,required"`
	RoundDelay      time.Duration `env:"RPS_ROUND_DELAY" envDefault:"1s"`
	MaxRounds       int           `env:"RPS_MAX_ROUNDS" envDefault:"25"`
	Tracing         otel.Config   `envPrefix:"RPS_OTEL_"`
}

func (c *serverConfig) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("RPS_MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	if c.RoundDelay < 0 {
		return fmt.Errorf("RPS_ROUND_DELAY must not be negative, got %s", c.RoundDelay)
	}
	if len(c.OriginAllowlist) == 0 {
		c.OriginAllowlist = []string{"http://localhost:" + c.Port, "http://127.0.0.1:" + c.Port}
	}
	return nil
}

func main() {
	log.SetPrefix("[SERVER] ")

	cfg, err := config.Load[serverConfig]()
	if err != nil {
		config.Exitf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "rps-server", cfg.Tracing)
	if err != nil {
		log.Printf("otel setup: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	engine, err := rules.LoadFile(cfg.RulesPath)
	if err != nil {
		config.Exitf("%v", err)
	}
	log.Printf("loaded %d tokens from %s", engine.Len(), cfg.RulesPath)

	hub := ws.NewHub(engine, cfg.OriginAllowlist, ws.Settings{
		RoundDelay: cfg.RoundDelay,
		MaxRounds:  cfg.MaxRounds,
	})
	go hub.Run()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: cors(cfg.OriginAllowlist, mux)}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Printf("server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func cors(allow []string, next http.Handler) http.Handler {
	allowSet := map[string]struct{}{}
	for _, a := range allow {
		if a != "" {
			allowSet[a] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
