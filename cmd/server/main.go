package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/devbharu/EduSphere-sub001/internal/auth"
	"github.com/devbharu/EduSphere-sub001/internal/config"
	"github.com/devbharu/EduSphere-sub001/internal/gateway"
	"github.com/devbharu/EduSphere-sub001/internal/logging"
	"github.com/devbharu/EduSphere-sub001/internal/server"
	"github.com/devbharu/EduSphere-sub001/internal/store"
)

func main() {
	logging.Init("gateway")

	var opts config.ServerOptions
	flag.StringVar(&opts.ListenAddr, "listen", "", "listen address (default :8080)")
	flag.StringVar(&opts.DatabasePath, "db", "", "sqlite database path")
	flag.StringVar(&opts.JWTSecret, "jwt-secret", "", "token signing secret")
	flag.IntVar(&opts.HistoryLimit, "history-limit", 0, "chat history reply bound")
	flag.StringVar(&opts.SeedUsers, "seed-users", "", "comma-separated id:name pairs to create at startup")
	flag.Parse()

	cfg, err := config.LoadServer(opts)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("store open failed", "path", cfg.DatabasePath, "err", err)
		os.Exit(1)
	}

	if err := seedUsers(st, cfg.SeedUsers); err != nil {
		slog.Error("user seeding failed", "err", err)
		os.Exit(1)
	}

	authenticator := auth.NewAuthenticator(auth.Config{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	}, st.Users)

	hub := gateway.NewHub(st.Messages, cfg.HistoryLimit)
	go hub.Run()

	mux := server.Routes(hub, st, authenticator)

	slog.Info("starting realtime gateway", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// seedUsers creates any missing users named in the "id:name,id:name"
// seed list so a fresh database has subjects to resolve tokens against.
func seedUsers(st *store.Store, seed string) error {
	if seed == "" {
		return nil
	}
	for _, pair := range strings.Split(seed, ",") {
		id, name, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" || name == "" {
			continue
		}
		if err := st.Users.Ensure(&store.User{ID: id, Name: name}); err != nil {
			return err
		}
		slog.Info("seeded user", "id", id, "name", name)
	}
	return nil
}
