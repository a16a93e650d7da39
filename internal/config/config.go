package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default configuration values.
const (
	DefaultListenAddr   = ":8080"
	DefaultDatabasePath = "edusphere.db"
	DefaultJWTIssuer    = "edusphere"
	DefaultHistoryLimit = 50
	DefaultServerURL    = "ws://localhost:8080/ws"
	DefaultSTUN         = "stun:stun.l.google.com:19302"
)

// Server holds the gateway server configuration.
type Server struct {
	ListenAddr   string
	DatabasePath string
	JWTSecret    string
	JWTIssuer    string
	HistoryLimit int

	// SeedUsers is a comma-separated list of "id:name" pairs created at
	// startup so a fresh database has subjects to resolve tokens against.
	SeedUsers string
}

// ServerOptions are CLI flag overrides for the server config.
type ServerOptions struct {
	ListenAddr   string
	DatabasePath string
	JWTSecret    string
	HistoryLimit int
	SeedUsers    string
}

// LoadServer reads server configuration with the following priority:
// 1. CLI flags (passed via ServerOptions) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func LoadServer(opts ServerOptions) (*Server, error) {
	addr := opts.ListenAddr
	if addr == "" {
		addr = os.Getenv("LISTEN_ADDR")
	}
	if addr == "" {
		addr = DefaultListenAddr
	}

	dbPath := opts.DatabasePath
	if dbPath == "" {
		dbPath = os.Getenv("DATABASE_PATH")
	}
	if dbPath == "" {
		dbPath = DefaultDatabasePath
	}

	secret := opts.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = DefaultJWTIssuer
	}

	limit := opts.HistoryLimit
	if limit == 0 {
		if v := os.Getenv("HISTORY_LIMIT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid HISTORY_LIMIT %q", v)
			}
			limit = n
		}
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	seed := opts.SeedUsers
	if seed == "" {
		seed = os.Getenv("SEED_USERS")
	}

	return &Server{
		ListenAddr:   addr,
		DatabasePath: dbPath,
		JWTSecret:    secret,
		JWTIssuer:    issuer,
		HistoryLimit: limit,
		SeedUsers:    seed,
	}, nil
}

// Peer holds the headless participant configuration.
type Peer struct {
	ServerURL string
	Token     string

	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// PeerOptions are CLI flag overrides for the peer config.
type PeerOptions struct {
	ServerURL  string
	Token      string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// LoadPeer reads peer configuration with the same flag > env > default
// layering as LoadServer.
func LoadPeer(opts PeerOptions) (*Peer, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("SERVER_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	token := opts.Token
	if token == "" {
		token = os.Getenv("EDUSPHERE_TOKEN")
	}

	stun := opts.STUNServer
	if stun == "" {
		stun = os.Getenv("STUN_SERVER")
	}
	if stun == "" {
		stun = DefaultSTUN
	}

	turn := opts.TURNServer
	if turn == "" {
		turn = os.Getenv("TURN_SERVER")
	}

	turnUser := opts.TURNUser
	if turnUser == "" {
		turnUser = os.Getenv("TURN_USERNAME")
	}

	turnPass := opts.TURNPass
	if turnPass == "" {
		turnPass = os.Getenv("TURN_PASSWORD")
	}

	return &Peer{
		ServerURL:  serverURL,
		Token:      token,
		STUNServer: stun,
		TURNServer: turn,
		TURNUser:   turnUser,
		TURNPass:   turnPass,
	}, nil
}

// GetSTUNServers returns STUN server URLs as strings.
func (c *Peer) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured.
func (c *Peer) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{c.TURNServer}
}

// GetTURNCredentials returns the TURN username and password.
func (c *Peer) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
