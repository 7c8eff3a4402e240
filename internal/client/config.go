// Package client is the terminal front end: a local game against the
// computer or an online game through the HTTP API and the socket gateway.
package client

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

var ErrBadServerURL = errors.New("server url must be http or https")

type Config struct {
	Solo     bool
	Server   string
	Code     string
	PlayerID string
}

// ParseConfig reads the client flags from args into fs.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config

	fs.BoolVar(&cfg.Solo, "solo", false, "play against the computer without a server")
	fs.StringVar(&cfg.Server, "server", "http://localhost:9090", "game server base url")
	fs.StringVar(&cfg.Code, "code", "", "game code to join, a new game is created when empty")
	fs.StringVar(&cfg.PlayerID, "player", "", "player id, random when empty")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	if cfg.PlayerID == "" {
		cfg.PlayerID = uuid.NewString()
	}

	cfg.Code = entity.NormalizeCode(cfg.Code)
	cfg.Server = strings.TrimRight(cfg.Server, "/")

	if !cfg.Solo {
		parsed, err := url.Parse(cfg.Server)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return Config{}, ErrBadServerURL
		}
	}

	return cfg, nil
}

// socketURL turns the http base url into the gateway url.
func (that Config) socketURL() string {
	switch {
	case strings.HasPrefix(that.Server, "https://"):
		return "wss://" + strings.TrimPrefix(that.Server, "https://") + "/ws"
	default:
		return "ws://" + strings.TrimPrefix(that.Server, "http://") + "/ws"
	}
}
