package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/habitline/internal/api"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/keyring"
	"github.com/julianstephens/habitline/internal/logger"
)

// authenticator builds the API token issuer from the configured secret,
// falling back to the keyring entry
func (c *Context) authenticator(ttl time.Duration) (*api.Auth, error) {
	secret := c.Config.JWTSecret
	if secret == "" {
		s, err := keyring.Get(keyring.JWTSecretEntry)
		switch {
		case err == nil:
			secret = s
		case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
			logger.Debug("No API secret in keyring", "error", err)
		default:
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = c.Config.TokenTTL
	}
	return api.NewAuth(secret, ttl, c.Clock)
}

type ServeCmd struct {
	Addr string `help:"Listen address (default: HABITLINE_API_ADDR or :8080)."`
}

func (cmd *ServeCmd) Run(ctx *Context) error {
	auth, err := ctx.authenticator(0)
	if err != nil {
		if errors.Is(err, api.ErrMissingSecret) {
			return errors.New("no API secret configured, set " + constants.EnvJWTSecret + " or run 'habitline keyring set " + keyring.JWTSecretEntry + "'")
		}
		return err
	}

	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	addr := cmd.Addr
	if addr == "" {
		addr = ctx.Config.APIAddr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.printf("Serving the habitline API on %s (Ctrl+C to stop)\n", addr)
	return api.NewServer(addr, t, auth, ctx.Config.CORSOrigins, ctx.Config.TickInterval).Run(sigCtx)
}

type TokenCmd struct {
	Subject string        `help:"Token subject (default: the configured username)."`
	TTL     time.Duration `help:"Token lifetime (default: HABITLINE_TOKEN_TTL_HOURS)."`
}

func (cmd *TokenCmd) Run(ctx *Context) error {
	auth, err := ctx.authenticator(cmd.TTL)
	if err != nil {
		return err
	}

	subject := cmd.Subject
	if subject == "" {
		t, err := ctx.Tracker()
		if err != nil {
			return err
		}
		subject = t.Username()
	}

	token, err := auth.Issue(subject)
	if err != nil {
		return err
	}
	ctx.println(token)
	return nil
}
