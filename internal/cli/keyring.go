package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/julianstephens/habitline/internal/keyring"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a secret stored in the OS keyring."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Show which secrets are stored."`
}

type KeyringSetCmd struct {
	Entry  string `arg:"" enum:"storage-connection,api-jwt-secret" help:"Entry name (storage-connection or api-jwt-secret)."`
	Secret string `arg:"" optional:"" help:"Secret value; read from stdin when omitted."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	secret := c.Secret
	if secret == "" {
		in := ctx.In
		if in == nil {
			in = os.Stdin
		}
		ctx.printf("Enter value for %s: ", c.Entry)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return err
		}
		secret = strings.TrimSpace(line)
	}

	if err := keyring.Set(c.Entry, secret); err != nil {
		return err
	}
	ctx.printf("✓ Stored %s in the OS keyring\n", c.Entry)
	return nil
}

type KeyringGetCmd struct {
	Entry  string `arg:"" enum:"storage-connection,api-jwt-secret" help:"Entry name (storage-connection or api-jwt-secret)."`
	Reveal bool   `help:"Print the full secret instead of a masked version."`
}

func (c *KeyringGetCmd) Run(ctx *Context) error {
	secret, err := keyring.Get(c.Entry)
	if err != nil {
		return err
	}
	if !c.Reveal {
		secret = mask(secret)
	}
	ctx.println(secret)
	return nil
}

// mask keeps the first four characters of a secret
func mask(secret string) string {
	const visible = 4
	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}
	return secret[:visible] + strings.Repeat("*", len(secret)-visible)
}

type KeyringDeleteCmd struct {
	Entry string `arg:"" enum:"storage-connection,api-jwt-secret" help:"Entry name (storage-connection or api-jwt-secret)."`
}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.Delete(c.Entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.printf("%s is not stored in the keyring\n", c.Entry)
			return nil
		}
		return err
	}
	ctx.printf("✓ Removed %s from the OS keyring\n", c.Entry)
	return nil
}

type KeyringStatusCmd struct{}

func (c *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("OS keyring is not available on this system.")
		return nil
	}
	for _, entry := range keyring.Entries {
		_, err := keyring.Get(entry)
		switch {
		case err == nil:
			ctx.printf("  %-20s %s\n", entry, doneStyle.Render("stored"))
		case errors.Is(err, keyring.ErrNotFound):
			ctx.printf("  %-20s %s\n", entry, dimStyle.Render("not set"))
		default:
			ctx.printf("  %-20s %s\n", entry, errorStyle.Render(err.Error()))
		}
	}
	return nil
}
