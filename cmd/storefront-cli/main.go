// Command storefront-cli signs in to the storefront and reports the resolved session.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/apiclient"
	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	"github.com/jerseyretro/storefront/internal/adapters/localstore"
	"github.com/jerseyretro/storefront/internal/authclient"
	"github.com/jerseyretro/storefront/internal/bootstrap"
)

// remoteSlotName holds the provider session between runs.
const remoteSlotName = "remote_session"

type commandFn func(ctx context.Context, a *app, args []string) error

type command struct {
	description string
	run         commandFn
}

func commands() map[string]command {
	return map[string]command{
		"login":  {description: "Sign in with email and password", run: runLogin},
		"signup": {description: "Create an account", run: runSignup},
		"logout": {description: "Sign out and forget the local session", run: runLogout},
		"whoami": {description: "Show the current session and admin flag", run: runWhoami},
		"watch":  {description: "Print session changes until interrupted", run: runWatch},
	}
}

func main() {
	// Command output owns stdout.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if len(os.Args) < 2 {
		_ = printUsage(os.Stderr)
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}
	cmd, ok := commands()[os.Args[1]]
	if !ok {
		_ = writef(os.Stderr, "unknown command %q\n\n", os.Args[1])
		_ = printUsage(os.Stderr)
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	if err := run(cmd, os.Args[2:], logger); err != nil {
		_ = writef(os.Stderr, "error: %s\n", describeError(err))
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to callers
	}
}

func run(cmd command, args []string, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadClientConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.resolver.Close()

	a.resolver.Start(ctx)
	return cmd.run(ctx, a, args)
}

func newApp(cfg config.ClientConfig, logger *slog.Logger) (*app, error) {
	dir, err := localstore.Open(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	remoteSlot, err := dir.Slot(remoteSlotName)
	if err != nil {
		return nil, err
	}
	fallbackSlot, err := dir.Slot(authclient.FallbackSlotName)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	provider, err := gotrue.NewClient(gotrue.ClientConfig{
		URL:        cfg.AuthURL,
		APIKey:     cfg.AnonKey,
		HTTPClient: httpClient,
		Slot:       remoteSlot,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth client: %w", err)
	}
	api, err := apiclient.New(cfg.ServerURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	resolver := authclient.New(authclient.Options{
		Verifier:       provider,
		Bootstrap:      api,
		Signup:         api,
		Fallback:       fallbackSlot,
		BootstrapEmail: cfg.BootstrapEmail,
		Logger:         logger,
	})
	return &app{
		resolver: resolver,
		me: func(ctx context.Context) (*apiclient.Me, error) {
			return api.Me(ctx, provider.TokenSource(ctx))
		},
		in:  os.Stdin,
		out: os.Stdout,
	}, nil
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: storefront-cli <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-8s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func describeError(err error) string {
	var ae *authclient.Error
	if errors.As(err, &ae) {
		return fmt.Sprintf("%s (%s)", ae.Message, ae.Kind)
	}
	return err.Error()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
