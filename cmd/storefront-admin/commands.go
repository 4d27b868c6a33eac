package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	"github.com/jerseyretro/storefront/internal/bootstrap"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/data"
	"github.com/jerseyretro/storefront/internal/devseed"
	"github.com/jerseyretro/storefront/internal/domain/model"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/jerseyretro/storefront/internal/service"
)

type adminAccounts interface {
	CreateAdmin(ctx context.Context, in service.CreateAdminInput) (*model.User, error)
	MakeAdmin(ctx context.Context, email string) (*model.User, error)
}

type timeoutOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

type createAdminOptions struct {
	timeoutOptions
	Email    string
	Password string
	Name     string
}

type makeAdminOptions struct {
	timeoutOptions
	Email string
}

func newFlagSet(name string, opts *timeoutOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the command")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")
	return fs
}

func parseTimeoutOnly(name string, args []string) (timeoutOptions, error) {
	var opts timeoutOptions
	fs := newFlagSet(name, &opts)
	if err := fs.Parse(args); err != nil {
		return timeoutOptions{}, err
	}
	if opts.Timeout <= 0 {
		return timeoutOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseCreateAdminFlags(args []string) (createAdminOptions, error) {
	var opts createAdminOptions
	fs := newFlagSet("create-admin", &opts.timeoutOptions)
	fs.StringVar(&opts.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&opts.Password, "password", "", "Password for a new provider account")
	fs.StringVar(&opts.Name, "name", "", "Display name (defaults to the email)")
	if err := fs.Parse(args); err != nil {
		return createAdminOptions{}, err
	}
	if strings.TrimSpace(opts.Email) == "" {
		return createAdminOptions{}, errors.New("--email is required")
	}
	if opts.Timeout <= 0 {
		return createAdminOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseMakeAdminFlags(args []string) (makeAdminOptions, error) {
	var opts makeAdminOptions
	fs := newFlagSet("make-admin", &opts.timeoutOptions)
	fs.StringVar(&opts.Email, "email", "", "Email of the user to promote (required)")
	if err := fs.Parse(args); err != nil {
		return makeAdminOptions{}, err
	}
	if strings.TrimSpace(opts.Email) == "" {
		return makeAdminOptions{}, errors.New("--email is required")
	}
	if opts.Timeout <= 0 {
		return makeAdminOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutOnly("migrate", args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.InfoContext(ctx, "running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		return writef(cmdCtx.Out, "migrations completed\n")
	})
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateAdminFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.timeoutOptions, func(ctx context.Context, db *sql.DB) error {
		svc, svcErr := newAdminAccounts(cmdCtx, data.NewUserRepo(db))
		if svcErr != nil {
			return svcErr
		}
		return createAdmin(ctx, svc, opts, cmdCtx.Out)
	})
}

func runMakeAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseMakeAdminFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.timeoutOptions, func(ctx context.Context, db *sql.DB) error {
		svc, svcErr := newAdminAccounts(cmdCtx, data.NewUserRepo(db))
		if svcErr != nil {
			return svcErr
		}
		return makeAdmin(ctx, svc, opts.Email, cmdCtx.Out)
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutOnly("db-seed", args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts, func(ctx context.Context, db *sql.DB) error {
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		catalog := service.NewCatalogService(service.CatalogServiceOptions{
			Repos: service.CatalogRepositories{
				Products:   data.NewProductRepo(db),
				Categories: data.NewCategoryRepo(db),
				Images:     data.NewProductImageRepo(db),
			},
			Storage: service.CatalogStorage{Telemetry: service.Telemetry{Logger: cmdCtx.Logger}},
		})
		if seedErr := devseed.Run(ctx, devseed.Services{Catalog: catalog}, cmdCtx.Logger); seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}
		return writef(cmdCtx.Out, "seed completed\n")
	})
}

func createAdmin(ctx context.Context, svc adminAccounts, opts createAdminOptions, out io.Writer) error {
	user, err := svc.CreateAdmin(ctx, service.CreateAdminInput{
		Email:    opts.Email,
		Password: opts.Password,
		Name:     opts.Name,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return writef(out, "admin ready: %s (%s) id=%s\n", user.Email, user.Name, user.ID)
}

func makeAdmin(ctx context.Context, svc adminAccounts, email string, out io.Writer) error {
	user, err := svc.MakeAdmin(ctx, email)
	if err != nil {
		return fmt.Errorf("make admin: %w", err)
	}
	return writef(out, "%s is now %s\n", user.Email, user.Role)
}

// newAdminAccounts wires provider account administration when a service key is configured.
// In mock mode the provider lives inside the server process, so only the users row is touched.
func newAdminAccounts(cmdCtx *commandContext, users core.UserRepository) (*service.AdminAccountService, error) {
	accounts, err := providerAdmin(cmdCtx.Config.Auth)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		cmdCtx.Logger.Warn("provider account administration unavailable; updating users table only",
			"auth_mode", cmdCtx.Config.Auth.Mode)
	}
	return service.NewAdminAccountService(service.AdminAccountServiceOptions{
		Users:     users,
		Accounts:  accounts,
		Telemetry: service.Telemetry{Logger: cmdCtx.Logger},
	}), nil
}

//nolint:ireturn // nil interface when no service key is configured.
func providerAdmin(auth config.AuthConfig) (ports.AccountAdmin, error) {
	if auth.Mode != config.AuthModeGoTrue || auth.GoTrue.URL == "" || auth.GoTrue.ServiceKey == "" {
		return nil, nil
	}
	admin, err := gotrue.NewAdmin(auth.GoTrue.URL, auth.GoTrue.ServiceKey, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("create provider admin client: %w", err)
	}
	return admin, nil
}

func withDatabase(
	cmdCtx *commandContext,
	opts timeoutOptions,
	f func(context.Context, *sql.DB) error,
) error {
	if err := guardRemoteHost(cmdCtx.Config.Postgres.Host, opts.AllowRemote, os.Stdin, os.Stderr); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func guardRemoteHost(host string, allow bool, in io.Reader, out io.Writer) error {
	if !isLikelyRemoteHost(host) {
		return nil
	}
	if !allow {
		return fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	if err := writef(out, "\nWARNING: database host %q does not look like a local address.\n"+
		"Type %q to continue or press enter to abort: ", host, host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.New("aborted by user")
	}
	if strings.TrimSpace(resp) != host {
		return errors.New("aborted by user")
	}
	return nil
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	if h == "localhost" || h == "127.0.0.1" || h == "::1" || h == "postgres" || h == "db" {
		return false
	}
	if strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}
