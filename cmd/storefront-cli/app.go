package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/jerseyretro/storefront/internal/adapters/apiclient"
	"github.com/jerseyretro/storefront/internal/authclient"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
)

// app is one CLI invocation: a started resolver plus the server's view of the caller.
type app struct {
	resolver *authclient.Resolver
	me       func(ctx context.Context) (*apiclient.Me, error)
	in       io.Reader
	out      io.Writer
}

type credentials struct {
	Email    string
	Password string
	Name     string
}

func parseCredentials(name string, args []string, withName bool, in io.Reader) (credentials, error) {
	var c credentials
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&c.Email, "email", "", "Account email")
	fs.StringVar(&c.Password, "password", "", "Password (read from STOREFRONT_PASSWORD or stdin when omitted)")
	if withName {
		fs.StringVar(&c.Name, "name", "", "Display name")
	}
	if err := fs.Parse(args); err != nil {
		return credentials{}, err
	}
	if c.Password == "" {
		c.Password = os.Getenv("STOREFRONT_PASSWORD")
	}
	if c.Password == "" && in != nil {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return credentials{}, err
		}
		c.Password = strings.TrimRight(line, "\r\n")
	}
	return c, nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	c, err := parseCredentials("login", args, false, a.in)
	if err != nil {
		return err
	}
	if err := a.resolver.SignIn(ctx, c.Email, c.Password); err != nil {
		return err
	}
	return printState(a.out, a.resolver.State())
}

func runSignup(ctx context.Context, a *app, args []string) error {
	c, err := parseCredentials("signup", args, true, a.in)
	if err != nil {
		return err
	}
	if err := a.resolver.SignUp(ctx, c.Email, c.Password, c.Name); err != nil {
		return err
	}
	return writef(a.out, "account created for %s; run login to sign in\n", c.Email)
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	a.resolver.SignOut(ctx)
	return writef(a.out, "signed out\n")
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	st := a.resolver.State()
	if err := printState(a.out, st); err != nil {
		return err
	}
	if st.Session == nil || st.Session.Origin != domainauth.OriginRemote || a.me == nil {
		return nil
	}
	me, err := a.me(ctx)
	if err != nil {
		return writef(a.out, "server check failed: %v\n", err)
	}
	return writef(a.out, "server: id=%s admin=%t\n", me.ID, me.IsAdmin)
}

func runWatch(ctx context.Context, a *app, _ []string) error {
	ch, cancel := a.resolver.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printState(a.out, st); err != nil {
				return err
			}
		}
	}
}

func printState(w io.Writer, st authclient.State) error {
	if st.Loading {
		return writef(w, "loading\n")
	}
	if st.Session == nil {
		return writef(w, "not signed in\n")
	}
	s := st.Session
	return writef(w, "signed in as %s (%s) origin=%s admin=%t\n", s.Email, s.DisplayName(), s.Origin, st.IsAdmin)
}
