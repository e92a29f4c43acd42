package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptRequired(label, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	v, err := prompt(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password (prompted when omitted)")
	fs.Parse(args)

	e, err := promptRequired("Email", *email)
	if err != nil {
		return err
	}
	p, err := promptRequired("Password", *password)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, e, p)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "Account email")
	username := fs.String("username", "", "Display name")
	password := fs.String("password", "", "Account password (prompted when omitted)")
	fs.Parse(args)

	e, err := promptRequired("Email", *email)
	if err != nil {
		return err
	}
	u, err := promptRequired("Username", *username)
	if err != nil {
		return err
	}
	p, err := promptRequired("Password", *password)
	if err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, e, u, p)
	if err != nil {
		return err
	}
	fmt.Printf("registered as %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	user := a.auth.User()
	if user == nil {
		// Token restored without a cached user; ask the backend.
		fetched, err := a.client.Me(ctx)
		if err != nil {
			return err
		}
		user = fetched
	}
	fmt.Printf("%s (%s)\n", user.Username, user.Email)
	return nil
}
