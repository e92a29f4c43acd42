package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/store"
	"github.com/quizdeck/quizdeck/internal/worker"
)

const usage = `quizdeck - flashcard study client

Usage:
  quizdeck <command> [flags]

Commands:
  login       log in and persist the session
  register    create an account
  logout      clear the stored session
  whoami      show the current user
  quizzes     list quizzes
  create      create a quiz and open the flashcard editor
  edit        open the flashcard editor for a quiz
  delete      delete a quiz
  publish     publish a draft quiz
  archive     archive a quiz
  export      download a quiz export blob
  study       run a learn or test session
  resume      resubmit an interrupted test session
  stats       show dashboard statistics
  tags        list tags
  generate    draft flashcards for a quiz with an LLM

Run 'quizdeck <command> -h' for command flags.`

// app wires the pieces every command needs. It replaces ambient globals:
// auth and session context travel through this struct, not package state.
type app struct {
	cfg    config.Config
	client *api.Client
	auth   *auth.Manager
	pool   *worker.Pool
	log    *logger.Logger
}

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	a := &app{cfg: cfg, log: log}
	// The manager needs the client for login calls and the client needs
	// the manager as its token source; SetBackend closes the cycle.
	a.auth = auth.NewManager(cfg.CredentialsPath, nil)
	a.client = api.New(cfg.APIBaseURL, a.auth)
	a.auth.SetBackend(a.client)

	if err := a.auth.Restore(); err != nil {
		log.Warn("could not restore session: %v", err)
	}

	a.pool = worker.NewPool(cfg.JobWorkerCount, cfg.JobQueueSize)
	ctx := context.Background()
	a.pool.Start(ctx)
	defer a.pool.Drain()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.auth.Logout()
	case "whoami":
		return a.cmdWhoami(ctx)
	case "quizzes":
		return a.cmdQuizzes(ctx, args)
	case "create":
		return a.cmdCreate(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "publish":
		return a.cmdSetStatus(ctx, args, "publish")
	case "archive":
		return a.cmdSetStatus(ctx, args, "archive")
	case "export":
		return a.cmdExport(ctx, args)
	case "study":
		return a.cmdStudy(ctx, args)
	case "resume":
		return a.cmdResume(ctx, args)
	case "stats":
		return a.cmdStats(ctx)
	case "tags":
		return a.cmdTags(ctx)
	case "generate":
		return a.cmdGenerate(ctx, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireLogin fails fast when no usable session exists.
func (a *app) requireLogin() error {
	if !a.auth.LoggedIn() {
		return fmt.Errorf("not logged in; run 'quizdeck login' first")
	}
	return nil
}

// openStore opens the local journal/cache database.
func (a *app) openStore() (*store.Store, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	return store.Open(a.cfg.JournalPath)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}
