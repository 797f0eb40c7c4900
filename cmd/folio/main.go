package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "migrate":
		err = runMigrate()
	case "hash-password":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: folio hash-password <password>")
			os.Exit(1)
		}
		err = runHashPassword(os.Args[2])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := folio.LoadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, folio.ViewFuncs{})
	defer app.Close()
	return app.Start(ctx)
}

func runMigrate() error {
	cfg, err := folio.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := folio.NewLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := folio.NewStore(context.Background(), cfg.DatabasePath, cfg.Vocabulary(), logger)
	if err != nil {
		return err
	}
	logger.Info("database is up to date", zap.String("path", cfg.DatabasePath))
	return store.Close()
}

func runHashPassword(pass string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Println(string(hash))
	return nil
}

func printUsage() {
	fmt.Println(`folio - a blog engine with positioned post images

Usage:
  folio <command> [arguments]

Commands:
  serve                    Run the web server
  migrate                  Apply database migrations and exit
  hash-password <password> Print a bcrypt hash for ADMIN_PASSWORD
  version                  Print the folio version
  help                     Show this help message

Configuration is read from the environment (SITE_NAME, SITE_URL,
ADMIN_PASSWORD, SESSION_SECRET, DATABASE_PATH, MAX_INDEXED_IMAGES, ...).`)
}
