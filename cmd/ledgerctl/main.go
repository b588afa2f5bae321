package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/caisse_ledger/internal/cli"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	os.Exit(cli.Execute(logger))
}
