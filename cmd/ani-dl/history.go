package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/NikitaDmitryuk/ani-dl/internal/app"
	"github.com/NikitaDmitryuk/ani-dl/internal/database"
	"github.com/NikitaDmitryuk/ani-dl/internal/shutdown"
)

func runHistory(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("n", 20, "number of batches to list")
	id := fs.String("id", "", "show the episodes of one batch")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Unexpected arguments: %v\n", fs.Args())
		return ExitInvalidArgs
	}

	sm := shutdown.NewManager(shutdownTimeout)
	defer closeAll(sm)

	cfg, err := setup(sm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		return ExitConfigError
	}

	if !cfg.HistorySettings.Enabled {
		fmt.Fprintln(os.Stderr, "Download history is disabled (HISTORY_ENABLED=false)")
		return ExitGeneralError
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history: %v\n", err)
		return ExitDatabaseError
	}
	sm.RegisterFunc("history database", db.Close)

	ctx := context.Background()
	if *id != "" {
		batch, err := db.GetBatch(ctx, *id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return ExitGeneralError
		}
		app.PrintBatch(out, batch)
		return ExitSuccess
	}

	batches, err := db.ListBatches(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list history: %v\n", err)
		return ExitDatabaseError
	}
	app.PrintHistory(out, batches)
	return ExitSuccess
}
