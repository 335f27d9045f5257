package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/app"
	"github.com/NikitaDmitryuk/ani-dl/internal/catalog"
	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/database"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader/manager"
	ytdlp "github.com/NikitaDmitryuk/ani-dl/internal/downloader/video"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/player"
	"github.com/NikitaDmitryuk/ani-dl/internal/progress"
	"github.com/NikitaDmitryuk/ani-dl/internal/shutdown"
	"github.com/NikitaDmitryuk/ani-dl/internal/ui"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitInvalidArgs   = 2
	ExitConfigError   = 3
	ExitCatalogError  = 4
	ExitDatabaseError = 5
)

const (
	logFileMode     = 0o644
	shutdownTimeout = 5 * time.Second
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runInteractive()
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "history":
		return runHistory(cmdArgs, os.Stdout)
	case "version":
		fmt.Printf("%s %s (built %s)\n", config.AppName, Version, BuildTime)
		return ExitSuccess
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return ExitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: ani-dl [command]

Without a command ani-dl opens the interactive catalog browser.

Commands:
  history   List recent download batches, or show one with -id
  version   Print the version
  help      Show this help

Configuration is read from the environment (LOG_LEVEL, DOWNLOAD_PATH,
MAX_CONCURRENT_DOWNLOADS, CATALOG_URL, YTDLP_PATH, PLAYER_PATH, ...).`)
}

// setup loads the configuration and initializes the logger. Resources it
// opens are registered with sm.
func setup(sm *shutdown.Manager) (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logutils.InitLoggerWithOutput(cfg.LogLevel, f)
		sm.RegisterFunc("log file", f.Close)
	} else {
		logutils.InitLogger(cfg.LogLevel)
	}

	logutils.Log.WithFields(map[string]any{
		"version":    Version,
		"build_time": BuildTime,
	}).Info("Starting ani-dl")
	return cfg, nil
}

func closeAll(sm *shutdown.Manager) {
	if err := sm.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown: %v\n", err)
	}
}

// prepareTool checks the downloader binary before the menu opens and runs
// its self-update when enabled. Problems are reported on w and never end
// the session.
func prepareTool(ctx context.Context, tool downloader.Tool, update bool, w io.Writer) {
	version, err := tool.Check(ctx)
	if err != nil {
		logutils.Log.WithError(err).Warn("Downloader unavailable")
		if errors.Is(err, downloader.ErrToolMissing) {
			fmt.Fprintln(w, "Warning: yt-dlp not found, downloads will fail. Set YTDLP_PATH or install yt-dlp.")
		} else {
			fmt.Fprintf(w, "Warning: yt-dlp is not working: %v\n", err)
		}
		return
	}
	logutils.Log.WithField("version", version).Info("Downloader ready")

	if !update {
		return
	}
	if err := tool.Update(ctx); err != nil {
		logutils.Log.WithError(err).Warn("yt-dlp update failed")
		fmt.Fprintf(w, "Warning: yt-dlp update failed, continuing with %s\n", version)
	}
}

func runInteractive() int {
	sm := shutdown.NewManager(shutdownTimeout)
	defer closeAll(sm)

	cfg, err := setup(sm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		return ExitConfigError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := ytdlp.NewRunner(cfg.ToolSettings.YTDLPPath)
	prepareTool(ctx, runner, cfg.ToolSettings.UpdateOnStart, os.Stderr)

	fmt.Print("Loading catalog... ")
	animes, err := catalog.NewStoreFromConfig(cfg.CatalogSettings).Load(ctx)
	if err != nil {
		fmt.Println("failed")
		logutils.Log.WithError(err).Error("Failed to load catalog")
		fmt.Fprintf(os.Stderr, "Could not load the catalog: %v\n", err)
		return ExitCatalogError
	}
	fmt.Printf("%d titles\n", len(animes.Names()))

	var history database.HistoryWriter
	if cfg.HistorySettings.Enabled {
		db, err := database.NewDatabase(cfg)
		if err != nil {
			logutils.Log.WithError(err).Warn("Download history disabled")
		} else {
			sm.RegisterFunc("history database", db.Close)
			history = db
		}
	}

	reporter := progress.NewReporter(progress.Options{
		Output:         os.Stdout,
		UpdateInterval: cfg.DownloadSettings.ProgressUpdateInterval,
		Template:       cfg.DownloadSettings.ProgressTemplate,
	})
	downloadManager := manager.NewDownloadManager(
		runner,
		cfg.GetDownloadSettings(),
		manager.WithMonitor(reporter),
	)
	logutils.Log.WithField("workers", downloadManager.Workers()).Debug("Download manager initialized")

	application := app.New(cfg, app.Dependencies{
		Catalog:   animes,
		Prompter:  ui.NewMenu(),
		Downloads: downloadManager,
		Player:    player.NewPlayer(cfg.ToolSettings.PlayerPath),
		History:   history,
	})

	if err := application.Run(ctx); err != nil {
		logutils.Log.WithError(err).Error("Session ended with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
