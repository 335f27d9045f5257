package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/NikitaDmitryuk/ani-dl/internal/catalog"
	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/database"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader/manager"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/ui"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

// Prompter collects the user's choices. ui.ErrQuit ends the session and
// ui.ErrBack returns to the previous menu.
type Prompter interface {
	SelectTitle(names []string) (string, error)
	SelectLanguage() (string, error)
	SelectSeason(seasons []catalog.Media) (catalog.Media, error)
	SelectAction() (ui.Action, error)
	ReadRange(count int) (string, error)
	SelectEpisode(count int) (int, error)
	Notify(message string)
}

type BatchRunner interface {
	Run(ctx context.Context, batch manager.Batch) (*manager.Result, error)
}

type Player interface {
	Play(ctx context.Context, source string) error
}

// Dependencies wires an Application. History may be nil.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Prompter  Prompter
	Downloads BatchRunner
	Player    Player
	History   database.HistoryWriter
}

// Application is the interactive browse, download and watch session.
type Application struct {
	catalog        *catalog.Catalog
	prompter       Prompter
	downloads      BatchRunner
	player         Player
	history        database.HistoryWriter
	downloadPath   string
	rangeThreshold int
}

func New(cfg *config.Config, deps Dependencies) *Application {
	return &Application{
		catalog:        deps.Catalog,
		prompter:       deps.Prompter,
		downloads:      deps.Downloads,
		player:         deps.Player,
		history:        deps.History,
		downloadPath:   cfg.DownloadPath,
		rangeThreshold: cfg.DownloadSettings.RangePromptThreshold,
	}
}

// Run shows the title menu until the user quits or ctx is canceled.
func (a *Application) Run(ctx context.Context) error {
	names := a.catalog.Names()
	if len(names) == 0 {
		a.prompter.Notify("The catalog is empty")
		return nil
	}

	for ctx.Err() == nil {
		title, err := a.prompter.SelectTitle(names)
		if errors.Is(err, ui.ErrQuit) || errors.Is(err, ui.ErrBack) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := a.browseTitle(ctx, title); err != nil {
			if errors.Is(err, ui.ErrQuit) {
				return nil
			}
			return err
		}
	}
	return nil
}

// browseTitle runs the language, season and action menus of one title.
func (a *Application) browseTitle(ctx context.Context, title string) error {
	entries := a.catalog.Seasons(title)
	hasVF := catalog.HasLanguage(entries, catalog.LangVF)

	for ctx.Err() == nil {
		lang := catalog.LangVOSTFR
		if hasVF {
			selected, err := a.prompter.SelectLanguage()
			if errors.Is(err, ui.ErrBack) {
				return nil
			}
			if err != nil {
				return err
			}
			lang = selected
		} else {
			a.prompter.Notify("No VF available, showing VOSTFR")
		}

		seasons := catalog.SortBySeason(catalog.FilterLanguage(entries, lang))
		if len(seasons) == 0 {
			a.prompter.Notify(fmt.Sprintf("No %s seasons available", lang))
			if !hasVF {
				return nil
			}
			continue
		}

		media, err := a.prompter.SelectSeason(seasons)
		if errors.Is(err, ui.ErrBack) {
			if !hasVF {
				return nil
			}
			continue
		}
		if err != nil {
			return err
		}

		action, err := a.prompter.SelectAction()
		if errors.Is(err, ui.ErrBack) {
			continue
		}
		if err != nil {
			return err
		}

		switch action {
		case ui.ActionDownload:
			err = a.download(ctx, media)
		case ui.ActionWatch:
			err = a.watch(ctx, media)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) download(ctx context.Context, media catalog.Media) error {
	sources := media.Episodes
	if len(sources) == 0 {
		a.prompter.Notify("This season has no episodes")
		return nil
	}

	if manager.NeedsRangeSelection(len(sources), a.rangeThreshold) {
		a.prompter.Notify(fmt.Sprintf("More than %d episodes", a.rangeThreshold))
		raw, err := a.prompter.ReadRange(len(sources))
		if errors.Is(err, ui.ErrBack) {
			return nil
		}
		if err != nil {
			return err
		}

		sel, err := manager.SelectRange(raw, len(sources))
		if err != nil {
			a.prompter.Notify(fmt.Sprintf("Invalid episode range: %v", err))
			return nil
		}
		a.prompter.Notify(fmt.Sprintf("Downloading episodes %d to %d", sel.Start, sel.End))
		sources = manager.NarrowSources(sources, sel)
	}

	dir := filepath.Join(a.downloadPath, utils.SanitizeDirName(media.Name))
	batch := manager.NewBatch(fmt.Sprintf("%s %s", media.Name, media), dir, sources)

	result, err := a.downloads.Run(ctx, batch)
	if err != nil {
		logutils.Log.WithError(err).WithField("title", batch.Title).Error("Download could not start")
		a.prompter.Notify(fmt.Sprintf("Download failed: %v", err))
		return nil
	}

	a.prompter.Notify(summary(result))
	a.record(ctx, result)
	return nil
}

func (a *Application) watch(ctx context.Context, media catalog.Media) error {
	if len(media.Episodes) == 0 {
		a.prompter.Notify("This season has no episodes")
		return nil
	}

	for ctx.Err() == nil {
		number, err := a.prompter.SelectEpisode(len(media.Episodes))
		if errors.Is(err, ui.ErrBack) {
			return nil
		}
		if err != nil {
			return err
		}
		if number < 1 || number > len(media.Episodes) {
			continue
		}

		if err := a.player.Play(ctx, media.Episodes[number-1]); err != nil {
			logutils.Log.WithError(err).WithField("episode", number).Warn("Playback failed")
		}
	}
	return nil
}

func (a *Application) record(ctx context.Context, result *manager.Result) {
	if a.history == nil {
		return
	}
	// The batch has finished, so record it even if the session is being canceled.
	if err := a.history.RecordBatch(context.WithoutCancel(ctx), historyRecord(result)); err != nil {
		logutils.Log.WithError(err).WithField("batch_id", result.BatchID).Warn("Failed to record download history")
	}
}
