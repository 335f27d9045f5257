package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/catalog"
	"github.com/NikitaDmitryuk/ani-dl/internal/database"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader/manager"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/testutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/ui"
)

func TestMain(m *testing.M) {
	logutils.InitLogger("error")
	os.Exit(m.Run())
}

type step struct {
	kind  string
	value any
	err   error
}

// scriptedPrompter answers prompts from a fixed script and quits once it runs out.
type scriptedPrompter struct {
	t        *testing.T
	steps    []step
	notified []string
	seasons  [][]catalog.Media
}

func (p *scriptedPrompter) next(kind string) step {
	p.t.Helper()
	if len(p.steps) == 0 {
		return step{kind: kind, err: ui.ErrQuit}
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	if s.kind != kind {
		p.t.Fatalf("expected prompt %q, got %q", s.kind, kind)
	}
	return s
}

func (p *scriptedPrompter) SelectTitle([]string) (string, error) {
	s := p.next("title")
	v, _ := s.value.(string)
	return v, s.err
}

func (p *scriptedPrompter) SelectLanguage() (string, error) {
	s := p.next("language")
	v, _ := s.value.(string)
	return v, s.err
}

func (p *scriptedPrompter) SelectSeason(seasons []catalog.Media) (catalog.Media, error) {
	p.seasons = append(p.seasons, seasons)
	s := p.next("season")
	if s.err != nil {
		return catalog.Media{}, s.err
	}
	return seasons[s.value.(int)], nil
}

func (p *scriptedPrompter) SelectAction() (ui.Action, error) {
	s := p.next("action")
	v, _ := s.value.(ui.Action)
	return v, s.err
}

func (p *scriptedPrompter) ReadRange(int) (string, error) {
	s := p.next("range")
	v, _ := s.value.(string)
	return v, s.err
}

func (p *scriptedPrompter) SelectEpisode(int) (int, error) {
	s := p.next("episode")
	v, _ := s.value.(int)
	return v, s.err
}

func (p *scriptedPrompter) Notify(message string) {
	p.notified = append(p.notified, message)
}

func (p *scriptedPrompter) saw(substr string) bool {
	for _, n := range p.notified {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

type fakeBatchRunner struct {
	batches []manager.Batch
	err     error
}

func (f *fakeBatchRunner) Run(_ context.Context, batch manager.Batch) (*manager.Result, error) {
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return nil, f.err
	}
	result := &manager.Result{
		BatchID:    batch.ID,
		Title:      batch.Title,
		Dir:        batch.Dir,
		Total:      len(batch.Sources),
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	for i, src := range batch.Sources {
		o := downloader.Outcome{Index: i, Source: src, State: downloader.StateSucceeded}
		if strings.Contains(src, "bad") {
			o.State = downloader.StateFailed
			o.Reason = "exit failure"
		} else {
			result.Completed++
		}
		result.Outcomes = append(result.Outcomes, o)
	}
	return result, nil
}

type fakePlayer struct {
	played []string
	err    error
}

func (f *fakePlayer) Play(_ context.Context, source string) error {
	f.played = append(f.played, source)
	return f.err
}

func episodes(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + string(rune('a'+i%26)) + strings.Repeat("x", i/26)
	}
	return out
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Media: []catalog.Media{
		{Name: "Naruto/Shippuden", Lang: "vostfr", Season: 2, Episodes: episodes("n2", 3)},
		{Name: "Naruto/Shippuden", Lang: "vostfr", Season: 1, Episodes: append(episodes("n1", 2), "n1-bad")},
		{Name: "Naruto/Shippuden", Lang: "vf", Season: 1, Episodes: episodes("n1vf", 2)},
		{Name: "Long Show", Lang: "vostfr", Season: 1, Episodes: episodes("ls", 30)},
	}}
}

type harness struct {
	app      *Application
	prompter *scriptedPrompter
	runner   *fakeBatchRunner
	player   *fakePlayer
	history  database.Database
	dir      string
}

func newHarness(t *testing.T, steps ...step) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := testutils.TestConfig(dir)
	h := &harness{
		prompter: &scriptedPrompter{t: t, steps: steps},
		runner:   &fakeBatchRunner{},
		player:   &fakePlayer{},
		history:  testutils.TestDatabase(t),
		dir:      dir,
	}
	h.app = New(cfg, Dependencies{
		Catalog:   testCatalog(),
		Prompter:  h.prompter,
		Downloads: h.runner,
		Player:    h.player,
		History:   h.history,
	})
	return h
}

func TestRun_DownloadSeasonRecordsHistory(t *testing.T) {
	h := newHarness(t,
		step{kind: "title", value: "Naruto/Shippuden"},
		step{kind: "language", value: catalog.LangVOSTFR},
		step{kind: "season", value: 0},
		step{kind: "action", value: ui.ActionDownload},
	)

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(h.runner.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(h.runner.batches))
	}
	batch := h.runner.batches[0]
	if batch.Title != "Naruto/Shippuden season 1" {
		t.Errorf("batch title = %q", batch.Title)
	}
	if batch.Dir != filepath.Join(h.dir, "Naruto_Shippuden") {
		t.Errorf("batch dir = %q", batch.Dir)
	}
	if len(batch.Sources) != 3 {
		t.Errorf("expected the whole season, got %v", batch.Sources)
	}
	if seasons := h.prompter.seasons[0]; seasons[0].Season != 1 || seasons[1].Season != 2 {
		t.Errorf("seasons not sorted: %v", seasons)
	}
	if !h.prompter.saw("2/3 episodes downloaded") || !h.prompter.saw("episode 3 failed: exit failure") {
		t.Errorf("missing summary: %v", h.prompter.notified)
	}

	record, err := h.history.GetBatch(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("history not recorded: %v", err)
	}
	if record.Completed != 2 || len(record.Episodes) != 3 || record.Episodes[2].State != database.EpisodeFailed {
		t.Errorf("unexpected history record: %+v", record)
	}
}

func TestRun_LargeSeasonAsksForRange(t *testing.T) {
	h := newHarness(t,
		step{kind: "title", value: "Long Show"},
		step{kind: "season", value: 0},
		step{kind: "action", value: ui.ActionDownload},
		step{kind: "range", value: "0-4"},
	)

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !h.prompter.saw("No VF available") {
		t.Error("expected the missing VF notice")
	}
	if len(h.runner.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(h.runner.batches))
	}
	all := testCatalog().Media[3].Episodes
	got := h.runner.batches[0].Sources
	if len(got) != 5 || got[0] != all[0] || got[4] != all[4] {
		t.Errorf("unexpected narrowed sources: %v", got)
	}
}

func TestRun_InvalidRangeReturnsToMenu(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad format", "five"},
		{"reversed", "7-3"},
		{"out of bounds", "10-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t,
				step{kind: "title", value: "Long Show"},
				step{kind: "season", value: 0},
				step{kind: "action", value: ui.ActionDownload},
				step{kind: "range", value: tt.input},
				step{kind: "season", err: ui.ErrBack},
				step{kind: "title", err: ui.ErrBack},
			)

			if err := h.app.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(h.runner.batches) != 0 {
				t.Errorf("no batch may start after an invalid range")
			}
			if !h.prompter.saw("Invalid episode range") {
				t.Errorf("expected range error notice, got %v", h.prompter.notified)
			}
		})
	}
}

func TestRun_PreflightErrorIsReported(t *testing.T) {
	h := newHarness(t,
		step{kind: "title", value: "Long Show"},
		step{kind: "season", value: 0},
		step{kind: "action", value: ui.ActionDownload},
		step{kind: "range", value: "0-1"},
	)
	h.runner.err = downloader.ErrDirectory

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.prompter.saw("Download failed") {
		t.Errorf("expected failure notice, got %v", h.prompter.notified)
	}
	list, err := h.history.ListBatches(context.Background(), 10)
	if err != nil || len(list) != 0 {
		t.Errorf("failed batch must not be recorded: %v %v", list, err)
	}
}

func TestRun_WatchPlaysSelectedEpisodes(t *testing.T) {
	h := newHarness(t,
		step{kind: "title", value: "Naruto/Shippuden"},
		step{kind: "language", value: catalog.LangVF},
		step{kind: "season", value: 0},
		step{kind: "action", value: ui.ActionWatch},
		step{kind: "episode", value: 2},
		step{kind: "episode", value: 1},
		step{kind: "episode", err: ui.ErrBack},
		step{kind: "language", err: ui.ErrBack},
		step{kind: "title", err: ui.ErrQuit},
	)
	h.player.err = errors.New("mpv exited")

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	vf := testCatalog().Media[2].Episodes
	if len(h.player.played) != 2 || h.player.played[0] != vf[1] || h.player.played[1] != vf[0] {
		t.Errorf("played %v", h.player.played)
	}
	if len(h.prompter.steps) != 0 {
		t.Errorf("unused script steps: %v", h.prompter.steps)
	}
}

func TestRun_BackNavigation(t *testing.T) {
	h := newHarness(t,
		step{kind: "title", value: "Naruto/Shippuden"},
		step{kind: "language", value: catalog.LangVOSTFR},
		step{kind: "season", err: ui.ErrBack},
		step{kind: "language", value: catalog.LangVOSTFR},
		step{kind: "season", value: 1},
		step{kind: "action", err: ui.ErrBack},
		step{kind: "language", err: ui.ErrBack},
		step{kind: "title", err: ui.ErrBack},
	)

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.prompter.steps) != 0 {
		t.Errorf("unused script steps: %v", h.prompter.steps)
	}
	if len(h.runner.batches) != 0 || len(h.player.played) != 0 {
		t.Error("no action should have run")
	}
}

func TestRun_PrompterErrorIsReturned(t *testing.T) {
	boom := errors.New("terminal gone")
	h := newHarness(t, step{kind: "title", err: boom})

	if err := h.app.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected prompter error, got %v", err)
	}
}

func TestRun_CanceledContextStops(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_EmptyCatalog(t *testing.T) {
	h := newHarness(t)
	h.app.catalog = &catalog.Catalog{}

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.prompter.saw("empty") {
		t.Errorf("expected empty catalog notice, got %v", h.prompter.notified)
	}
}
