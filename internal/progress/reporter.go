package progress

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
)

const (
	defaultUpdateInterval = 200 * time.Millisecond
	barWidth              = 40

	// DefaultTemplate renders one task line.
	DefaultTemplate = `[{{.Elapsed}}] [{{.Bar}}] {{printf "%3d" .Percent}}% {{.Message}}`
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often to redraw.
	// Default: 200ms
	UpdateInterval time.Duration

	// Template is a text/template executed with a Line for every started task.
	// Default: DefaultTemplate
	Template string
}

// Line is the data available to the line template.
type Line struct {
	Number  int
	Percent int
	Rate    string
	State   string
	Elapsed string
	Bar     string
	Message string
}

// Reporter outputs human-readable progress for one batch at a time.
type Reporter struct {
	opts Options
	now  func() time.Time
	bar  bar.Model

	mu       sync.Mutex
	tmpl     *template.Template
	view     downloader.BatchView
	started  map[int]time.Time
	finished map[int]time.Time
	drawn    int
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = defaultUpdateInterval
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	return &Reporter{opts: opts, now: time.Now, bar: newBar()}
}

func newBar() bar.Model {
	return bar.New(
		bar.WithDefaultGradient(),
		bar.WithWidth(barWidth),
		bar.WithoutPercentage(),
	)
}

// Start validates the line template and begins redrawing view.
func (r *Reporter) Start(view downloader.BatchView) error {
	tmpl, err := template.New("line").Parse(r.opts.Template)
	if err != nil {
		return fmt.Errorf("parse progress template: %w", err)
	}
	if err := tmpl.Execute(io.Discard, Line{Number: 1, Bar: r.renderBar(0), Elapsed: formatElapsed(0)}); err != nil {
		return fmt.Errorf("execute progress template: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("progress reporter already running")
	}
	r.tmpl = tmpl
	r.view = view
	r.started = make(map[int]time.Time)
	r.finished = make(map[int]time.Time)
	r.drawn = 0
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.running = true

	go r.updateLoop(r.stopCh, r.doneCh)
	return nil
}

// Stop ends the redraw loop, draws the final state and prints the summary.
// Calling Stop on a reporter that is not running does nothing.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)
	<-doneCh

	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw()
	fmt.Fprintf(r.opts.Output, "Downloaded %d/%d episodes\n", r.view.Completed(), r.view.Total())
}

func (r *Reporter) updateLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.draw()
			r.mu.Unlock()
		}
	}
}

// draw rewrites the previously drawn block in place. Callers hold r.mu.
func (r *Reporter) draw() {
	lines := r.render()

	var buf bytes.Buffer
	if r.drawn > 0 {
		fmt.Fprintf(&buf, "\033[%dA", r.drawn)
	}
	for _, line := range lines {
		buf.WriteString("\r\033[2K")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	r.drawn = len(lines)
	_, _ = r.opts.Output.Write(buf.Bytes())
}

// render returns one line per task that has left the pending state, in task order.
func (r *Reporter) render() []string {
	now := r.now()
	total := r.view.Total()

	var lines []string
	for _, p := range r.view.Snapshot() {
		if p.State == downloader.StatePending {
			continue
		}
		startedAt, ok := r.started[p.Index]
		if !ok {
			startedAt = now
			r.started[p.Index] = now
		}
		end := now
		if p.State.IsTerminal() {
			if at, ok := r.finished[p.Index]; ok {
				end = at
			} else {
				r.finished[p.Index] = now
			}
		}

		line := Line{
			Number:  p.Index + 1,
			Percent: p.Percent,
			Rate:    p.Rate,
			State:   p.State.String(),
			Elapsed: formatElapsed(end.Sub(startedAt)),
			Bar:     r.renderBar(p.Percent),
			Message: message(p, total),
		}

		var sb strings.Builder
		if err := r.tmpl.Execute(&sb, line); err != nil {
			sb.Reset()
			sb.WriteString(line.Message)
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func message(p downloader.TaskProgress, total int) string {
	number := p.Index + 1
	switch p.State {
	case downloader.StateSucceeded:
		return fmt.Sprintf("Episode %d done (%d/%d)", number, p.Done, total)
	case downloader.StateFailed:
		return fmt.Sprintf("Episode %d failed: %s", number, p.Reason)
	default:
		if p.Rate == "" {
			return fmt.Sprintf("Episode %d", number)
		}
		return fmt.Sprintf("Episode %d | %s", number, p.Rate)
	}
}

func (r *Reporter) renderBar(percent int) string {
	return r.bar.ViewAs(float64(max(0, min(100, percent))) / 100)
}

// formatElapsed renders d as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
