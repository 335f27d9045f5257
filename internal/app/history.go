package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/database"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader/manager"
)

const historyTimeFormat = "2006-01-02 15:04"

func historyRecord(result *manager.Result) database.BatchRecord {
	record := database.BatchRecord{
		ID:         result.BatchID,
		Title:      result.Title,
		Dir:        result.Dir,
		Total:      result.Total,
		Completed:  result.Completed,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Episodes:   make([]database.EpisodeRecord, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		state := database.EpisodeFailed
		if o.State == downloader.StateSucceeded {
			state = database.EpisodeSucceeded
		}
		record.Episodes = append(record.Episodes, database.EpisodeRecord{
			Index:  o.Index,
			Source: o.Source,
			State:  state,
			Reason: o.Reason,
		})
	}
	return record
}

func summary(result *manager.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d/%d episodes downloaded to %s", result.Title, result.Completed, result.Total, result.Dir)
	for _, o := range result.Failed() {
		fmt.Fprintf(&sb, "\n  episode %d failed: %s", o.Index+1, o.Reason)
	}
	return sb.String()
}

// PrintHistory writes the given batches, newest first, one per line.
func PrintHistory(w io.Writer, batches []database.BatchRecord) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No downloads recorded")
		return
	}
	for _, b := range batches {
		fmt.Fprintf(w, "%s  %-40s %3d/%-3d %8s  %s\n",
			b.FinishedAt.Local().Format(historyTimeFormat),
			b.Title,
			b.Completed,
			b.Total,
			b.Duration().Round(time.Second),
			b.ID,
		)
	}
}

// PrintBatch writes one batch with the state of every episode.
func PrintBatch(w io.Writer, b database.BatchRecord) {
	fmt.Fprintf(w, "%s\n  id:       %s\n  dir:      %s\n  finished: %s\n  result:   %d/%d\n",
		b.Title, b.ID, b.Dir, b.FinishedAt.Local().Format(historyTimeFormat), b.Completed, b.Total)
	for _, ep := range b.Episodes {
		line := fmt.Sprintf("  episode %d: %s", ep.Number(), ep.State)
		if ep.Reason != "" {
			line += " (" + ep.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}
}
