package manager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
)

// RangeSelection is an inclusive pair of 0-based episode indexes.
type RangeSelection struct {
	Start int
	End   int
}

// Len is the number of episodes in the selection.
func (r RangeSelection) Len() int { return r.End - r.Start + 1 }

// NeedsRangeSelection reports whether a season is long enough to ask for a range.
func NeedsRangeSelection(episodeCount, threshold int) bool {
	return episodeCount > threshold
}

// ParseRange parses "<start>-<end>". It only checks the format.
func ParseRange(raw string) (RangeSelection, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return RangeSelection{}, fmt.Errorf("%w: expected <start>-<end>, got %q", downloader.ErrInvalidRangeFormat, raw)
	}

	start, err := parseIndex(parts[0])
	if err != nil {
		return RangeSelection{}, fmt.Errorf("%w: invalid first number %q", downloader.ErrInvalidRangeFormat, parts[0])
	}
	end, err := parseIndex(parts[1])
	if err != nil {
		return RangeSelection{}, fmt.Errorf("%w: invalid second number %q", downloader.ErrInvalidRangeFormat, parts[1])
	}

	return RangeSelection{Start: start, End: end}, nil
}

func parseIndex(token string) (int, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(token), 10, 31)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// SelectRange parses raw and checks it against a list of episodeCount episodes.
func SelectRange(raw string, episodeCount int) (RangeSelection, error) {
	sel, err := ParseRange(raw)
	if err != nil {
		return RangeSelection{}, err
	}
	if sel.Start > sel.End {
		return RangeSelection{}, fmt.Errorf("%w: start %d is after end %d", downloader.ErrRangeOutOfBounds, sel.Start, sel.End)
	}
	if sel.End >= episodeCount {
		return RangeSelection{}, fmt.Errorf("%w: end %d, last episode is %d", downloader.ErrRangeOutOfBounds, sel.End, episodeCount-1)
	}
	return sel, nil
}

// NarrowSources returns a copy of the selected sources, bounds included.
func NarrowSources(sources []string, sel RangeSelection) []string {
	narrowed := make([]string, sel.Len())
	copy(narrowed, sources[sel.Start:sel.End+1])
	return narrowed
}
