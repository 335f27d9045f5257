package ytdlp

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	progressTag = "[download]"
	rateMarker  = " at "
	etaMarker   = " ETA "
)

// ProgressSignal is the progress carried by one line of yt-dlp output.
type ProgressSignal struct {
	Percent    float32
	HasPercent bool
	Rate       string
}

// ParseProgressLine extracts progress from a `[download]` line printed with
// --newline. It reports false when the line carries no usable signal.
//
//	[download]  42.5% of 100MiB at 3.21MiB/s ETA 00:10
func ParseProgressLine(line string) (ProgressSignal, bool) {
	if !strings.Contains(line, progressTag) {
		return ProgressSignal{}, false
	}
	if !strings.Contains(line, "%") {
		return ProgressSignal{}, false
	}

	var signal ProgressSignal
	if percent, ok := extractPercent(line); ok {
		signal.Percent = percent
		signal.HasPercent = true
	}
	if rate, ok := extractRate(line); ok {
		signal.Rate = rate
	}

	if !signal.HasPercent && signal.Rate == "" {
		return ProgressSignal{}, false
	}
	return signal, true
}

// extractPercent parses the word ending at the last '%' in the line.
func extractPercent(line string) (float32, bool) {
	end := strings.LastIndex(line, "%")
	if end < 0 {
		return 0, false
	}
	head := line[:end]
	start := strings.LastIndexFunc(head, unicode.IsSpace) + 1
	token := head[start:]
	if token == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 32)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return float32(value), true
}

func extractRate(line string) (string, bool) {
	at := strings.Index(line, rateMarker)
	if at < 0 {
		return "", false
	}
	rest := line[at+len(rateMarker):]
	eta := strings.Index(rest, etaMarker)
	if eta < 0 {
		return "", false
	}
	rate := strings.TrimSpace(rest[:eta])
	if rate == "" {
		return "", false
	}
	return rate, true
}

// ClampPercent converts a parsed percentage to the 0-100 integer kept per task.
func ClampPercent(percent float32) int {
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return 100
	default:
		return int(percent)
	}
}
