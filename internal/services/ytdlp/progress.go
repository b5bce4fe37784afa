package ytdlp

import (
	"regexp"
	"strconv"
	"strings"
)

// ProgressUpdate captures one yt-dlp download progress line.
type ProgressUpdate struct {
	Percent float64
	Total   string
	Speed   string
	ETA     string
}

// [download]  45.3% of ~  120.50MiB at    2.00MiB/s ETA 00:40 (frag 3/20)
var progressPattern = regexp.MustCompile(`^\[download\]\s+([0-9.]+)%(?:\s+of\s+~?\s*(\S+))?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

func parseProgress(line string) (ProgressUpdate, bool) {
	match := progressPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{
		Percent: percent,
		Total:   match[2],
		Speed:   match[3],
		ETA:     match[4],
	}, true
}
