package metadata

import (
	"errors"
	"regexp"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/|youtube\.com/live/)([^&\n?#/]+)`),
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([^&\n?#]+)`),
}

// ErrNoVideoID is returned when a URL carries no recognizable video id.
var ErrNoVideoID = errors.New("no video id in url")

// ExtractVideoID pulls the video identifier out of the common YouTube URL
// shapes.
func ExtractVideoID(url string) (string, error) {
	url = strings.TrimSpace(url)
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil && match[1] != "" {
			return match[1], nil
		}
	}
	return "", ErrNoVideoID
}
