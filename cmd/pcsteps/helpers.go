package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"pcsteps/internal/config"
)

// resolveArtifact accepts either an artifact path or a source video id whose
// artifact lives under the configured output directory.
func resolveArtifact(cfg *config.Config, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("artifact path or video id is required")
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}
		return path, nil
	}
	if strings.ContainsAny(arg, `/\`) || strings.HasSuffix(arg, ".json") {
		return path, nil
	}
	return cfg.ArtifactPath(arg), nil
}
