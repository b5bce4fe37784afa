package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"pcsteps/internal/config"
	"pcsteps/internal/services/twelvelabs"
)

const indexCheckTimeout = 15 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCredentials reports whether an indexing service API key is configured.
func CheckCredentials(cfg *config.Config) Result {
	const name = "Indexer API key"
	if err := cfg.ValidateIndexer(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckIndexService verifies the service accepts the API key by looking up
// the configured index by name. A missing index passes; it is created on the
// first run unless an explicit index id is configured.
func CheckIndexService(ctx context.Context, lookup IndexLookup, indexID, indexName string) Result {
	const name = "Indexing service"

	checkCtx, cancel := context.WithTimeout(ctx, indexCheckTimeout)
	defer cancel()

	index, found, err := lookup.FindIndex(checkCtx, indexName)
	switch {
	case err != nil:
		return Result{Name: name, Detail: summarizeServiceError(err)}
	case indexID != "":
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable; using index id %s", indexID)}
	case found:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("index %q exists (%s)", indexName, index.ID)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable; index %q will be created", indexName)}
	}
}

func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (service unreachable)"
	}
	var apiErr *twelvelabs.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "authentication failed (check indexer.api_key)"
		case http.StatusTooManyRequests:
			return "rate limited; try again later"
		}
	}
	return err.Error()
}
