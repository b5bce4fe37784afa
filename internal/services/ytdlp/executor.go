package ytdlp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts command execution for testability. onStdout receives
// each stdout line; stderr is kept for error reporting.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

const (
	stderrTailLines = 8
	maxLineBytes    = 32 * 1024 * 1024
)

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var (
		wg      sync.WaitGroup
		scanErr error
		once    sync.Once
		tailMu  sync.Mutex
		tail    []string
	)

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		// --dump-single-json prints the whole document on one line.
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	keepTail := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		tailMu.Lock()
		defer tailMu.Unlock()
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[len(tail)-stderrTailLines:]
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, keepTail)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("wait command: %w: %s", err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
