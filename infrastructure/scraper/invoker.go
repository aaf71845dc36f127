package scraper

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ca-srg/usagemon/domain"
)

// exitGracePeriod bounds the secondary wait for process exit after output has
// been fully read. Past this point the exit status is advisory only.
const exitGracePeriod = 5 * time.Second

// ProcessInvoker spawns the scraper subprocess and captures its output
type ProcessInvoker interface {
	// Invoke runs the scraper with the given arguments and returns the raw
	// stdout and stderr bytes. The two streams are never merged; the
	// protocol distinguishes them.
	Invoke(ctx context.Context, args []string, timeout time.Duration) (stdout []byte, stderr []byte, err error)
}

// SubprocessInvoker is the exec-based ProcessInvoker. It performs no retries
// and no parsing; it is purely bytes in, bytes out.
type SubprocessInvoker struct {
	resolver  PathResolver
	pythonCmd string
	logger    domain.Logger
}

// NewSubprocessInvoker creates a new SubprocessInvoker. pythonCmd may be
// empty to use the platform default interpreter for .py scrapers.
func NewSubprocessInvoker(resolver PathResolver, pythonCmd string, logger domain.Logger) *SubprocessInvoker {
	if pythonCmd == "" {
		pythonCmd = defaultPythonCommand()
	}
	return &SubprocessInvoker{
		resolver:  resolver,
		pythonCmd: pythonCmd,
		logger:    logger,
	}
}

func defaultPythonCommand() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Invoke implements ProcessInvoker
func (s *SubprocessInvoker) Invoke(ctx context.Context, args []string, timeout time.Duration) ([]byte, []byte, error) {
	scraperPath, err := s.resolver.Resolve()
	if err != nil {
		return nil, nil, domain.ErrExecutionFailureWithCause("scraper resolution failed", err)
	}

	cmd := s.buildCommand(scraperPath, args)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, domain.ErrIoFailure("opening stdout pipe", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, domain.ErrIoFailure("opening stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, domain.ErrExecutionFailureWithCause("failed to spawn scraper process", err).
			WithDetails("path", scraperPath)
	}

	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdoutBuf, stderrBuf bytes.Buffer
	var group errgroup.Group
	group.Go(func() error {
		_, err := io.Copy(&stdoutBuf, stdoutPipe)
		return err
	})
	group.Go(func() error {
		_, err := io.Copy(&stderrBuf, stderrPipe)
		return err
	})

	readDone := make(chan error, 1)
	go func() {
		readDone <- group.Wait()
	}()

	select {
	case err := <-readDone:
		if err != nil {
			s.terminate(cmd)
			s.reap(cmd)
			return nil, nil, domain.ErrIoFailure("reading scraper output", err)
		}
	case <-readCtx.Done():
		// Termination is best effort: a failed kill is not surfaced as a
		// second error.
		s.terminate(cmd)
		<-readDone
		s.reap(cmd)
		if readCtx.Err() == context.DeadlineExceeded {
			return nil, nil, domain.ErrTimeout("scraper invocation", timeout.Seconds())
		}
		return nil, nil, domain.ErrIoFailure("scraper invocation cancelled", readCtx.Err())
	}

	// Output is fully captured; give the process a bounded window to exit.
	// Exit status is advisory from here on, so the captured output is used
	// even when the process has to be killed.
	s.reap(cmd)

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), nil
}

// reap waits for the process to exit so the kernel process entry and the pipe
// descriptors are released. Every return path must reap; a killed child that
// is never waited on lingers as a zombie. The wait is bounded, and a process
// that outlives it is killed again with its exit status discarded.
func (s *SubprocessInvoker) reap(cmd *exec.Cmd) {
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()
	select {
	case <-waitDone:
	case <-time.After(exitGracePeriod):
		s.terminate(cmd)
		<-waitDone
	}
}

// buildCommand prepares the exec.Cmd for the resolved scraper. Python scripts
// run under the configured interpreter; anything else is executed directly.
// The working directory is the scraper's containing directory when it exists,
// so the scraper finds its session files.
func (s *SubprocessInvoker) buildCommand(scraperPath string, args []string) *exec.Cmd {
	var cmd *exec.Cmd
	if strings.HasSuffix(scraperPath, ".py") {
		cmdArgs := append([]string{scraperPath}, args...)
		cmd = exec.Command(s.pythonCmd, cmdArgs...)
	} else {
		cmd = exec.Command(scraperPath, args...)
	}

	dir := filepath.Dir(scraperPath)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		cmd.Dir = dir
	}

	return cmd
}

func (s *SubprocessInvoker) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		if s.logger != nil {
			s.logger.Debug(context.Background(), "failed to kill scraper process",
				domain.NewField("error", err.Error()))
		}
	}
}
