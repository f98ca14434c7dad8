package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthCheck controls how long StartProcess waits for the backend to answer
type HealthCheck struct {
	Attempts int
	Interval time.Duration
}

// DefaultHealthCheck polls /profile ten times, half a second apart
var DefaultHealthCheck = HealthCheck{Attempts: 10, Interval: 500 * time.Millisecond}

const stderrTailLines = 20

// Process is a locally spawned desktop backend
type Process struct {
	cmd       *exec.Cmd
	client    *Client
	profile   *Profile
	stderr    *tailBuffer
	stderrEOF chan struct{}
	closeOnce sync.Once
}

// StartProcess launches the backend executable and waits until client can
// reach its /profile endpoint. The process is killed if it never becomes healthy.
func StartProcess(ctx context.Context, exe string, args []string, client *Client, hc HealthCheck) (*Process, error) {
	if hc.Attempts <= 0 {
		hc = DefaultHealthCheck
	}

	cmd := exec.Command(exe, args...)

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start backend: %w", err)
	}

	p := &Process{
		cmd:       cmd,
		client:    client,
		stderr:    &tailBuffer{max: stderrTailLines},
		stderrEOF: make(chan struct{}),
	}
	go p.readStderr(stderrPipe)

	log.Info().Str("exe", exe).Int("pid", cmd.Process.Pid).Msg("Backend process started")

	for i := 0; i < hc.Attempts; i++ {
		select {
		case <-ctx.Done():
			p.kill()
			return nil, ctx.Err()
		case <-time.After(hc.Interval):
		}

		profile, err := client.Profile(ctx)
		if err == nil {
			p.profile = profile
			log.Info().Str("name", profile.Name).Int("attempt", i+1).Msg("Backend process healthy")
			return p, nil
		}

		if i == hc.Attempts-1 {
			p.kill()
			return nil, fmt.Errorf("backend not healthy after %d attempts: %w\nbackend stderr: %s", hc.Attempts, err, p.stderr.String())
		}
	}

	return p, nil
}

// Profile returns the profile reported by the health check
func (p *Process) Profile() *Profile {
	return p.profile
}

// Terminate ends the backend session and stops the process
func (p *Process) Terminate(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		if cerr := p.client.CloseSession(ctx); cerr != nil {
			log.Debug().Err(cerr).Msg("Close session before terminate failed")
		}
		err = p.kill()
	})
	return err
}

func (p *Process) kill() error {
	if p.cmd.Process == nil {
		return nil
	}

	killErr := p.cmd.Process.Kill()
	<-p.stderrEOF
	_ = p.cmd.Wait()

	if killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop backend: %w", killErr)
	}
	log.Info().Int("pid", p.cmd.Process.Pid).Msg("Backend process stopped")
	return nil
}

// readStderr forwards backend stderr to the log, keeping the tail for errors
func (p *Process) readStderr(r io.Reader) {
	defer close(p.stderrEOF)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		p.stderr.Add(line)
		log.Debug().Str("source", "backend").Msg(line)
	}
}

type tailBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (t *tailBuffer) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.Join(t.lines, "\n")
}
