package speech

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
)

// ExecBackend speaks through a local synthesizer command that reads the
// text on stdin, such as "espeak-ng --stdin". At most one process runs at a
// time; starting a new utterance kills the previous one first.
type ExecBackend struct {
	args []string

	mu      sync.Mutex
	current *exec.Cmd
	done    chan struct{}
}

func NewExecBackend(command string) (*ExecBackend, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse speech command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("speech command empty")
	}
	return &ExecBackend{args: args}, nil
}

// Available reports whether the synthesizer binary can be found.
func (e *ExecBackend) Available() bool {
	_, err := exec.LookPath(e.args[0])
	return err == nil
}

func (e *ExecBackend) CancelCurrent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *ExecBackend) SpeakAsync(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()

	cmd := exec.Command(e.args[0], e.args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Start(); err != nil {
		log.Printf("Speech: %v: %v", ErrSpeechUnavailable, err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && !isKilled(err) {
			log.Printf("Speech: synthesizer exited: %v", err)
		}
	}()
	e.current = cmd
	e.done = done
}

// Speaking reports whether a synthesizer process is still running.
func (e *ExecBackend) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// stopLocked kills the running process and waits for it to exit.
func (e *ExecBackend) stopLocked() {
	if e.current == nil {
		return
	}
	select {
	case <-e.done:
	default:
		_ = e.current.Process.Kill()
		<-e.done
	}
	e.current = nil
	e.done = nil
}

func isKilled(err error) bool {
	exitErr, ok := err.(*exec.ExitError)
	return ok && !exitErr.Exited()
}
