// Package tbp implements the tank bot protocol: a line protocol that lets a
// tank algorithm run in a separate process. The host side (Engine) manages
// the subprocess and multiplexes any number of tank sessions over its
// stdin and stdout; the bot side (Serve) answers those requests.
package tbp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRequestTimeout bounds a single action or info exchange.
const DefaultRequestTimeout = 2 * time.Second

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("tbp: engine is closed")

// Engine wraps a bot subprocess. All exchanges are serialized, so one
// Engine may back sessions used by concurrent games.
type Engine struct {
	path string
	args []string

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	// RequestTimeout bounds each request/response exchange.
	RequestTimeout time.Duration

	mu      sync.Mutex
	closed  bool
	exited  chan struct{}
	nextSID int

	// call serializes request/response pairs.
	call sync.Mutex

	// Name is the bot's self-reported name, populated during Init.
	Name string
}

// NewEngine creates an Engine for the bot binary at path. The process is
// not started until Init is called.
func NewEngine(path string, args ...string) *Engine {
	return &Engine{
		path:           path,
		args:           args,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Init starts the bot and performs the handshake
// (tbp -> id/tbpok, isready -> readyok).
func (e *Engine) Init(ctx context.Context) error {
	if err := e.start(); err != nil {
		return fmt.Errorf("tbp: start bot: %w", err)
	}
	if err := e.handshake(ctx); err != nil {
		e.Close()
		return fmt.Errorf("tbp: handshake: %w", err)
	}
	return nil
}

// IsReady sends "isready" and blocks until "readyok" arrives.
func (e *Engine) IsReady(ctx context.Context) error {
	e.call.Lock()
	defer e.call.Unlock()
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.readUntil(ctx, "readyok")
}

// NewSession allocates a bot-side tank algorithm for the given player and
// tank index.
func (e *Engine) NewSession(player, tank int) *Session {
	e.mu.Lock()
	e.nextSID++
	sid := e.nextSID
	e.mu.Unlock()

	s := &Session{engine: e, id: sid, Ammo: -1}
	if err := e.send(fmt.Sprintf("new %d %d %d", sid, player, tank)); err != nil {
		s.err = err
	}
	return s
}

// Close sends "quit" and waits for the process to exit. A bot that is
// still running after 3 seconds is killed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if e.stdin != nil {
		fmt.Fprintf(e.stdin, "quit\n")
	}
	e.closed = true
	e.mu.Unlock()

	if e.stdin != nil {
		e.stdin.Close()
	}

	if e.exited != nil {
		select {
		case <-e.exited:
		case <-time.After(3 * time.Second):
			log.Warn().Str("bot", e.path).Msg("tbp: bot did not exit within 3s, killing")
			if e.cmd != nil && e.cmd.Process != nil {
				e.cmd.Process.Kill()
			}
			<-e.exited
		}
	}
	return nil
}

func (e *Engine) start() error {
	e.cmd = exec.Command(e.path, e.args...)

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	e.exited = make(chan struct{})
	go func() {
		e.cmd.Wait()
		close(e.exited)
	}()
	e.attach(stdin, stdout)
	return nil
}

// attach wires the engine to a bot's input and output streams and starts
// the reader goroutine.
func (e *Engine) attach(in io.WriteCloser, out io.Reader) {
	e.stdin = in
	e.lines = make(chan string, 64)
	if e.RequestTimeout <= 0 {
		e.RequestTimeout = DefaultRequestTimeout
	}
	go func() {
		defer close(e.lines)
		scanner := bufio.NewScanner(out)
		for scanner.Scan() {
			e.lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Debug().Err(err).Str("bot", e.path).Msg("tbp: read bot output")
		}
	}()
}

func (e *Engine) handshake(ctx context.Context) error {
	e.call.Lock()
	defer e.call.Unlock()

	if err := e.send("tbp"); err != nil {
		return err
	}
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			return fmt.Errorf("waiting for tbpok: %w", err)
		}
		if strings.HasPrefix(line, "id name ") {
			e.Name = strings.TrimPrefix(line, "id name ")
			continue
		}
		if line == "tbpok" {
			break
		}
	}

	if err := e.send("isready"); err != nil {
		return err
	}
	if err := e.readUntil(ctx, "readyok"); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

// request sends cmd plus any trailing lines, then returns the payload of
// the first "<prefix> <sid> ..." reply. Replies addressed to other
// sessions are late answers to timed-out requests and are dropped.
func (e *Engine) request(prefix string, sid int, cmd string, extra ...string) (string, error) {
	e.call.Lock()
	defer e.call.Unlock()

	if err := e.send(cmd, extra...); err != nil {
		return "", err
	}

	want := prefix + " " + strconv.Itoa(sid) + " "
	ctx, cancel := context.WithTimeout(context.Background(), e.RequestTimeout)
	defer cancel()
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, want) {
			return strings.TrimPrefix(line, want), nil
		}
		log.Debug().Str("bot", e.path).Int("session", sid).Str("line", line).Msg("tbp: dropping stale reply")
	}
}

func (e *Engine) readLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-e.lines:
		if !ok {
			return "", fmt.Errorf("bot closed stdout unexpectedly")
		}
		return line, nil
	case <-ctx.Done():
		return "", fmt.Errorf("context canceled: %w", ctx.Err())
	}
}

func (e *Engine) readUntil(ctx context.Context, expected string) error {
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", expected, err)
		}
		if line == expected {
			return nil
		}
	}
}

// send writes one or more lines to the bot's stdin.
func (e *Engine) send(line string, extra ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.stdin == nil {
		return ErrClosed
	}
	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	for _, l := range extra {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(e.stdin, b.String()); err != nil {
		return fmt.Errorf("tbp: write: %w", err)
	}
	return nil
}

func (e *Engine) free(sid int) {
	if err := e.send("free " + strconv.Itoa(sid)); err != nil && !errors.Is(err, ErrClosed) {
		log.Debug().Err(err).Int("session", sid).Msg("tbp: free session")
	}
}
