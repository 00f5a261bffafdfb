package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"factotum-cli/internal/config"
	"factotum-cli/internal/events"
	"factotum-cli/internal/live"
	"factotum-cli/internal/logger"
	"factotum-cli/internal/render"
	"factotum-cli/internal/runtime"
	"factotum-cli/internal/timeline"

	"github.com/atotto/clipboard"
)

var log = logger.Named("repl")

// SessionRuntime is the slice of the gateway client the loop depends on,
// kept narrow so tests can fake it.
type SessionRuntime interface {
	CreateSession(ctx context.Context) (string, error)
	RunTurn(ctx context.Context, sessionID, prompt string) error
	Subscribe(ctx context.Context, sessionID string, onEvent func(events.Event)) error
	UploadContext(ctx context.Context, sessionID string, files map[string][]byte) error
	OutputFiles(ctx context.Context, sessionID string) ([]runtime.OutputFile, error)
	Kill(ctx context.Context, sessionID string) error
}

// Options configure the interactive loop.
type Options struct {
	Config         config.Config
	Client         SessionRuntime
	In             io.Reader
	Out            io.Writer
	Theme          render.Theme
	Width          int
	Banner         string
	WriteClipboard func(string) error // nil uses the system clipboard
}

// Loop hosts one session: it reads prompts, runs turns against the remote
// session, and drives the renderer through its live/final lifecycle.
type Loop struct {
	cfg    config.Config
	client SessionRuntime
	in     io.Reader
	out    io.Writer
	theme  render.Theme
	width  int
	banner string
	clip   func(string) error

	tl        *timeline.Timeline
	driver    *live.Driver
	lastReply string

	// inFlight counts events published but not yet folded into the timeline,
	// so a turn can drain the bus before its final render. Guarded by mu;
	// settled signals when the count reaches zero. New publishes may still
	// arrive while a drain waits, which a WaitGroup would not tolerate.
	mu       sync.Mutex
	settled  *sync.Cond
	inFlight int
}

func New(opts Options) *Loop {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	clip := opts.WriteClipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	tl := timeline.New()
	l := &Loop{
		cfg:    opts.Config,
		client: opts.Client,
		in:     in,
		out:    out,
		theme:  opts.Theme,
		width:  width,
		banner: opts.Banner,
		clip:   clip,
		tl:     tl,
		driver: live.NewDriver(live.Options{
			Theme:    opts.Theme,
			Snapshot: tl.Snapshot,
			Writer:   out,
			Width:    width,
		}),
	}
	l.settled = sync.NewCond(&l.mu)
	return l
}

// Run executes the interactive loop until the user quits or input ends.
func (l *Loop) Run(ctx context.Context) error {
	sessionID, err := l.client.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer l.kill(sessionID)

	// The gateway stream publishes into a bus and the timeline consumes from
	// it, so a stalled repaint can never back-pressure the HTTP read.
	bus := events.NewBus(256)
	defer bus.Close()
	go l.consume(bus.Subscribe())

	subCtx, stopSub := context.WithCancel(ctx)
	defer stopSub()
	go l.subscribe(subCtx, sessionID, bus)

	if l.banner != "" {
		fmt.Fprintln(l.out, l.banner)
		fmt.Fprintln(l.out)
	}

	scanner := bufio.NewScanner(l.in)
	for {
		fmt.Fprint(l.out, l.theme.Success.Render("you: "))
		if !scanner.Scan() {
			fmt.Fprintln(l.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := l.handleSlash(line); quit {
				fmt.Fprintln(l.out, l.theme.Muted.Render("goodbye"))
				return nil
			}
			continue
		}

		fmt.Fprintln(l.out)
		if err := l.runTurn(ctx, sessionID, line); err != nil {
			fmt.Fprintln(l.out, l.theme.Error.Render("turn failed: "+err.Error()))
		}
		fmt.Fprintln(l.out)
	}
}

// subscribe publishes the session's event stream onto the bus for the
// lifetime of the loop. Drops are already logged by the bus.
func (l *Loop) subscribe(ctx context.Context, sessionID string, bus *events.Bus) {
	err := l.client.Subscribe(ctx, sessionID, func(evt events.Event) {
		l.noteInFlight()
		if err := bus.Publish(evt); err != nil {
			l.noteFolded()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warnf("event stream ended: %v", err)
	}
}

// consume folds bus events into the timeline, nudging the live display after
// every mutation.
func (l *Loop) consume(ch <-chan events.Event) {
	for evt := range ch {
		l.tl.Apply(evt)
		l.driver.NotifyChanged()
		l.noteFolded()
	}
}

func (l *Loop) noteInFlight() {
	l.mu.Lock()
	l.inFlight++
	l.mu.Unlock()
}

func (l *Loop) noteFolded() {
	l.mu.Lock()
	l.inFlight--
	if l.inFlight == 0 {
		l.settled.Broadcast()
	}
	l.mu.Unlock()
}

// drainEvents blocks until every event published so far has been folded into
// the timeline.
func (l *Loop) drainEvents() {
	l.mu.Lock()
	for l.inFlight > 0 {
		l.settled.Wait()
	}
	l.mu.Unlock()
}

func (l *Loop) runTurn(ctx context.Context, sessionID, prompt string) error {
	l.tl.Reset()

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A keyboard interrupt cancels the turn; current state still flushes as
	// the final render.
	l.driver.Begin(cancel)

	if files, err := readInputFiles(l.cfg.InputDir); err != nil {
		log.Warnf("reading %s: %v", l.cfg.InputDir, err)
	} else if len(files) > 0 {
		if err := l.client.UploadContext(turnCtx, sessionID, files); err != nil {
			log.Warnf("upload context: %v", err)
		}
	}

	runErr := l.client.RunTurn(turnCtx, sessionID, prompt)
	l.drainEvents()
	endErr := l.driver.End()
	l.lastReply = finalReply(l.tl.Snapshot())

	l.downloadOutputs(ctx, sessionID)

	if runErr != nil && errors.Is(runErr, context.Canceled) && ctx.Err() == nil {
		fmt.Fprintln(l.out, l.theme.Muted.Render("turn interrupted"))
		return nil
	}
	if runErr != nil {
		return runErr
	}
	return endErr
}

func (l *Loop) downloadOutputs(ctx context.Context, sessionID string) {
	files, err := l.client.OutputFiles(ctx, sessionID)
	if err != nil {
		log.Warnf("output files: %v", err)
		return
	}
	saved, err := saveOutputFiles(l.cfg.OutputDir, files)
	if err != nil {
		log.Warnf("saving outputs: %v", err)
	}
	for _, path := range saved {
		fmt.Fprintln(l.out, l.theme.Success.Render("saved: "+path))
	}
}

func (l *Loop) handleSlash(line string) (quit bool) {
	cmd := strings.Fields(line)[0]
	switch {
	case isQuitCommand(cmd):
		return true
	case cmd == "/help":
		fmt.Fprintln(l.out, l.theme.Muted.Render(helpText()))
	case cmd == "/copy":
		if strings.TrimSpace(l.lastReply) == "" {
			fmt.Fprintln(l.out, l.theme.Muted.Render("nothing to copy yet"))
			return false
		}
		if err := l.clip(l.lastReply); err != nil {
			fmt.Fprintln(l.out, l.theme.Error.Render("clipboard: "+err.Error()))
			return false
		}
		fmt.Fprintln(l.out, l.theme.Muted.Render("copied last reply"))
	default:
		msg := "unknown command " + cmd
		if suggestion := suggestCommand(cmd); suggestion != "" && !knownCommand(cmd) {
			msg += " (did you mean " + suggestion + "?)"
		}
		fmt.Fprintln(l.out, l.theme.Muted.Render(msg))
	}
	return false
}

func (l *Loop) kill(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := l.client.Kill(ctx, sessionID); err != nil {
		log.Warnf("kill session: %v", err)
	}
}

// finalReply extracts the user-visible reply a finished turn settled on: the
// trailing open prose when present, otherwise the last committed text block.
func finalReply(snap timeline.Snapshot) string {
	if text := strings.TrimSpace(snap.OpenText); text != "" {
		return text
	}
	for i := len(snap.Entries) - 1; i >= 0; i-- {
		if snap.Entries[i].Type == timeline.EntryText {
			return strings.TrimSpace(snap.Entries[i].Text)
		}
	}
	return ""
}
