package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hollis/parley/internal/input"
	"github.com/hollis/parley/internal/output"
)

// REPL drives the interactive terminal surface: two input modes, submit,
// clear, reset, speak and stop actions.
type REPL struct {
	assistant *Assistant
	console   *output.ConsoleOutput
	reader    io.Reader
	hotkey    string
}

// NewREPL creates the interactive runner. hotkey may be empty; when set it
// acts as a global push-to-talk trigger in voice mode.
func NewREPL(assistant *Assistant, console *output.ConsoleOutput, hotkey string) *REPL {
	return &REPL{
		assistant: assistant,
		console:   console,
		reader:    os.Stdin,
		hotkey:    hotkey,
	}
}

// Run processes user input until EOF, :quit, or context cancellation
func (r *REPL) Run(ctx context.Context) error {
	r.console.Info("parley: text and voice assistant")
	r.console.Info(`type a message, or use :mode, :listen, :speak, :stop, :clear, :reset, :quit`)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.reader)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	listenTrigger := make(chan struct{}, 1)
	if r.hotkey != "" {
		mgr := input.NewHotkeyManager(func() {
			select {
			case listenTrigger <- struct{}{}:
			default:
			}
		})
		if err := mgr.Start(ctx, r.hotkey); err != nil {
			r.console.Warn(fmt.Sprintf("push-to-talk disabled: %v", err))
		} else {
			defer mgr.Stop()
			r.console.Info(fmt.Sprintf("push-to-talk: %s", r.hotkey))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-listenTrigger:
			if r.assistant.Mode() == ModeVoice {
				r.capture(ctx)
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := r.dispatch(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// dispatch handles one input line; returns true on :quit
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, ":") {
		if r.assistant.Mode() == ModeVoice {
			r.console.Info("voice mode: use :listen (or the push-to-talk key), or switch with :mode text")
			return false
		}
		r.submit(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "quit", "q", "exit":
		r.assistant.StopSpeaking()
		return true

	case "mode":
		switch Mode(strings.TrimSpace(arg)) {
		case ModeText:
			r.assistant.SetMode(ModeText)
			r.console.Info("mode: text")
		case ModeVoice:
			r.assistant.SetMode(ModeVoice)
			r.console.Info("mode: voice")
		default:
			r.console.Error(fmt.Sprintf("unknown mode %q (use text or voice)", arg))
		}

	case "listen":
		if r.assistant.Mode() != ModeVoice {
			r.console.Info("switch to voice mode first (:mode voice)")
			return false
		}
		r.capture(ctx)

	case "speak":
		if r.assistant.LastResponse() == "" {
			r.console.Info("nothing to speak yet")
			return false
		}
		r.assistant.SpeakResponse()

	case "stop":
		r.assistant.StopSpeaking()

	case "clear":
		r.assistant.ClearInput()
		r.console.Info("input cleared")

	case "reset":
		r.assistant.Reset()
		r.console.Info("session reset")

	default:
		r.console.Error(fmt.Sprintf("unknown command :%s", cmd))
	}

	return false
}

func (r *REPL) submit(ctx context.Context, text string) {
	r.console.Status("Thinking...")
	reply, err := r.assistant.Submit(ctx, text)
	r.console.Clear()

	// Transport failures are rendered inline as the reply text; err only
	// tells us it was not a real answer
	_ = err
	r.console.Say("assistant", reply)
}

func (r *REPL) capture(ctx context.Context) {
	r.console.Status("Listening... (speak now)")
	heard, reply, err := r.assistant.ListenAndSubmit(ctx)
	r.console.Clear()

	if err != nil && heard == "" {
		r.console.Warn(CaptureFeedback(err))
		return
	}

	r.console.Say("you", heard)
	r.console.Say("assistant", reply)
}
