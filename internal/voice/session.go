// Package voice wraps platform speech services in a tri-state session
// model: idle, listening, processing. The session state is presentation
// state only and is independent of the dispatcher's confirmation state;
// a session can be processing a command whose resolution lands in
// AwaitingConfirmation.
package voice

import (
	"context"
	"log/slog"

	"github.com/payagent/payagent/internal/errors"
)

// State is the session's presentation state.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
)

// Recognizer is the speech-to-text port. Start delivers interim
// transcripts through onPartial and exactly one final transcript through
// onFinal, then returns to idle on its own or when Stop is called.
type Recognizer interface {
	Start(ctx context.Context, onPartial, onFinal func(text string)) error
	Stop() error
}

// Synthesizer is the text-to-speech port.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Handler consumes a finalized transcript, typically the agent's
// text-command pipeline.
type Handler func(ctx context.Context, text string) string

// Session drives one microphone session. Not safe for concurrent use;
// it mirrors single-surface UI interaction.
type Session struct {
	recognizer  Recognizer
	synthesizer Synthesizer
	handler     Handler
	state       State
	transcript  string
	logger      *slog.Logger
}

func NewSession(recognizer Recognizer, synthesizer Synthesizer, handler Handler) *Session {
	return &Session{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		handler:     handler,
		state:       StateIdle,
		logger:      slog.Default().With("component", "voice"),
	}
}

// State returns the current presentation state.
func (s *Session) State() State {
	return s.state
}

// Transcript returns the latest partial or final transcript.
func (s *Session) Transcript() string {
	return s.transcript
}

// Listen starts recognition. The final transcript is run through the
// handler while the session shows processing, and the handler's reply is
// spoken without blocking the caller.
func (s *Session) Listen(ctx context.Context) error {
	if s.state != StateIdle {
		return errors.ProtocolError("voice session is already " + string(s.state))
	}

	onPartial := func(text string) {
		s.transcript = text
	}
	onFinal := func(text string) {
		s.transcript = text
		s.state = StateProcessing
		s.logger.Debug("final transcript", "text", text)

		reply := s.handler(ctx, text)
		s.state = StateIdle
		if reply != "" {
			s.Speak(ctx, reply)
		}
	}

	// Recognizers may deliver callbacks synchronously from Start, so the
	// session must already be listening when they fire.
	s.state = StateListening
	if err := s.recognizer.Start(ctx, onPartial, onFinal); err != nil {
		s.state = StateIdle
		return errors.ExternalError(err, "failed to start speech recognition")
	}
	return nil
}

// StopListening aborts recognition and returns to idle without
// dispatching whatever partial transcript was captured.
func (s *Session) StopListening() error {
	if s.state != StateListening {
		return nil
	}
	s.state = StateIdle
	if err := s.recognizer.Stop(); err != nil {
		return errors.ExternalError(err, "failed to stop speech recognition")
	}
	return nil
}

// Speak announces text without blocking; synthesis completion is never
// awaited and a failure is only logged.
func (s *Session) Speak(ctx context.Context, text string) {
	if s.synthesizer == nil {
		return
	}
	go func() {
		if err := s.synthesizer.Speak(ctx, text); err != nil {
			s.logger.Warn("speech synthesis failed", "error", err)
		}
	}()
}
