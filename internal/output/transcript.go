package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Turn represents one conversation turn in the transcript
type Turn struct {
	Index     int       `json:"index"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Event represents a system event worth keeping in the transcript
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the interface for conversation transcript writers
type Transcript interface {
	// WriteTurn records a conversation turn
	WriteTurn(turn Turn) error

	// WriteEvent records a system event (mode switch, reset, capture failure)
	WriteEvent(eventType, message string) error

	// Close flushes and closes the transcript
	Close() error
}

// JSONTranscript writes turns as a JSON stream
type JSONTranscript struct {
	encoder *json.Encoder
}

// NewJSONTranscript creates a JSON transcript writer
func NewJSONTranscript(writer io.Writer) *JSONTranscript {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return &JSONTranscript{encoder: encoder}
}

// WriteTurn records a conversation turn
func (j *JSONTranscript) WriteTurn(turn Turn) error {
	return j.encoder.Encode(turn)
}

// WriteEvent records a system event
func (j *JSONTranscript) WriteEvent(eventType, message string) error {
	return j.encoder.Encode(Event{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Close closes the transcript
func (j *JSONTranscript) Close() error {
	return nil
}

// PlainTranscript writes turns as timestamped plain text
type PlainTranscript struct {
	writer io.Writer
}

// NewPlainTranscript creates a plain text transcript writer
func NewPlainTranscript(writer io.Writer) *PlainTranscript {
	return &PlainTranscript{writer: writer}
}

// WriteTurn records a conversation turn
func (p *PlainTranscript) WriteTurn(turn Turn) error {
	_, err := fmt.Fprintf(p.writer, "[%s] %s: %s\n",
		turn.Timestamp.Format("15:04:05"), turn.Role, turn.Text)
	return err
}

// WriteEvent records a system event
func (p *PlainTranscript) WriteEvent(eventType, message string) error {
	_, err := fmt.Fprintf(p.writer, "[%s] [%s] %s\n",
		time.Now().Format("15:04:05"), eventType, message)
	return err
}

// Close closes the transcript
func (p *PlainTranscript) Close() error {
	return nil
}
