package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskRecognizer implements Recognizer using the Vosk offline engine
type VoskRecognizer struct {
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
	mu         sync.Mutex
	closed     bool
}

// voskResult mirrors the JSON payload Vosk returns
type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Conf  float64 `json:"conf"`
		End   float64 `json:"end"`
		Start float64 `json:"start"`
		Word  string  `json:"word"`
	} `json:"result,omitempty"`
	Partial string `json:"partial,omitempty"`
}

// NewVosk loads the model at config.ModelPath and builds a recognizer
func NewVosk(config Config) (*VoskRecognizer, error) {
	// 0 = errors only; negative suppresses Vosk's own logging entirely
	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", config.ModelPath, err)
	}
	if model == nil {
		return nil, fmt.Errorf("failed to load model from %s: model returned nil", config.ModelPath)
	}

	rec, err := vosk.NewRecognizer(model, float64(config.SampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}
	// Word-level output is needed for confidence scores
	rec.SetWords(1)

	return &VoskRecognizer{model: model, recognizer: rec}, nil
}

// Accept processes a chunk of audio and returns the current result
func (v *VoskRecognizer) Accept(ctx context.Context, pcm []byte) (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, fmt.Errorf("recognizer is closed")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if v.recognizer.AcceptWaveform(pcm) > 0 {
		var raw voskResult
		if err := json.Unmarshal([]byte(v.recognizer.Result()), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse result: %w", err)
		}
		return &Result{
			Text:       raw.Text,
			Partial:    false,
			Confidence: averageConfidence(raw),
		}, nil
	}

	var raw voskResult
	if err := json.Unmarshal([]byte(v.recognizer.PartialResult()), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse partial result: %w", err)
	}
	return &Result{Text: raw.Partial, Partial: true}, nil
}

// Flush returns the final result for the current utterance. Vosk resets
// its internal state after FinalResult, so the recognizer is immediately
// ready for the next utterance.
func (v *VoskRecognizer) Flush() (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, fmt.Errorf("recognizer is closed")
	}

	var raw voskResult
	if err := json.Unmarshal([]byte(v.recognizer.FinalResult()), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse final result: %w", err)
	}

	return &Result{
		Text:       raw.Text,
		Partial:    false,
		Confidence: averageConfidence(raw),
	}, nil
}

// Close releases the recognizer and model
func (v *VoskRecognizer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}

	return nil
}

func averageConfidence(raw voskResult) float64 {
	if len(raw.Result) == 0 {
		return 0
	}

	var sum float64
	for _, word := range raw.Result {
		sum += word.Conf
	}
	return sum / float64(len(raw.Result))
}
