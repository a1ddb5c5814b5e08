package grpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hollis/parley/internal/speech"
	"github.com/hollis/parley/internal/transcribe"
)

type stubClient struct {
	reply string
	err   error
}

func (s *stubClient) GenerateReply(context.Context, string) (string, error) {
	return s.reply, s.err
}

type stubRecognizer struct {
	text       string
	confidence float64
	accepted   int
}

func (s *stubRecognizer) Accept(_ context.Context, _ []byte) (*transcribe.Result, error) {
	s.accepted++
	return &transcribe.Result{Partial: true}, nil
}

func (s *stubRecognizer) Flush() (*transcribe.Result, error) {
	return &transcribe.Result{Text: s.text, Confidence: s.confidence}, nil
}

func (s *stubRecognizer) Close() error { return nil }

type stubEngine struct {
	chunks []speech.Chunk
	closed int
}

func (e *stubEngine) Synthesize(_ context.Context, _ speech.SynthesizeRequest, callback speech.ChunkCallback) error {
	for _, chunk := range e.chunks {
		if err := callback(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (e *stubEngine) ListVoices() []speech.Voice { return nil }
func (e *stubEngine) Close() error               { e.closed++; return nil }

type recordingStream struct {
	ctx    context.Context
	chunks []*AudioChunk
}

func (s *recordingStream) Send(chunk *AudioChunk) error {
	s.chunks = append(s.chunks, chunk)
	return nil
}

func (s *recordingStream) Context() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func TestGenerateReturnsModelReply(t *testing.T) {
	svc := NewAssistantService(&stubClient{reply: "forty-two"}, nil, nil)

	reply, err := svc.Generate(context.Background(), &GenerateRequest{Query: "meaning of life?"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply.Text != "forty-two" {
		t.Errorf("Text = %q, want %q", reply.Text, "forty-two")
	}
}

func TestGenerateRejectsEmptyQuery(t *testing.T) {
	svc := NewAssistantService(&stubClient{}, nil, nil)

	_, err := svc.Generate(context.Background(), &GenerateRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestGenerateMapsModelFailureToUnavailable(t *testing.T) {
	svc := NewAssistantService(&stubClient{err: errors.New("quota exceeded")}, nil, nil)

	_, err := svc.Generate(context.Background(), &GenerateRequest{Query: "hi"})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("code = %v, want Unavailable", status.Code(err))
	}
}

func TestTranscribeReturnsRecognizedText(t *testing.T) {
	recognizer := &stubRecognizer{text: "open the door", confidence: 0.91}
	svc := NewAssistantService(&stubClient{}, recognizer, nil)

	reply, err := svc.Transcribe(context.Background(), &TranscribeRequest{
		Audio:      make([]byte, 320),
		SampleRate: 16000,
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if reply.Text != "open the door" {
		t.Errorf("Text = %q", reply.Text)
	}
	if reply.Confidence < 0.90 || reply.Confidence > 0.92 {
		t.Errorf("Confidence = %v, want ~0.91", reply.Confidence)
	}
	if recognizer.accepted != 1 {
		t.Errorf("recognizer saw %d chunks, want 1", recognizer.accepted)
	}
}

func TestTranscribeWithoutRecognizerIsUnimplemented(t *testing.T) {
	svc := NewAssistantService(&stubClient{}, nil, nil)

	_, err := svc.Transcribe(context.Background(), &TranscribeRequest{Audio: []byte{0, 0}})
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("code = %v, want Unimplemented", status.Code(err))
	}
}

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	svc := NewAssistantService(&stubClient{}, &stubRecognizer{}, nil)

	_, err := svc.Transcribe(context.Background(), &TranscribeRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestSynthesizeStreamsChunksAndClosesEngine(t *testing.T) {
	engine := &stubEngine{chunks: []speech.Chunk{
		{Data: []byte{1, 2}, SampleRate: 22050, Channels: 1},
		{Data: []byte{3, 4}, SampleRate: 22050, Channels: 1},
	}}
	svc := NewAssistantService(&stubClient{}, nil, func() (speech.Engine, error) {
		return engine, nil
	})

	stream := &recordingStream{}
	err := svc.Synthesize(&SynthesizeRequest{Text: "hello", RateWPM: 150}, stream)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(stream.chunks) != 2 {
		t.Fatalf("streamed %d chunks, want 2", len(stream.chunks))
	}
	if stream.chunks[0].SampleRate != 22050 || stream.chunks[0].Channels != 1 {
		t.Errorf("chunk format = %d/%d", stream.chunks[0].SampleRate, stream.chunks[0].Channels)
	}
	if engine.closed != 1 {
		t.Errorf("engine closed %d times, want exactly 1", engine.closed)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	svc := NewAssistantService(&stubClient{}, nil, func() (speech.Engine, error) {
		t.Fatal("engine must not be created for an empty request")
		return nil, nil
	})

	err := svc.Synthesize(&SynthesizeRequest{}, &recordingStream{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestSynthesizeEngineFailureIsUnavailable(t *testing.T) {
	svc := NewAssistantService(&stubClient{}, nil, func() (speech.Engine, error) {
		return nil, errors.New("espeak-ng not installed")
	})

	err := svc.Synthesize(&SynthesizeRequest{Text: "hi"}, &recordingStream{})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("code = %v, want Unavailable", status.Code(err))
	}
}

func TestWireMessagesRoundTrip(t *testing.T) {
	req := &TranscribeRequest{Audio: []byte{9, 8, 7}, SampleRate: 16000}
	encoded, err := wireCodec{}.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded TranscribeRequest
	if err := (wireCodec{}).Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if string(decoded.Audio) != string(req.Audio) || decoded.SampleRate != req.SampleRate {
		t.Errorf("decoded = %+v, want %+v", decoded, *req)
	}

	reply := &TranscribeReply{Text: "hello", Confidence: 0.75}
	encoded, err = wireCodec{}.Marshal(reply)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decodedReply TranscribeReply
	if err := (wireCodec{}).Unmarshal(encoded, &decodedReply); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decodedReply.Text != reply.Text || decodedReply.Confidence != reply.Confidence {
		t.Errorf("decoded = %+v, want %+v", decodedReply, *reply)
	}
}

func TestWireCodecRejectsForeignTypes(t *testing.T) {
	if _, err := (wireCodec{}).Marshal(42); err == nil {
		t.Error("Marshal accepted a non-message value")
	}
	if err := (wireCodec{}).Unmarshal(nil, 42); err == nil {
		t.Error("Unmarshal accepted a non-message value")
	}
}
