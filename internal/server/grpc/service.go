package grpc

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hollis/parley/internal/llm"
	"github.com/hollis/parley/internal/speech"
	"github.com/hollis/parley/internal/transcribe"
)

// AssistantServer is the service contract for parley.v1.Assistant
type AssistantServer interface {
	// Generate produces a reply to a text query
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateReply, error)

	// Transcribe converts one utterance of PCM audio to text
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeReply, error)

	// Synthesize streams spoken audio for the given text
	Synthesize(req *SynthesizeRequest, stream SynthesizeStream) error
}

// SynthesizeStream delivers audio chunks to the client
type SynthesizeStream interface {
	Send(*AudioChunk) error
	Context() context.Context
}

// AssistantService implements AssistantServer on top of the assistant's
// model client, recognizer, and synthesis engine factory.
type AssistantService struct {
	client     llm.Client
	recognizer transcribe.Recognizer
	newEngine  speech.EngineFactory

	// The recognizer keeps per-utterance state and is not safe for
	// concurrent use
	mu sync.Mutex
}

// NewAssistantService creates the service. recognizer may be nil when no
// acoustic model is available; Transcribe then fails with Unimplemented.
func NewAssistantService(client llm.Client, recognizer transcribe.Recognizer, newEngine speech.EngineFactory) *AssistantService {
	return &AssistantService{
		client:     client,
		recognizer: recognizer,
		newEngine:  newEngine,
	}
}

func (s *AssistantService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateReply, error) {
	if req.Query == "" {
		return nil, status.Error(codes.InvalidArgument, "query must not be empty")
	}

	reply, err := s.client.GenerateReply(ctx, req.Query)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "language model: %v", err)
	}

	return &GenerateReply{Text: reply}, nil
}

func (s *AssistantService) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeReply, error) {
	if s.recognizer == nil {
		return nil, status.Error(codes.Unimplemented, "no acoustic model configured")
	}
	if len(req.Audio) == 0 {
		return nil, status.Error(codes.InvalidArgument, "audio must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.recognizer.Accept(ctx, req.Audio); err != nil {
		return nil, status.Errorf(codes.Internal, "recognizer: %v", err)
	}
	result, err := s.recognizer.Flush()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "recognizer: %v", err)
	}

	return &TranscribeReply{
		Text:       result.Text,
		Confidence: float32(result.Confidence),
	}, nil
}

func (s *AssistantService) Synthesize(req *SynthesizeRequest, stream SynthesizeStream) error {
	if req.Text == "" {
		return status.Error(codes.InvalidArgument, "text must not be empty")
	}

	engine, err := s.newEngine()
	if err != nil {
		return status.Errorf(codes.Unavailable, "synthesis engine: %v", err)
	}
	defer engine.Close()

	err = engine.Synthesize(stream.Context(), speech.SynthesizeRequest{
		Text:    req.Text,
		Voice:   req.Voice,
		RateWPM: int(req.RateWPM),
	}, func(chunk speech.Chunk) error {
		return stream.Send(&AudioChunk{
			Data:       chunk.Data,
			SampleRate: int32(chunk.SampleRate),
			Channels:   int32(chunk.Channels),
		})
	})
	if err != nil {
		return status.Errorf(codes.Internal, "synthesis: %v", err)
	}
	return nil
}

// assistantServiceDesc is the hand-written counterpart of the descriptor
// protoc would generate from api/proto/assistant.proto.
var assistantServiceDesc = grpc.ServiceDesc{
	ServiceName: "parley.v1.Assistant",
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
		{MethodName: "Transcribe", Handler: transcribeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Synthesize", Handler: synthesizeHandler, ServerStreams: true},
	},
	Metadata: "api/proto/assistant.proto",
}

// RegisterAssistantServer registers the service implementation
func RegisterAssistantServer(s grpc.ServiceRegistrar, srv AssistantServer) {
	s.RegisterService(&assistantServiceDesc, srv)
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GenerateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/parley.v1.Assistant/Generate",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).Generate(ctx, req.(*GenerateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func transcribeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TranscribeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Transcribe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/parley.v1.Assistant/Transcribe",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).Transcribe(ctx, req.(*TranscribeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func synthesizeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SynthesizeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AssistantServer).Synthesize(in, &synthesizeStream{stream})
}

type synthesizeStream struct {
	grpc.ServerStream
}

func (s *synthesizeStream) Send(chunk *AudioChunk) error {
	return s.ServerStream.SendMsg(chunk)
}
