package grpc

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
)

// Config holds server settings
type Config struct {
	Host string
	Port int
}

// Server exposes the assistant over gRPC
type Server struct {
	grpcServer *grpc.Server
	config     Config
}

// NewServer creates a gRPC server hosting the given assistant service
func NewServer(cfg Config, service AssistantServer) *Server {
	gs := grpc.NewServer(grpc.ForceServerCodec(wireCodec{}))
	RegisterAssistantServer(gs, service)

	return &Server{
		grpcServer: gs,
		config:     cfg,
	}
}

// Start listens on the configured address and serves until Stop is called.
// It blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.grpcServer.Serve(lis)
}

// Stop drains in-flight calls and shuts the server down
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}
