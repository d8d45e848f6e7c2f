// Package control serves the session's health over its unix socket so
// scripts can ask whether an interactive client is up and connected.
package control

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/status"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// ServiceName is the health service reporting the session connection.
const ServiceName = "tides.Session"

// StateHeader is the response header carrying the status machine state.
const StateHeader = "tides-state"

// Server exposes grpc.health.v1 for a session on a unix socket.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	socketPath string
	machine    *status.Machine
	logger     *zap.Logger

	events   <-chan bus.Event
	unsub    func()
	stopOnce sync.Once
	done     chan struct{}
	watchWG  sync.WaitGroup
}

// NewServer binds socketPath. A stale socket file left by a crashed client is
// replaced.
func NewServer(socketPath string, machine *status.Machine, b *bus.Bus, logger *zap.Logger) (*Server, error) {
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	s := &Server{
		health:     health.NewServer(),
		listener:   listener,
		socketPath: socketPath,
		machine:    machine,
		logger:     logging.OrNop(logger).Named("control"),
		done:       make(chan struct{}),
	}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(s.stateHeader))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.events, s.unsub = b.Subscribe(bus.KindStatusChanged, 16)
	s.apply(machine.Current())
	return s, nil
}

// SocketPath returns the bound socket path.
func (s *Server) SocketPath() string { return s.socketPath }

// Start serves requests until Stop. It blocks.
func (s *Server) Start() error {
	s.watchWG.Add(1)
	go func() {
		defer s.watchWG.Done()
		for {
			select {
			case <-s.done:
				return
			case evt := <-s.events:
				if change, ok := evt.Payload.(status.StatusChange); ok {
					s.apply(change.To)
				}
			}
		}
	}()

	s.logger.Info("control server starting", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop shuts down gracefully and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.stopOnce.Do(func() {
		s.logger.Info("control server stopping")
		close(s.done)
		s.unsub()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		_ = s.listener.Close()
		s.watchWG.Wait()
		_ = os.Remove(s.socketPath)
	})
}

func (s *Server) apply(state status.State) {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if state == status.Ready {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(ServiceName, serving)
	s.logger.Debug("health updated", zap.String("state", string(state)), zap.Stringer("serving", serving))
}

func (s *Server) stateHeader(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	_ = grpc.SetHeader(ctx, metadata.Pairs(StateHeader, string(s.machine.Current())))
	return handler(ctx, req)
}
