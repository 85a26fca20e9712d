package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"substream/internal/jobs"
	"substream/internal/logging"
)

// Controller is what the RPC surface needs from the daemon.
type Controller interface {
	Enqueue(kind jobs.Kind, source, output string) (jobs.Job, error)
	Cancel(id string) error
	CancelAll() int
	List() []jobs.Job
	Events(after int64) []jobs.Event
	Status() StatusSnapshot
	RequestShutdown()
}

// Server accepts JSON-RPC connections on a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the socket and registers the control service. A stale
// socket file from a previous run is removed first.
func NewServer(ctx context.Context, path string, ctrl Controller, logger *slog.Logger) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("ipc server requires a controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Substream", &service{ctrl: ctrl, logger: logger}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve accepts connections until Close.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops accepting, waits for in-flight calls, and removes the socket.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

type service struct {
	ctrl   Controller
	logger *slog.Logger
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Status = s.ctrl.Status()
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	job, err := s.ctrl.Enqueue(req.Kind, req.SourcePath, req.OutputPath)
	if err != nil {
		return err
	}
	resp.Job = job
	s.logger.Info("job enqueued via ipc",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobKind, string(job.Kind)))
	return nil
}

func (s *service) List(_ ListRequest, resp *ListResponse) error {
	resp.Jobs = s.ctrl.List()
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	if err := s.ctrl.Cancel(req.ID); err != nil {
		resp.Cancelled = false
		resp.Message = err.Error()
		return nil
	}
	resp.Cancelled = true
	return nil
}

func (s *service) CancelAll(_ CancelAllRequest, resp *CancelAllResponse) error {
	resp.Count = s.ctrl.CancelAll()
	s.logger.Info("cancel-all via ipc", logging.Int("count", resp.Count))
	return nil
}

func (s *service) Events(req EventsRequest, resp *EventsResponse) error {
	resp.Events = s.ctrl.Events(req.After)
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	s.logger.Info("shutdown requested via ipc",
		logging.String(logging.FieldEventType, "daemon_stop"))
	s.ctrl.RequestShutdown()
	resp.Stopping = true
	return nil
}
