package protocol

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// NewServerServer builds the jrpc2 server for server. Every handler context
// carries a logger that forwards to the editor as window/logMessage.
func NewServerServer(ctx context.Context, server Server, opts *jrpc2.ServerOptions) (*jrpc2.Server, *CallbackClient) {
	methods := buildServerDispatchMap(server)
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	opts.AllowPush = true

	var callbackClient *CallbackClient

	opts.NewContext = func() context.Context {
		if callbackClient == nil {
			return ctx
		}
		return ApplyClientToZerolog(ctx, callbackClient)
	}

	result := jrpc2.NewServer(methods, opts)

	callbackClient = NewCallbackClient(result)

	return result, callbackClient
}

type ServerInstance struct {
	server *jrpc2.Server
}

func NewServerInstance(ctx context.Context, server Server, opts *jrpc2.ServerOptions) *ServerInstance {
	srv, _ := NewServerServer(ctx, server, opts)
	return &ServerInstance{server: srv}
}

// StartAndWait serves LSP framed messages from r, answering on w, until the
// client exits or r is closed.
func (s *ServerInstance) StartAndWait(r io.Reader, w io.WriteCloser) error {
	s.server.Start(channel.LSP(r, w))
	if err := s.server.Wait(); err != nil {
		return errors.Errorf("serving: %w", err)
	}
	return nil
}

// ZerologRPCLogger traces every request and response to Logger at debug
// level. Logger is kept apart from the handler context so tracing is never
// forwarded back to the editor.
type ZerologRPCLogger struct {
	Logger zerolog.Logger
}

var _ jrpc2.RPCLogger = (*ZerologRPCLogger)(nil)

func (l *ZerologRPCLogger) LogRequest(_ context.Context, req *jrpc2.Request) {
	l.Logger.Debug().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (l *ZerologRPCLogger) LogResponse(_ context.Context, res *jrpc2.Response) {
	l.Logger.Debug().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func newParseError(err error) *jrpc2.Error {
	return &jrpc2.Error{
		Code:    -32700, // Parse error
		Message: err.Error(),
	}
}

func createHandler[T any, O any](method func(ctx context.Context, params *T) (O, error)) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}
		result, err := method(ctx, &params)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

func createEmptyResultHandler[T any](method func(ctx context.Context, params *T) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}
		return nil, method(ctx, &params)
	})
}

func createEmptyHandler(method func(ctx context.Context) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		return nil, method(ctx)
	})
}

func createNotify[I any](ctx context.Context, client Callbacker, method string, params *I) error {
	return client.Notify(ctx, method, params)
}
