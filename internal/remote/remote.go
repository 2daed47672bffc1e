// Package remote implements the graph backend over a socket.io
// connection to an external render service. Every mutation the compiler
// performs becomes one emitted event with an acknowledging reply event;
// the service owns the actual node store.
//
// The compiler is the sole writer and issues requests sequentially, so
// the wire protocol is strictly request/reply: emit "<event>", wait for
// "<event>:result" or the timeout.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/layergraphgo/internal/ctxlog"
)

const (
	connectTimeout = 15 * time.Second
	requestTimeout = 10 * time.Second
)

// Graph is a backend.Graph whose nodes live in a remote render service.
type Graph struct {
	io      *socket.Socket
	timeout time.Duration
}

// Option adjusts a dialed Graph.
type Option func(*Graph)

// WithTimeout overrides the per-request reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Graph) { g.timeout = d }
}

// Dial connects to the render service and blocks until the connection is
// established or fails.
func Dial(ctx context.Context, rawURL, namespace string, insecureSkipVerify bool, opts ...Option) (*Graph, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "remote", "url", rawURL)
	logger.Info("Connecting to render service...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("connect_error: %v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", connectTimeout)
	}

	g := &Graph{io: io, timeout: requestTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close disconnects from the render service.
func (g *Graph) Close() error {
	g.io.Disconnect()
	return nil
}

type reply struct {
	payload map[string]any
	err     error
}

// request emits one event and waits for its "<event>:result" reply. A
// reply with ok=false carries the service-side error message.
func (g *Graph) request(ctx context.Context, event string, payload map[string]any) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	if !g.io.Connected() {
		return nil, fmt.Errorf("remote: not connected")
	}

	done := make(chan reply, 1)
	opCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	replyEvent := event + ":result"
	g.io.Once(types.EventName(replyEvent), func(data ...any) {
		if len(data) == 0 {
			done <- reply{err: fmt.Errorf("remote: empty reply to %q", event)}
			return
		}
		m, ok := data[0].(map[string]any)
		if !ok {
			done <- reply{err: fmt.Errorf("remote: malformed reply to %q: %T", event, data[0])}
			return
		}
		if ok, _ := m["ok"].(bool); !ok {
			msg, _ := m["error"].(string)
			done <- reply{err: fmt.Errorf("remote: %s failed: %s", event, msg)}
			return
		}
		done <- reply{payload: m}
	})

	logger.Debug("Emitting request.", "event", event)
	if err := g.io.Emit(event, payload); err != nil {
		return nil, fmt.Errorf("remote: emit %q: %w", event, err)
	}

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("remote: timed out waiting for %q", replyEvent)
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return r.payload, nil
	}
}
