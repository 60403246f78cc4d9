// Package gateway talks to the hotspot controller over the RouterOS API.
// Every operation opens its own connection and closes it before returning.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"hotspotportal/config"
	"hotspotportal/utils"

	"github.com/go-routeros/routeros/v3"
)

const DefaultConnectTimeout = 5 * time.Second

// Conn is the part of a RouterOS client connection the gateway uses.
type Conn interface {
	RunArgs(sentence []string) (*routeros.Reply, error)
	Close()
}

// DialFunc opens a connection to the router. timeout is advisory, Connect
// enforces it independently.
type DialFunc func(cfg config.RouterConfig, timeout time.Duration) (Conn, error)

type Gateway struct {
	cfg  config.RouterConfig
	dial DialFunc
}

func New(cfg config.RouterConfig) *Gateway {
	return NewWithDialer(cfg, dialRouterOS)
}

func NewWithDialer(cfg config.RouterConfig, dial DialFunc) *Gateway {
	return &Gateway{cfg: cfg, dial: dial}
}

type clientConn struct {
	client *routeros.Client
}

func (c clientConn) RunArgs(sentence []string) (*routeros.Reply, error) {
	return c.client.RunArgs(sentence)
}

func (c clientConn) Close() {
	c.client.Close()
}

func dialRouterOS(cfg config.RouterConfig, timeout time.Duration) (Conn, error) {
	var (
		client *routeros.Client
		err    error
	)
	if cfg.UseTLS {
		client, err = routeros.DialTLSTimeout(cfg.Address, cfg.Username, cfg.Password, &tls.Config{MinVersion: tls.VersionTLS12}, timeout)
	} else {
		client, err = routeros.DialTimeout(cfg.Address, cfg.Username, cfg.Password, timeout)
	}
	if err != nil {
		return nil, err
	}
	return clientConn{client: client}, nil
}

type dialResult struct {
	conn Conn
	err  error
}

// Connect races the dial against the connect timeout. A dial that finishes
// after the timer fired is closed in the background.
func (g *Gateway) Connect(ctx context.Context) (Conn, error) {
	timeout := g.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	results := make(chan dialResult, 1)
	go func() {
		conn, err := g.dial(g.cfg, timeout)
		results <- dialResult{conn: conn, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		if r.err != nil {
			return nil, classifyDial(r.err)
		}
		return r.conn, nil
	case <-timer.C:
		go closeLate(results)
		utils.TrackError("router", "connect_timeout")
		return nil, ErrConnectTimeout
	case <-ctx.Done():
		go closeLate(results)
		return nil, interrupted(ctx, "connect")
	}
}

// interrupted reports a caller deadline or cancellation as a router timeout.
// The context error stays in the chain.
func interrupted(ctx context.Context, stage string) error {
	utils.TrackError("router", stage+"_interrupted")
	return fmt.Errorf("%w: %w", ErrConnectTimeout, ctx.Err())
}

func closeLate(results <-chan dialResult) {
	if r := <-results; r.conn != nil {
		r.conn.Close()
	}
}

func classifyDial(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrConnectTimeout
	}
	return Classify("login", err)
}

// WithConn opens a connection, hands it to fn and closes it on every exit
// path. If ctx ends first WithConn stops waiting; fn keeps running and the
// connection is closed once it returns.
func (g *Gateway) WithConn(ctx context.Context, fn func(Conn) error) error {
	conn, err := g.Connect(ctx)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer conn.Close()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("router call panicked: %v", r)
			}
		}()
		done <- fn(conn)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return interrupted(ctx, "call")
	}
}

// Execute runs a single command with its API words (e.g. "?comment=123",
// "=.id=*1A") and returns the attribute maps of the reply.
func (g *Gateway) Execute(ctx context.Context, command string, args ...string) ([]map[string]string, error) {
	start := time.Now()

	var rows []map[string]string
	err := g.WithConn(ctx, func(conn Conn) error {
		reply, err := conn.RunArgs(append([]string{command}, args...))
		if err != nil {
			return Classify(command, err)
		}
		rows = replyRows(reply)
		return nil
	})

	utils.TrackRemoteCall(command, outcomeLabel(err), time.Since(start).Seconds())
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			log.Printf("RouterOS %s failed: %s", command, remote.Raw)
		}
		return nil, err
	}
	return rows, nil
}

func replyRows(reply *routeros.Reply) []map[string]string {
	if reply == nil {
		return nil
	}
	rows := make([]map[string]string, 0, len(reply.Re))
	for _, sentence := range reply.Re {
		if sentence == nil {
			continue
		}
		rows = append(rows, sentence.Map)
	}
	return rows
}

func outcomeLabel(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnectTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCredentialsRejected):
		return "credentials_rejected"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.As(err, &remote):
		return "remote_error"
	default:
		return "error"
	}
}
