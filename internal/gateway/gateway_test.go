package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/spiritstitch/atelier/internal/domain"
)

// fakeConn — управляемое соединение для проверки сторожа.
type fakeConn struct {
	alive         bool
	bootstrapErr  error
	bootstrapRuns int
	closed        bool
}

func (c *fakeConn) Probe(ctx context.Context) bool { return c.alive }

func (c *fakeConn) Bootstrap(ctx context.Context) error {
	c.bootstrapRuns++
	return c.bootstrapErr
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newTestGateway(dial dialFunc) *Gateway {
	g := New(Config{
		Env:  EnvLocal,
		Host: "localhost", Port: 5432, Name: "test", User: "postgres",
	}, nil, nil)
	g.dial = dial
	return g
}

func TestEnsure_BootstrapOncePerConnection(t *testing.T) {
	fc := &fakeConn{alive: true}
	dials := 0
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		dials++
		return fc, nil
	})

	ctx := context.Background()
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("repeated Ensure: %v", err)
	}

	if dials != 1 {
		t.Errorf("expected single dial, got %d", dials)
	}
	if fc.bootstrapRuns != 1 {
		t.Errorf("bootstrap must run once per connection, ran %d times", fc.bootstrapRuns)
	}
}

func TestEnsure_BootstrapFailureTearsDown(t *testing.T) {
	bootErr := errors.New("ddl failed")
	first := &fakeConn{alive: true, bootstrapErr: bootErr}
	second := &fakeConn{alive: true}
	conns := []*fakeConn{first, second}
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		c := conns[0]
		conns = conns[1:]
		return c, nil
	})

	ctx := context.Background()
	err := g.Ensure(ctx)
	if !errors.Is(err, bootErr) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if !first.closed {
		t.Error("failed bootstrap must close the connection")
	}
	if g.LastError() == nil {
		t.Error("LastError must keep the bootstrap failure")
	}

	// Следующий Ensure открывает новое соединение и разворачивает схему заново.
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("Ensure after failure: %v", err)
	}
	if second.bootstrapRuns != 1 {
		t.Errorf("new connection must bootstrap, ran %d times", second.bootstrapRuns)
	}
}

func TestEnsureOrFail_HealthyConnectionSkipsReconnect(t *testing.T) {
	fc := &fakeConn{alive: true}
	dials := 0
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		dials++
		return fc, nil
	})

	ctx := context.Background()
	if err := g.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := g.EnsureOrFail(ctx); err != nil {
		t.Fatalf("EnsureOrFail on healthy connection: %v", err)
	}
	if dials != 1 {
		t.Errorf("healthy connection must not trigger reconnect, dials = %d", dials)
	}
}

func TestEnsureOrFail_BoundedRetries(t *testing.T) {
	dials := 0
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		dials++
		return &fakeConn{alive: false}, nil
	})

	err := g.EnsureOrFail(context.Background())
	if !errors.Is(err, domain.ErrProbeFailed) {
		t.Fatalf("expected ErrProbeFailed, got %v", err)
	}
	// Лимит по умолчанию: две попытки переподключения.
	if dials != defaultMaxRetries {
		t.Errorf("expected %d reconnect attempts, got %d", defaultMaxRetries, dials)
	}
	if g.LastError() == nil {
		t.Error("LastError must keep the exhaustion error")
	}
}

func TestEnsureOrFail_RecoversOnSecondAttempt(t *testing.T) {
	dials := 0
	recovered := &fakeConn{alive: true}
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		dials++
		if dials == 1 {
			return nil, errors.New("connection refused")
		}
		return recovered, nil
	})

	if err := g.EnsureOrFail(context.Background()); err != nil {
		t.Fatalf("EnsureOrFail must recover, got %v", err)
	}
	if dials != 2 {
		t.Errorf("expected 2 dials, got %d", dials)
	}
	if recovered.bootstrapRuns != 1 {
		t.Errorf("recovered connection must bootstrap, ran %d times", recovered.bootstrapRuns)
	}
}

func TestProbe_WithoutConnection(t *testing.T) {
	g := newTestGateway(func(ctx context.Context, dsn string) (conn, error) {
		t.Fatal("probe must not dial")
		return nil, nil
	})

	if g.Probe(context.Background()) {
		t.Error("probe without connection must be false")
	}
}
