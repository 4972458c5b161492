package demo

import (
	"context"
	"testing"
	"time"

	"trackd/internal/track"
	"trackd/pkg/types"
)

func TestPlayerBouncesInsideWorld(t *testing.T) {
	p := NewPlayer(100, 100)
	p.DX = 30 // clamped to 10 on the first step
	for i := 0; i < 50; i++ {
		p.Move()
		if p.X < 0 || p.X > 100-playerSize {
			t.Fatalf("player escaped at step %d: x=%v", i, p.X)
		}
	}
}

func TestPlayerGravityPullsDown(t *testing.T) {
	p := NewPlayer(800, 700)
	p.DDY = 0.1
	p.Move()
	p.Move()
	if p.DY <= 0 {
		t.Fatalf("expected downward velocity, got %v", p.DY)
	}
}

func TestJumpAndPush(t *testing.T) {
	p := NewPlayer(800, 700)
	p.Jump()
	if p.DY >= 0 {
		t.Fatalf("jump must set upward velocity, got %v", p.DY)
	}
	if got := p.Push(2); got != 2 {
		t.Fatalf("expected DX=2, got %v", got)
	}
}

func TestRunnerPublishesState(t *testing.T) {
	m := track.NewMediator()
	events := make(chan types.Event, 256)
	track.NewObserver(m, func(trackable, key string, value any, kind types.EventKind) {
		select {
		case events <- types.Event{Trackable: trackable, Key: key, Value: value, Kind: kind}:
		default:
		}
	})

	r, err := New(m, Config{Tick: time.Millisecond, UpdateInterval: time.Nanosecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.PlayerName() != "player" || r.VarsName() != "vars" {
		t.Fatalf("unexpected names %s/%s", r.PlayerName(), r.VarsName())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Run: %v", err)
	}

	var sawPlayer, sawTimer2 bool
	for {
		select {
		case ev := <-events:
			if ev.Kind != types.EventSetAttribute {
				continue
			}
			if ev.Trackable == "player" {
				sawPlayer = true
			}
			if ev.Trackable == "vars" && ev.Key == "timer2" {
				sawTimer2 = true
			}
		default:
			if !sawPlayer || !sawTimer2 {
				t.Fatalf("missing events: player=%v timer2=%v", sawPlayer, sawTimer2)
			}
			return
		}
	}
}

func TestRunnerCountsMoves(t *testing.T) {
	m := track.NewMediator()
	r, err := New(m, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.step()
	r.step()
	methods := m.SnapshotMethods()["player"]
	if methods["Move"] != 2 {
		t.Fatalf("expected 2 Move calls, got %d", methods["Move"])
	}
}
