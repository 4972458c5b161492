// Package demo hosts the built-in simulation sources: a bouncing player and a
// pair of periodic counters, both registered as trackables so the inspection
// surface has live state to show out of the box.
package demo

import (
	"context"
	"time"

	"trackd/internal/track"
)

// Config tunes the simulation. Zero values select the defaults.
type Config struct {
	Tick           time.Duration
	Width          float64
	Height         float64
	Gravity        float64
	UpdateInterval time.Duration
}

const (
	defaultTick   = 16 * time.Millisecond
	defaultWidth  = 800
	defaultHeight = 700
	defaultGrav   = 0.1
)

func (c Config) withDefaults() Config {
	if c.Tick <= 0 {
		c.Tick = defaultTick
	}
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Gravity == 0 {
		c.Gravity = defaultGrav
	}
	return c
}

// Runner drives the simulation loop against one mediator.
type Runner struct {
	cfg    Config
	player *Player

	playerTrackable *track.Trackable
	vars            *track.Trackable
}

// New wires the demo sources into m: a wrapped Player named "player" and a
// bare "vars" trackable with declared counters.
func New(m *track.Mediator, cfg Config) (*Runner, error) {
	cfg = cfg.withDefaults()
	p := NewPlayer(cfg.Width, cfg.Height)
	p.DDY = cfg.Gravity

	pt, err := track.Wrap(p, track.TrackableConfig{Name: "player", UpdateInterval: cfg.UpdateInterval})
	if err != nil {
		return nil, err
	}
	m.Register(pt)

	vars := track.NewWithConfig(track.TrackableConfig{Name: "vars", UpdateInterval: cfg.UpdateInterval})
	vars.Declare("timer", "timer2")
	m.Register(vars)

	return &Runner{cfg: cfg, player: p, playerTrackable: pt, vars: vars}, nil
}

// Run steps the simulation until ctx is done. Each tick moves the player and
// publishes its fields; the counters advance on their own cadence.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()
	second := time.NewTicker(time.Second)
	defer second.Stop()

	timer := 0
	timer2 := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.step()
			timer2++
			if err := r.vars.Set("timer2", timer2); err != nil {
				return err
			}
		case <-second.C:
			timer++
			if err := r.vars.Set("timer", timer); err != nil {
				return err
			}
		}
	}
}

// step advances the player through its tracked method so the call is counted,
// then publishes the moved fields.
func (r *Runner) step() {
	if _, err := r.playerTrackable.InvokeSilent("Move"); err != nil {
		return
	}
	r.playerTrackable.Sync()
}

// PlayerName returns the registered (collision-resolved) player trackable name.
func (r *Runner) PlayerName() string { return r.playerTrackable.Name() }

// VarsName returns the registered counters trackable name.
func (r *Runner) VarsName() string { return r.vars.Name() }
