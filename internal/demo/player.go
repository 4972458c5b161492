package demo

// Player is the bouncing-box demo object. It knows nothing about tracking;
// its exported fields and methods are picked up by wrapping it.
type Player struct {
	X  float64
	Y  float64
	DX float64
	DY float64
	// constant acceleration applied each step (gravity on DY)
	DDX float64
	DDY float64

	width  float64
	height float64
}

const playerSize = 50

// NewPlayer places a player in a width x height world.
func NewPlayer(width, height float64) *Player {
	return &Player{width: width, height: height}
}

// Move advances one step: apply acceleration, move, bounce off the world
// edges, and clamp speed.
func (p *Player) Move() {
	p.DX += p.DDX
	p.DY += p.DDY
	p.X += p.DX
	p.Y += p.DY

	if p.X < 0 {
		p.X = 0
		p.DX = -p.DX
	}
	if p.X > p.width-playerSize {
		p.X = p.width - playerSize
		p.DX = -p.DX
	}
	if p.Y < 0 {
		p.Y = 0
		p.DY = -p.DY
	}
	if p.Y > p.height-playerSize {
		p.Y = p.height - playerSize
		p.DY = -p.DY
	}

	p.DX = clamp(p.DX, 10)
	p.DY = clamp(p.DY, 10)
}

// Jump gives the player an upward kick.
func (p *Player) Jump() {
	p.DY = -8
}

// Push nudges the horizontal velocity and returns the new value.
func (p *Player) Push(dx float64) float64 {
	p.DX += dx
	return p.DX
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
