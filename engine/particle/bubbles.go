package particle

import (
	"math/rand"

	"github.com/Carmen-Shannon/h2scape/common"
)

// Bubble is one decorative bubble rising inside an electrolysis tank.
type Bubble struct {
	Position common.Vec3
	Velocity common.Vec3
	Life     float32 // ticks until respawn
	AnchorX  float32 // tank centre x, fixed for the bubble's lifetime
	AnchorZ  float32
	Opacity  float32
	Size     float32
	Color    common.Color
}

// BubbleField owns the bubbles of one scene generation. Like FlowSystem it is driven only from
// the frame goroutine.
type BubbleField struct {
	rng     *rand.Rand
	bubbles []Bubble

	ceiling  float32
	floor    float32
	spread   float32
	palette  []common.Color
	respawns int
}

// BubbleFieldOption is a functional option for configuring a BubbleField.
type BubbleFieldOption func(*BubbleField)

// WithCeiling sets the height above which a bubble respawns. Defaults to 4, the tank top.
func WithCeiling(y float32) BubbleFieldOption {
	return func(b *BubbleField) {
		b.ceiling = y
	}
}

// WithPalette sets the colors bubbles cycle through in spawn order.
func WithPalette(colors ...common.Color) BubbleFieldOption {
	return func(b *BubbleField) {
		if len(colors) > 0 {
			b.palette = colors
		}
	}
}

// NewBubbleField creates an empty bubble field.
//
// Parameters:
//   - rng: random source; nil uses a fixed seed
//   - options: functional options
//
// Returns:
//   - *BubbleField: the field
func NewBubbleField(rng *rand.Rand, options ...BubbleFieldOption) *BubbleField {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &BubbleField{
		rng:     rng,
		ceiling: 4,
		floor:   0.5,
		spread:  2,
		palette: []common.Color{0x4a90e2, 0xff6b6b},
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Spawn adds count bubbles around the tank centred at (anchorX, z).
//
// Parameters:
//   - anchorX: tank centre x
//   - z: tank centre z
//   - count: number of bubbles
//
// Returns:
//   - int: index of the first new bubble
func (b *BubbleField) Spawn(anchorX, z float32, count int) int {
	first := len(b.bubbles)
	for i := 0; i < count; i++ {
		bub := Bubble{
			Position: common.V3(
				anchorX+b.jitter(),
				b.floor+b.rng.Float32()*b.spread,
				z+b.jitter(),
			),
			Velocity: b.velocity(),
			Life:     b.rng.Float32() * 300,
			AnchorX:  anchorX,
			AnchorZ:  z,
			Size:     0.02 + b.rng.Float32()*0.03,
			Color:    b.palette[i%len(b.palette)],
		}
		bub.Opacity = b.opacity(bub.Position.Y)
		b.bubbles = append(b.bubbles, bub)
	}
	return first
}

// Tick moves every bubble by its velocity and ages it one tick. A bubble whose life runs out or
// that rises above the ceiling respawns at the tank floor near its anchor.
func (b *BubbleField) Tick() {
	for i := range b.bubbles {
		bub := &b.bubbles[i]
		bub.Position = bub.Position.Add(bub.Velocity)
		bub.Life--

		if bub.Life <= 0 || bub.Position.Y > b.ceiling {
			bub.Position = common.V3(bub.AnchorX+b.jitter(), b.floor, bub.AnchorZ+b.jitter())
			bub.Velocity = b.velocity()
			bub.Life = 200 + b.rng.Float32()*100
			b.respawns++
		}
		bub.Opacity = b.opacity(bub.Position.Y)
	}
}

// Bubbles returns the live bubbles. The slice must not be modified.
func (b *BubbleField) Bubbles() []Bubble {
	return b.bubbles
}

// Len returns the number of bubbles.
func (b *BubbleField) Len() int {
	return len(b.bubbles)
}

// Respawns returns how many respawns have happened since the field was created.
func (b *BubbleField) Respawns() int {
	return b.respawns
}

// jitter returns a uniform offset in [-1, 1).
func (b *BubbleField) jitter() float32 {
	return (b.rng.Float32() - 0.5) * b.spread
}

func (b *BubbleField) velocity() common.Vec3 {
	return common.V3(
		(b.rng.Float32()-0.5)*0.01,
		0.01+b.rng.Float32()*0.02,
		(b.rng.Float32()-0.5)*0.01,
	)
}

// opacity fades bubbles in as they rise toward the ceiling.
func (b *BubbleField) opacity(y float32) float32 {
	return max(0.2, 0.7-(b.ceiling-y)/b.ceiling*0.5)
}
