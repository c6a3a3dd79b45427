package field

import "fmt"

// Mask is a binary survival mask. Units with value 0 are silenced for the
// duration of an integration run; the integrators multiply the mask into
// the field on every step so dead units cannot drift back.
type Mask struct {
	shape Shape
	alive []float64
}

// NewMask validates alive (row-major, entries 0 or 1) against shape and
// returns a mask holding a copy of it.
func NewMask(shape Shape, alive []float64) (*Mask, error) {
	if !shape.Valid() || len(alive) != shape.Len() {
		return nil, fmt.Errorf("mask of %d values as %s: %w", len(alive), shape, ErrShape)
	}
	buf := make([]float64, len(alive))
	for i, v := range alive {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("mask entry %d is %v, want 0 or 1", i, v)
		}
		buf[i] = v
	}
	return &Mask{shape: shape, alive: buf}, nil
}

// AllAlive returns a mask with every unit alive.
func AllAlive(shape Shape) (*Mask, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("all-alive mask %s: %w", shape, ErrShape)
	}
	alive := make([]float64, shape.Len())
	for i := range alive {
		alive[i] = 1
	}
	return &Mask{shape: shape, alive: alive}, nil
}

// Shape returns the mask shape.
func (m *Mask) Shape() Shape { return m.shape }

// AliveCount returns the number of surviving units.
func (m *Mask) AliveCount() int {
	n := 0
	for _, v := range m.alive {
		if v == 1 {
			n++
		}
	}
	return n
}

// AliveFraction returns the fraction of surviving units.
func (m *Mask) AliveFraction() float64 {
	return float64(m.AliveCount()) / float64(len(m.alive))
}

// Values returns a row-major copy of the mask.
func (m *Mask) Values() []float64 {
	out := make([]float64, len(m.alive))
	copy(out, m.alive)
	return out
}

// Apply multiplies data elementwise by the mask. A nil mask is a no-op.
func (m *Mask) Apply(data []float64) {
	if m == nil {
		return
	}
	for i, a := range m.alive {
		data[i] *= a
	}
}

// Check returns an error when the mask is non-nil and its shape differs from s.
func (m *Mask) Check(s Shape) error {
	if m == nil {
		return nil
	}
	if m.shape != s {
		return fmt.Errorf("mask %s against field %s: %w", m.shape, s, ErrShape)
	}
	return nil
}
