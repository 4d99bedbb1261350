// Package turmite runs turmites on a toroidal board and reports every cell
// they write as a tilecanvas.DrawPixel request.
//
// A turmite reads the cell under it, looks up (state, cell) in a Table,
// writes the rule's value, moves by the rule's step and switches to the
// rule's next state. Board edges wrap in both directions.
package turmite

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/tilecanvas"
)

// ErrInvalidTable is returned for tables that reference missing states or
// cell values.
var ErrInvalidTable = errors.New("turmite: invalid transition table")

// Rule is one transition table entry.
type Rule struct {
	Move  image.Point // step applied after writing
	Next  uint8       // next state
	Write uint8       // value written to the current cell
}

// Table maps [state][cell] to a Rule. Every row must have one entry per
// cell value.
type Table [][]Rule

// Classic is a 2-color turmite whose state is its heading: state 0 moves
// +X, 1 moves -Y, 2 moves -X and 3 moves +Y on a blank cell. It builds
// irregular growing structures from a blank board.
var Classic = Table{
	{{image.Pt(1, 0), 1, 1}, {image.Pt(-1, 0), 3, 0}},
	{{image.Pt(0, -1), 2, 1}, {image.Pt(0, 1), 0, 0}},
	{{image.Pt(-1, 0), 3, 1}, {image.Pt(1, 0), 1, 0}},
	{{image.Pt(0, 1), 0, 1}, {image.Pt(0, -1), 2, 0}},
}

// Validate checks that t is rectangular and closed over its states and
// cell values.
func (t Table) Validate() error {
	if len(t) == 0 || len(t[0]) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTable)
	}
	if len(t) > math.MaxUint8 || len(t[0]) > math.MaxUint8+1 {
		return fmt.Errorf("%w: more than 255 states or 256 values", ErrInvalidTable)
	}
	values := len(t[0])
	for s, row := range t {
		if len(row) != values {
			return fmt.Errorf("%w: state %d has %d rules, want %d", ErrInvalidTable, s, len(row), values)
		}
		for v, r := range row {
			if int(r.Next) >= len(t) {
				return fmt.Errorf("%w: rule (%d, %d) goes to state %d", ErrInvalidTable, s, v, r.Next)
			}
			if int(r.Write) >= values {
				return fmt.Errorf("%w: rule (%d, %d) writes %d", ErrInvalidTable, s, v, r.Write)
			}
		}
	}
	return nil
}

// Color returns the canvas color for cell value v: 0 is white, 1 is black
// and higher values step around the hue circle by the golden angle.
func Color(v uint8) uint32 {
	switch v {
	case 0:
		return tilecanvas.White
	case 1:
		return tilecanvas.Black
	}
	hue := math.Mod(float64(v)*137.508, 360)
	r, g, b := colorful.Hsl(hue, 0.7, 0.5).Clamped().RGB255()
	return tilecanvas.PackRGBA8(r, g, b, 255)
}

// Ant is one turmite.
type Ant struct {
	Pos   image.Point
	State uint8
}

// Sim is a board with its turmites. Sim is not safe for concurrent use.
type Sim struct {
	size  image.Point
	cells []uint8
	table Table
	ants  []Ant
}

// New creates a blank size board with one turmite in state 0 at its centre.
func New(size image.Point, table Table) (*Sim, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("turmite: invalid board size %v", size)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	s := &Sim{
		size:  size,
		cells: make([]uint8, size.X*size.Y),
		table: table,
	}
	s.Spawn(image.Pt(size.X/2, size.Y/2), 0)
	return s, nil
}

// Spawn adds a turmite at pos, wrapped onto the board.
func (s *Sim) Spawn(pos image.Point, state uint8) {
	s.ants = append(s.ants, Ant{Pos: s.wrap(pos), State: state % uint8(len(s.table))})
}

// Ants returns a copy of the turmites.
func (s *Sim) Ants() []Ant {
	return append([]Ant(nil), s.ants...)
}

// Size returns the board size.
func (s *Sim) Size() image.Point { return s.size }

// At returns the cell value at p, wrapped onto the board.
func (s *Sim) At(p image.Point) uint8 {
	p = s.wrap(p)
	return s.cells[p.Y*s.size.X+p.X]
}

// Step advances every turmite n times, turmites taking turns each step, and
// calls emit for every cell written.
func (s *Sim) Step(n int, emit func(tilecanvas.DrawPixel)) {
	for ; n > 0; n-- {
		for i := range s.ants {
			a := &s.ants[i]
			idx := a.Pos.Y*s.size.X + a.Pos.X
			r := s.table[a.State][s.cells[idx]]
			s.cells[idx] = r.Write
			emit(tilecanvas.DrawPixel{Pos: a.Pos, Color: Color(r.Write)})
			a.Pos = s.wrap(a.Pos.Add(r.Move))
			a.State = r.Next
		}
	}
}

// StepBatch is like Step but appends the writes to b.
func (s *Sim) StepBatch(n int, b *tilecanvas.Batch) {
	s.Step(n, func(p tilecanvas.DrawPixel) {
		b.Pixels = append(b.Pixels, p)
	})
}

func (s *Sim) wrap(p image.Point) image.Point {
	return image.Pt(mod(p.X, s.size.X), mod(p.Y, s.size.Y))
}

func mod(a, n int) int {
	if a %= n; a < 0 {
		a += n
	}
	return a
}
