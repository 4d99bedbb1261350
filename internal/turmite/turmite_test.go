package turmite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tilecanvas"
)

func TestClassicTableIsValid(t *testing.T) {
	require.NoError(t, Classic.Validate())
}

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"ragged", Table{{{}, {}}, {{}}}},
		{"missing state", Table{{{Next: 1}}}},
		{"missing value", Table{{{Write: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), ErrInvalidTable)
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(image.Pt(0, 4), Classic)
	assert.Error(t, err)

	_, err = New(image.Pt(4, 4), Table{})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestFirstStep(t *testing.T) {
	s, err := New(image.Pt(8, 8), Classic)
	require.NoError(t, err)
	require.Equal(t, []Ant{{Pos: image.Pt(4, 4)}}, s.Ants())

	var got []tilecanvas.DrawPixel
	s.Step(1, func(p tilecanvas.DrawPixel) { got = append(got, p) })

	assert.Equal(t, []tilecanvas.DrawPixel{{Pos: image.Pt(4, 4), Color: tilecanvas.Black}}, got)
	assert.Equal(t, uint8(1), s.At(image.Pt(4, 4)))
	assert.Equal(t, []Ant{{Pos: image.Pt(5, 4), State: 1}}, s.Ants())
}

func TestStepWrapsAtEdges(t *testing.T) {
	s, err := New(image.Pt(4, 4), Classic)
	require.NoError(t, err)
	s.ants = nil
	s.Spawn(image.Pt(3, 0), 0)
	s.Spawn(image.Pt(-4, 4), 1) // wraps to (0, 0)

	s.Step(1, func(tilecanvas.DrawPixel) {})

	assert.Equal(t, []Ant{
		{Pos: image.Pt(0, 0), State: 1},
		{Pos: image.Pt(0, 3), State: 2},
	}, s.Ants())
}

func TestCanvasMatchesBoard(t *testing.T) {
	size := image.Pt(32, 32)
	s, err := New(size, Classic)
	require.NoError(t, err)
	s.Spawn(image.Pt(3, 29), 2)

	cv := tilecanvas.MustNew(tilecanvas.MustConfig(color.White, 0, size.X, size.Y, 4, 4))
	defer cv.Close()

	var b tilecanvas.Batch
	s.StepBatch(5000, &b)
	assert.Equal(t, 10000, b.Len())
	cv.Submit(&b)
	cv.Frame()

	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			p := image.Pt(x, y)
			require.Equal(t, Color(s.At(p)), cv.At(p), "pixel %v", p)
		}
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, tilecanvas.White, Color(0))
	assert.Equal(t, tilecanvas.Black, Color(1))

	seen := map[uint32]bool{tilecanvas.White: true, tilecanvas.Black: true}
	for v := 2; v < 8; v++ {
		c := Color(uint8(v))
		_, _, _, a := tilecanvas.UnpackRGBA8(c)
		assert.Equal(t, uint8(255), a)
		assert.False(t, seen[c], "color of %d repeats", v)
		seen[c] = true
	}
}

func BenchmarkStep(b *testing.B) {
	s, err := New(image.Pt(1024, 1024), Classic)
	require.NoError(b, err)
	emit := func(tilecanvas.DrawPixel) {}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(10000, emit)
	}
}
