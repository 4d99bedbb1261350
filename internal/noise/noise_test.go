package noise

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tilecanvas"
)

func TestSameSeedSameRequests(t *testing.T) {
	canvas := image.Pt(64, 48)
	var a, b tilecanvas.Batch
	New(7, canvas).Fill(&a, 20, 5, 5)
	New(7, canvas).Fill(&b, 20, 5, 5)
	assert.Equal(t, a, b)

	var c tilecanvas.Batch
	New(8, canvas).Fill(&c, 20, 5, 5)
	assert.NotEqual(t, a.Pixels, c.Pixels)
}

func TestRequestsAreValid(t *testing.T) {
	canvas := image.Pt(40, 30)
	g := New(1, canvas)
	g.MaxRect = image.Pt(100, 100)

	for i := 0; i < 200; i++ {
		r := g.Rect()
		require.NoError(t, r.Validate(canvas))
		s := g.Span()
		require.NoError(t, s.Validate(canvas))
		assert.LessOrEqual(t, len(s.Pixels), g.MaxSpan)

		_, _, _, alpha := tilecanvas.UnpackRGBA8(g.Color())
		assert.Equal(t, uint8(255), alpha)

		p := g.Pos()
		assert.True(t, p.X >= -canvas.X && p.X < 2*canvas.X && p.Y >= -canvas.Y && p.Y < 2*canvas.Y, "pos %v", p)
	}
}

func TestFillCounts(t *testing.T) {
	var b tilecanvas.Batch
	New(3, image.Pt(16, 16)).Fill(&b, 4, 2, 1)
	assert.Len(t, b.Pixels, 4)
	assert.Len(t, b.Rects, 2)
	assert.Len(t, b.Spans, 1)
}
