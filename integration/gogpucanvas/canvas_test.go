// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gogpucanvas

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/tilecanvas"
)

// mockTexture implements gpucontext.Texture and TextureRegionUpdater.
type mockTexture struct {
	width, height int
	pix           []byte
	regions       int
	destroyed     bool
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }
func (m *mockTexture) Destroy()    { m.destroyed = true }

func (m *mockTexture) UpdateRegion(x, y, w, h int, data []byte) error {
	if x < 0 || y < 0 || x+w > m.width || y+h > m.height || len(data) != w*h*4 {
		return errors.New("mock region out of bounds")
	}
	for row := 0; row < h; row++ {
		copy(m.pix[((y+row)*m.width+x)*4:], data[row*w*4:(row+1)*w*4])
	}
	m.regions++
	return nil
}

// wholeTexture only supports full updates.
type wholeTexture struct {
	width, height int
	pix           []byte
	updates       int
}

func (m *wholeTexture) Width() int  { return m.width }
func (m *wholeTexture) Height() int { return m.height }

func (m *wholeTexture) UpdateData(data []byte) error {
	m.pix = append(m.pix[:0], data...)
	m.updates++
	return nil
}

// mockCreator implements gpucontext.TextureCreator.
type mockCreator struct {
	whole    bool
	failNext bool
	created  []gpucontext.Texture
}

func (m *mockCreator) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock texture creation failed")
	}
	var tex gpucontext.Texture
	if m.whole {
		tex = &wholeTexture{width: width, height: height, pix: append([]byte(nil), data...)}
	} else {
		tex = &mockTexture{width: width, height: height, pix: append([]byte(nil), data...)}
	}
	m.created = append(m.created, tex)
	return tex, nil
}

type draw struct {
	tex  gpucontext.Texture
	x, y float32
}

// mockDrawer implements gpucontext.TextureDrawer.
type mockDrawer struct {
	creator gpucontext.TextureCreator
	draws   []draw
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, x, y float32) error {
	m.draws = append(m.draws, draw{tex, x, y})
	return nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator { return m.creator }

func newDrawer(whole bool) *mockDrawer {
	return &mockDrawer{creator: &mockCreator{whole: whole}}
}

// screen composes the last frame's draws into one image.
func (m *mockDrawer) screen(t *testing.T, w, h, tiles int) *image.NRGBA {
	t.Helper()
	if len(m.draws) < tiles {
		t.Fatalf("draws = %d, want at least %d", len(m.draws), tiles)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, d := range m.draws[len(m.draws)-tiles:] {
		var tw, th int
		var pix []byte
		switch tex := d.tex.(type) {
		case *mockTexture:
			tw, th, pix = tex.width, tex.height, tex.pix
		case *wholeTexture:
			tw, th, pix = tex.width, tex.height, tex.pix
		default:
			t.Fatalf("unexpected texture %T", d.tex)
		}
		src := &image.NRGBA{Pix: pix, Stride: tw * 4, Rect: image.Rect(0, 0, tw, th)}
		tilecanvas.CopyNRGBA(img, image.Pt(int(d.x), int(d.y)), src, src.Rect)
	}
	return img
}

func testCanvas(t *testing.T, origin tilecanvas.Origin) *tilecanvas.Canvas {
	t.Helper()
	cfg := tilecanvas.MustConfig(color.White, 0, 64, 32, 2, 2).WithOrigin(origin)
	cv, err := tilecanvas.New(cfg)
	if err != nil {
		t.Fatalf("tilecanvas.New() error = %v", err)
	}
	t.Cleanup(func() { _ = cv.Close() })
	return cv
}

func TestNew_NilCanvas(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilCanvas) {
		t.Errorf("New(nil) error = %v, want ErrNilCanvas", err)
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew(nil) did not panic")
		}
	}()
	MustNew(nil)
}

func TestRenderTo_CreatesTexturesLazily(t *testing.T) {
	cv := testCanvas(t, tilecanvas.OriginTopLeft)
	gc := MustNew(cv)
	defer gc.Close()

	if got := gc.Ready(); got != 0 {
		t.Fatalf("Ready() before render = %d, want 0", got)
	}

	cv.Enqueue(tilecanvas.DrawPixel{Pos: image.Pt(40, 20), Color: tilecanvas.Black})
	dc := newDrawer(false)
	if err := gc.RenderTo(dc); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}

	want := Stats{Created: 4, Skipped: 1, Drawn: 4}
	if got := gc.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if got := gc.Ready(); got != 4 {
		t.Errorf("Ready() = %d, want 4", got)
	}

	wantPos := []image.Point{{0, 0}, {32, 0}, {0, 16}, {32, 16}}
	for i, d := range dc.draws {
		if got := image.Pt(int(d.x), int(d.y)); got != wantPos[i] {
			t.Errorf("draw %d at %v, want %v", i, got, wantPos[i])
		}
	}

	// The skipped op's pixel is present in the texture created afterwards.
	if got := dc.screen(t, 64, 32, 4); !bytes.Equal(got.Pix, cv.Image().Pix) {
		t.Error("screen does not match canvas image")
	}
}

func TestRenderTo_UpdatesRegions(t *testing.T) {
	for _, origin := range []tilecanvas.Origin{tilecanvas.OriginTopLeft, tilecanvas.OriginBottomLeft} {
		t.Run(origin.String(), func(t *testing.T) {
			cv := testCanvas(t, origin)
			gc := MustNew(cv)
			defer gc.Close()

			dc := newDrawer(false)
			if err := gc.RenderTo(dc); err != nil {
				t.Fatalf("first RenderTo() error = %v", err)
			}

			red := tilecanvas.PackRGBA8(255, 0, 0, 255)
			cv.Enqueue(
				tilecanvas.DrawPixel{Pos: image.Pt(3, 2), Color: tilecanvas.Black},
				tilecanvas.DrawRect{Start: image.Pt(60, 30), Size: image.Pt(8, 4), Pixels: fill(32, red)},
				tilecanvas.DrawSpan{Start: image.Pt(20, 9), Pixels: fill(30, tilecanvas.Black)},
			)
			if err := gc.RenderTo(dc); err != nil {
				t.Fatalf("second RenderTo() error = %v", err)
			}

			st := gc.Stats()
			if st.Created != 0 || st.Skipped != 0 || st.Updated == 0 {
				t.Errorf("Stats() = %+v, want only updates", st)
			}
			if got := dc.screen(t, 64, 32, 4); !bytes.Equal(got.Pix, cv.Image().Pix) {
				t.Error("screen does not match canvas image")
			}
		})
	}
}

func TestRenderTo_WholeTextureFallback(t *testing.T) {
	cv := testCanvas(t, tilecanvas.OriginBottomLeft)
	gc := MustNew(cv)
	defer gc.Close()

	dc := newDrawer(true)
	if err := gc.RenderTo(dc); err != nil {
		t.Fatalf("first RenderTo() error = %v", err)
	}
	cv.Enqueue(tilecanvas.DrawPixel{Pos: image.Pt(33, 17), Color: tilecanvas.Black})
	if err := gc.RenderTo(dc); err != nil {
		t.Fatalf("second RenderTo() error = %v", err)
	}

	creator := dc.creator.(*mockCreator)
	tex := creator.created[3].(*wholeTexture)
	if tex.updates != 1 {
		t.Errorf("tile 3 updates = %d, want 1", tex.updates)
	}
	if got := dc.screen(t, 64, 32, 4); !bytes.Equal(got.Pix, cv.Image().Pix) {
		t.Error("screen does not match canvas image")
	}
}

func TestRenderTo_CreateFailure(t *testing.T) {
	cv := testCanvas(t, tilecanvas.OriginTopLeft)
	gc := MustNew(cv)
	defer gc.Close()

	dc := newDrawer(false)
	dc.creator.(*mockCreator).failNext = true
	if err := gc.RenderTo(dc); err == nil {
		t.Fatal("RenderTo() should fail when texture creation fails")
	}
	if got := gc.Ready(); got != 0 {
		t.Errorf("Ready() after failure = %d, want 0", got)
	}

	if err := gc.RenderTo(dc); err != nil {
		t.Fatalf("retry RenderTo() error = %v", err)
	}
	if got := gc.Ready(); got != 4 {
		t.Errorf("Ready() after retry = %d, want 4", got)
	}
}

func TestRenderTo_NoCreator(t *testing.T) {
	gc := MustNew(testCanvas(t, tilecanvas.OriginTopLeft))
	defer gc.Close()

	if err := gc.RenderTo(&mockDrawer{}); !errors.Is(err, ErrInvalidRenderer) {
		t.Errorf("RenderTo() error = %v, want ErrInvalidRenderer", err)
	}
}

func TestRenderWithOptions_Offset(t *testing.T) {
	gc := MustNew(testCanvas(t, tilecanvas.OriginTopLeft))
	defer gc.Close()

	dc := newDrawer(false)
	if err := gc.RenderWithOptions(dc, RenderOptions{X: 10, Y: 5}); err != nil {
		t.Fatalf("RenderWithOptions() error = %v", err)
	}
	if d := dc.draws[3]; d.x != 42 || d.y != 21 {
		t.Errorf("last tile drawn at (%v, %v), want (42, 21)", d.x, d.y)
	}
}

func TestClose(t *testing.T) {
	cv := testCanvas(t, tilecanvas.OriginTopLeft)
	gc := MustNew(cv)

	dc := newDrawer(false)
	if err := gc.RenderTo(dc); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if err := gc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := gc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	for i, tex := range dc.creator.(*mockCreator).created {
		if !tex.(*mockTexture).destroyed {
			t.Errorf("texture %d not destroyed", i)
		}
	}
	if err := gc.RenderTo(dc); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("RenderTo() after Close error = %v, want ErrCanvasClosed", err)
	}

	cv.Enqueue(tilecanvas.DrawPixel{Pos: image.Pt(1, 1), Color: tilecanvas.Black})
	for _, op := range cv.Frame() {
		if op.Target != nil {
			t.Errorf("op target = %v after Close, want nil", op.Target)
		}
	}
}

func fill(n int, v uint32) []uint32 {
	px := make([]uint32, n)
	for i := range px {
		px[i] = v
	}
	return px
}
