package tilecanvas

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func newTestCanvas(t *testing.T, w, h, nx, ny int, opts ...Option) *Canvas {
	t.Helper()
	cv, err := New(MustConfig(color.Black, 0, w, h, nx, ny), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = cv.Close() })
	return cv
}

// pixelAt decodes payload pixel (x, y), relative to the op origin.
func pixelAt(op UploadOp, x, y int) uint32 {
	return binary.LittleEndian.Uint32(op.Data[y*op.BytesPerRow+x*BytesPerPixel:])
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_ZeroConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(Config{}) error = %v, want ErrInvalidConfig", err)
	}
}

func TestNew_ClearColor(t *testing.T) {
	cv := MustNew(MustConfig(color.NRGBA{R: 1, G: 2, B: 3, A: 255}, 0, 8, 8, 2, 2))
	defer cv.Close()

	want := PackRGBA8(1, 2, 3, 255)
	for i := 0; i < cv.Config().TileCount(); i++ {
		for _, v := range cv.Tile(i) {
			if v != want {
				t.Fatalf("tile %d has %#x, want %#x", i, v, want)
			}
		}
	}
	if cv.Pending() != 0 {
		t.Errorf("new canvas has %d pending tiles", cv.Pending())
	}
}

// =============================================================================
// Draw requests
// =============================================================================

func TestCanvas_PixelWraps(t *testing.T) {
	cv := newTestCanvas(t, 8, 8, 2, 2)
	cv.Enqueue(DrawPixel{Pos: image.Pt(8+3, -8+5), Color: 7})
	cv.Apply()

	if got := cv.At(image.Pt(3, 5)); got != 7 {
		t.Errorf("At(3,5) = %d, want 7", got)
	}
	if got := cv.At(image.Pt(3-8, 5+16)); got != 7 {
		t.Errorf("At wrapped = %d, want 7", got)
	}
}

func TestCanvas_CategoryOrder(t *testing.T) {
	cv := newTestCanvas(t, 8, 8, 2, 2)

	// Enqueued spans-first, applied pixels -> rects -> spans, so the span wins.
	cv.Enqueue(
		DrawSpan{Start: image.Pt(0, 0), Pixels: []uint32{3}},
		DrawRect{Start: image.Pt(0, 0), Size: image.Pt(1, 1), Pixels: []uint32{2}},
		DrawPixel{Pos: image.Pt(0, 0), Color: 1},
		DrawPixel{Pos: image.Pt(1, 0), Color: 1},
		DrawPixel{Pos: image.Pt(1, 0), Color: 4},
	)
	cv.Apply()

	if got := cv.At(image.Pt(0, 0)); got != 3 {
		t.Errorf("At(0,0) = %d, want span value 3", got)
	}
	if got := cv.At(image.Pt(1, 0)); got != 4 {
		t.Errorf("At(1,0) = %d, want later pixel 4", got)
	}
	st := cv.Stats()
	if st.Pixels != 3 || st.Rects != 1 || st.Spans != 1 || st.Rejected != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestCanvas_RejectsMalformed(t *testing.T) {
	cv := newTestCanvas(t, 8, 8, 2, 2)
	var b Batch
	b.Add(DrawRect{Size: image.Pt(0, 2)})
	b.Add(DrawRect{Size: image.Pt(2, 2), Pixels: []uint32{1}})
	b.Add(DrawRect{Size: image.Pt(9, 1), Pixels: make([]uint32, 9)})
	b.Add(DrawSpan{})
	b.Add(DrawPixel{Pos: image.Pt(2, 2), Color: 5})
	cv.Submit(&b)

	ops := cv.Frame()
	st := cv.Stats()
	if st.Rejected != 4 || st.Pixels != 1 {
		t.Errorf("Stats() = %+v, want 4 rejected and 1 pixel", st)
	}
	if len(ops) != 1 {
		t.Errorf("Frame() built %d ops, want 1", len(ops))
	}
}

func TestCanvas_FullCanvasRectRoundTrip(t *testing.T) {
	cv := newTestCanvas(t, 128, 64, 2, 2)
	size := cv.Config().CanvasSize()
	px := make([]uint32, size.X*size.Y)
	for i := range px {
		px[i] = uint32(i) | 0xff000000
	}
	cv.Enqueue(DrawRect{Start: image.Pt(0, 0), Size: size, Pixels: px})
	ops := cv.Frame()

	if len(ops) != 4 {
		t.Fatalf("Frame() built %d ops, want 4", len(ops))
	}
	ts := cv.Config().TileSize()
	for _, op := range ops {
		if op.Origin != (image.Point{}) || op.Size != ts {
			t.Errorf("tile %d op covers %v, want full tile", op.TileIndex, op.Region())
		}
		base := image.Pt(op.Key.X*ts.X, op.Key.Y*ts.Y)
		for y := 0; y < op.Size.Y; y++ {
			for x := 0; x < op.Size.X; x++ {
				want := px[(base.Y+y)*size.X+base.X+x]
				if got := pixelAt(op, x, y); got != want {
					t.Fatalf("tile %d (%d,%d) = %#x, want %#x", op.TileIndex, x, y, got, want)
				}
			}
		}
	}
}

// =============================================================================
// Upload ops
// =============================================================================

func TestCanvas_SinglePixelUpload(t *testing.T) {
	cv := newTestCanvas(t, 256, 128, 2, 1)
	cv.Enqueue(DrawPixel{Pos: image.Pt(128+70, 9), Color: 0xdeadbeef})
	ops := cv.Frame()

	if len(ops) != 1 {
		t.Fatalf("Frame() built %d ops, want 1", len(ops))
	}
	op := ops[0]
	if op.TileIndex != 1 || op.Key != image.Pt(1, 0) {
		t.Errorf("op targets tile %d %v, want 1 (1,0)", op.TileIndex, op.Key)
	}
	if op.BytesPerRow%RowAlignment != 0 {
		t.Errorf("BytesPerRow = %d, not a multiple of %d", op.BytesPerRow, RowAlignment)
	}
	if len(op.Data) != op.BytesPerRow*op.Size.Y {
		t.Errorf("len(Data) = %d, want %d", len(op.Data), op.BytesPerRow*op.Size.Y)
	}
	if op.Origin != image.Pt(64, 9) || op.Size != image.Pt(64, 1) {
		t.Errorf("region = %v, want (64,9)-(128,10)", op.Region())
	}
	if got := pixelAt(op, 70-64, 0); got != 0xdeadbeef {
		t.Errorf("payload pixel = %#x", got)
	}
	if cv.Pending() != 0 {
		t.Errorf("Pending() = %d after Frame", cv.Pending())
	}
	if again := cv.BuildUploads(); len(again) != 0 {
		t.Errorf("second BuildUploads() = %d ops, want 0", len(again))
	}
}

func TestCanvas_UnalignedTileWidth(t *testing.T) {
	// 100 px tiles: padding clamps to the tile, stride rounds up to 512.
	cv := newTestCanvas(t, 200, 10, 2, 1)
	cv.Enqueue(DrawSpan{Start: image.Pt(70, 3), Pixels: []uint32{1, 2, 3}})
	ops := cv.Frame()

	if len(ops) != 1 {
		t.Fatalf("Frame() built %d ops, want 1", len(ops))
	}
	op := ops[0]
	if op.Origin != image.Pt(64, 3) || op.Size != image.Pt(36, 1) {
		t.Errorf("region = %v, want (64,3)-(100,4)", op.Region())
	}
	if op.BytesPerRow != 256 {
		t.Errorf("BytesPerRow = %d, want 256", op.BytesPerRow)
	}
	if len(op.Row(0)) != 36*BytesPerPixel {
		t.Errorf("len(Row(0)) = %d", len(op.Row(0)))
	}
	for _, b := range op.Data[36*BytesPerPixel:] {
		if b != 0 {
			t.Fatal("row padding not zeroed")
		}
	}
	if got := pixelAt(op, 6, 0); got != 1 {
		t.Errorf("payload pixel = %d, want 1", got)
	}
}

func TestCanvas_BindHandles(t *testing.T) {
	cv := newTestCanvas(t, 8, 8, 2, 2)

	if err := cv.BindHandles([]any{"a"}); !errors.Is(err, ErrHandleCount) {
		t.Errorf("BindHandles(1) error = %v, want ErrHandleCount", err)
	}
	handles := []any{"t0", "t1", "t2", "t3"}
	if err := cv.BindHandles(handles); err != nil {
		t.Fatalf("BindHandles() error = %v", err)
	}
	handles[2] = "mutated"

	cv.Enqueue(DrawPixel{Pos: image.Pt(1, 5)})
	ops := cv.Frame()
	if len(ops) != 1 || ops[0].Target != "t2" {
		t.Errorf("ops = %+v, want one op targeting t2", ops)
	}

	_ = cv.BindHandles(nil)
	cv.Enqueue(DrawPixel{Pos: image.Pt(1, 5)})
	if ops := cv.Frame(); ops[0].Target != nil {
		t.Errorf("Target = %v after unbinding", ops[0].Target)
	}
}

func TestCanvas_Invalidate(t *testing.T) {
	cv := newTestCanvas(t, 128, 128, 2, 2)
	cv.Invalidate()
	ops := cv.BuildUploads()
	if len(ops) != 4 {
		t.Fatalf("BuildUploads() after Invalidate = %d ops, want 4", len(ops))
	}
	if st := cv.Stats(); st.Ops != 4 || st.Bytes != 4*64*256 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestCanvas_WorkersMatchSerial(t *testing.T) {
	serial := newTestCanvas(t, 256, 256, 4, 4)
	par := newTestCanvas(t, 256, 256, 4, 4, WithWorkers(4), WithPayloadPool(4))

	reqs := []Request{
		DrawRect{Start: image.Pt(250, 250), Size: image.Pt(20, 20), Pixels: make([]uint32, 400)},
		DrawSpan{Start: image.Pt(10, 100), Pixels: make([]uint32, 700)},
		DrawPixel{Pos: image.Pt(130, 3), Color: 1},
	}
	serial.Enqueue(reqs...)
	par.Enqueue(reqs...)

	a, b := serial.Frame(), par.Frame()
	if len(a) != len(b) {
		t.Fatalf("serial built %d ops, parallel %d", len(a), len(b))
	}
	for i := range a {
		if a[i].TileIndex != b[i].TileIndex || a[i].Region() != b[i].Region() {
			t.Errorf("op %d differs: %v %v vs %v %v", i, a[i].TileIndex, a[i].Region(), b[i].TileIndex, b[i].Region())
		}
	}
	par.Recycle(b)
	if b[0].Data != nil {
		t.Error("Recycle did not release payloads")
	}
}

func TestCanvas_ConcurrentEnqueue(t *testing.T) {
	cv := newTestCanvas(t, 64, 64, 4, 4)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				cv.Enqueue(DrawPixel{Pos: image.Pt(g*8, i), Color: 1})
			}
		}()
	}
	wg.Wait()

	cv.Apply()
	if st := cv.Stats(); st.Pixels != 800 {
		t.Errorf("applied %d pixels, want 800", st.Pixels)
	}
}

func TestCanvas_Close(t *testing.T) {
	cv := MustNew(MustConfig(color.Black, 0, 8, 8, 1, 1), WithWorkers(2))
	if err := cv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cv.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	cv.Enqueue(DrawPixel{Color: 1})
	cv.Apply()
	if cv.At(image.Point{}) == 1 {
		t.Error("request on closed canvas was applied")
	}
}

func TestCanvas_SubmitNil(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)
	cv := MustNew(MustConfig(color.Black, 0, 8, 8, 1, 1))
	defer cv.Close()

	cv.Submit(nil)
	cv.Enqueue((*DrawRect)(nil))
	if ops := cv.Frame(); len(ops) != 0 {
		t.Errorf("Frame() after nil requests = %d ops, want 0", len(ops))
	}
	if st := cv.Stats(); st.Pixels+st.Rects+st.Spans != 0 {
		t.Errorf("stats = %+v, want nothing applied", st)
	}
	for _, want := range []string{"nil batch dropped", "request dropped"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func BenchmarkCanvas_Frame(b *testing.B) {
	cv := MustNew(DefaultConfig(), WithPayloadPool(8))
	defer cv.Close()
	px := make([]uint32, 64*64)

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		cv.Enqueue(DrawRect{Start: image.Pt(i*37, i*11), Size: image.Pt(64, 64), Pixels: px})
		cv.Recycle(cv.Frame())
	}
}
