package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/tilecanvas"
	"github.com/gogpu/tilecanvas/backend"
	"github.com/gogpu/tilecanvas/backend/mirror"
	"github.com/gogpu/tilecanvas/backend/term"
	"github.com/gogpu/tilecanvas/internal/noise"
	"github.com/gogpu/tilecanvas/internal/turmite"
)

// producer appends one frame's worth of requests to a batch.
type producer func(b *tilecanvas.Batch)

// totals accumulates statistics over all frames.
type totals struct {
	frames    int
	requests  int
	rejected  int
	ops       int
	bytes     int
	sinkBytes int
}

func (t *totals) add(st tilecanvas.FrameStats) {
	t.frames++
	t.requests += st.Pixels + st.Rects + st.Spans
	t.rejected += st.Rejected
	t.ops += st.Ops
	t.bytes += st.Bytes
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		tilecanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := tilecanvas.NewConfig(color.White, 0,
		c.Int("width"), c.Int("height"), c.Int("tiles-x"), c.Int("tiles-y"))
	if err != nil {
		return err
	}
	if c.Bool("top-left") {
		cfg = cfg.WithOrigin(tilecanvas.OriginTopLeft)
	}

	cv, err := tilecanvas.New(cfg, tilecanvas.WithWorkers(c.Int("workers")), tilecanvas.WithPayloadPool(4))
	if err != nil {
		return err
	}
	defer cv.Close()

	produce, err := newProducer(c, cfg.CanvasSize())
	if err != nil {
		return err
	}

	sinks, err := backend.OpenAll(c.StringSlice("sink"), cfg)
	if err != nil {
		return err
	}
	defer sinks.Close()
	if h := sinks.Handles(); h != nil {
		if err := cv.BindHandles(h); err != nil {
			return err
		}
	}

	m := mirror.New(cfg)
	var sum totals
	var batch tilecanvas.Batch
	frame := func() []tilecanvas.UploadOp {
		batch.Reset()
		produce(&batch)
		cv.Submit(&batch)
		ops := cv.Frame()
		sum.add(cv.Stats())
		n, err := sinks.Apply(ops)
		if err != nil {
			slog.Warn("Sink apply failed", "sinks", sinks.Name(), "error", err)
		}
		sum.sinkBytes += n
		return ops
	}

	if c.Bool("term") {
		// The preview applies ops after frame returns, so payloads are
		// recycled one frame late.
		var prev []tilecanvas.UploadOp
		err = runTerminal(m, c.Int("fps"), func() []tilecanvas.UploadOp {
			cv.Recycle(prev)
			prev = frame()
			return prev
		})
	} else {
		for i := 0; i < c.Int("frames"); i++ {
			ops := frame()
			m.Apply(ops)
			cv.Recycle(ops)
		}
	}
	if err != nil {
		return err
	}

	if out := c.String("output"); out != "" {
		if err := writePNG(out, m, c.Int("scale")); err != nil {
			return err
		}
	}

	p := message.NewPrinter(language.English)
	p.Printf("%d frames, %d requests (%d rejected), %d upload ops, %d bytes uploaded\n",
		sum.frames, sum.requests, sum.rejected, sum.ops, sum.bytes)
	if sinks.Len() > 0 {
		p.Printf("%d bytes written to %s\n", sum.sinkBytes, sinks.Name())
	}
	return nil
}

func newProducer(c *cli.Context, size image.Point) (producer, error) {
	steps := c.Int("steps")
	if steps <= 0 {
		return nil, fmt.Errorf("invalid --steps %d", steps)
	}
	switch name := c.String("producer"); name {
	case "turmite":
		sim, err := turmite.New(size, turmite.Classic)
		if err != nil {
			return nil, err
		}
		seed := c.Uint64("seed")
		rng := rand.New(rand.NewPCG(seed, seed))
		for i := 1; i < c.Int("turmites"); i++ {
			sim.Spawn(image.Pt(rng.IntN(size.X), rng.IntN(size.Y)), uint8(rng.IntN(len(turmite.Classic))))
		}
		return func(b *tilecanvas.Batch) { sim.StepBatch(steps, b) }, nil
	case "noise":
		g := noise.New(c.Uint64("seed"), size)
		return func(b *tilecanvas.Batch) { g.Fill(b, steps, steps/100, steps/100) }, nil
	default:
		return nil, fmt.Errorf("unknown producer %q", name)
	}
}

func runTerminal(m *mirror.Mirror, fps int, frame term.FrameFunc) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return term.New(screen, m).Run(ctx, fps, frame)
}

func writePNG(path string, m *mirror.Mirror, scale int) error {
	if scale < 1 {
		return errors.New("--scale must be at least 1")
	}
	img := m.Image()
	if scale > 1 {
		img = m.Scaled(img.Bounds().Size().Mul(scale))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("Saved canvas", "path", path, "size", img.Bounds().Size())
	return nil
}
