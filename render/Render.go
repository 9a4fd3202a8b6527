// Package render draws top-down snapshots of a simulated world: the
// platform, the obstacle footprints, and every body seen from above.
// Snapshots are debugging aids and are drawn on demand only.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/physics/sim"
)

// Default drawing settings
const (
	DefaultScale  = 20.0 // Pixels per world unit
	DefaultMargin = 1.0  // World units around the platform
)

// Colours used in snapshots
var (
	Background = color.RGBA{30, 30, 30, 255}
	Platform   = color.RGBA{200, 200, 190, 255}
	Wall       = color.RGBA{90, 70, 60, 255}
	Agent      = color.RGBA{50, 110, 200, 255}
	Target     = color.RGBA{210, 60, 50, 255}
	Heading    = color.RGBA{40, 160, 70, 255}
)

// Options configures a snapshot. The zero value selects defaults.
type Options struct {
	Scale  float64
	Margin float64

	// Heading, if non-zero, is drawn as an arrow from the first body
	// without a parent, such as the forward direction of a ragdoll's
	// frame
	Heading r3.Vec
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	return o
}

// view maps the ground plane of a world to pixels. Ground x grows to
// the right and ground z grows up the image.
type view struct {
	minX, maxZ float64
	scale      float64
}

func (v view) pixel(x, z float64) (float64, float64) {
	return (x - v.minX) * v.scale, (v.maxZ - z) * v.scale
}

// Snapshot draws the world from above
func Snapshot(w *sim.World, opts Options) image.Image {
	return draw(w, opts).Image()
}

// SavePNG draws the world from above and saves it as a PNG file
func SavePNG(path string, w *sim.World, opts Options) error {
	if err := draw(w, opts).SavePNG(path); err != nil {
		return fmt.Errorf("savePNG: %v", err)
	}
	return nil
}

func draw(w *sim.World, opts Options) *gg.Context {
	opts = opts.withDefaults()
	p := w.Platform()
	v := view{
		minX:  p.Centre.X - p.HalfX - opts.Margin,
		maxZ:  p.Centre.Z + p.HalfZ + opts.Margin,
		scale: opts.Scale,
	}
	width := int(math.Ceil(2 * (p.HalfX + opts.Margin) * opts.Scale))
	height := int(math.Ceil(2 * (p.HalfZ + opts.Margin) * opts.Scale))

	dc := gg.NewContext(width, height)
	dc.SetColor(Background)
	dc.Clear()

	// Platform
	x, y := v.pixel(p.Centre.X-p.HalfX, p.Centre.Z+p.HalfZ)
	dc.DrawRectangle(x, y, 2*p.HalfX*v.scale, 2*p.HalfZ*v.scale)
	dc.SetColor(Platform)
	dc.Fill()

	// Obstacles
	for _, corners := range w.Arena().Footprints() {
		dc.ClearPath()
		for _, c := range corners {
			dc.LineTo(v.pixel(c[0], c[1]))
		}
		dc.ClosePath()
		dc.SetColor(Wall)
		dc.Fill()
	}

	// Bodies, lowest first so that the view from above is kept
	bodies := w.Bodies()
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].Position().Y < bodies[j].Position().Y
	})
	for _, b := range bodies {
		pos := b.Position()
		x, y := v.pixel(pos.X, pos.Z)
		dc.DrawCircle(x, y, b.Radius()*v.scale)
		if b.Tag() == physics.Target {
			dc.SetColor(Target)
		} else {
			dc.SetColor(Agent)
		}
		dc.FillPreserve()
		dc.SetColor(Background)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if opts.Heading != (r3.Vec{}) {
		drawHeading(dc, v, w.Bodies(), opts.Heading)
	}
	return dc
}

func drawHeading(dc *gg.Context, v view, bodies []*sim.Body,
	heading r3.Vec) {
	var root *sim.Body
	for _, b := range bodies {
		if b.Parent() == nil && b.Tag() != physics.Target {
			root = b
			break
		}
	}
	n := math.Hypot(heading.X, heading.Z)
	if root == nil || n == 0 {
		return
	}

	from := root.Position()
	to := r3.Add(from, r3.Vec{X: heading.X / n, Z: heading.Z / n})
	x0, y0 := v.pixel(from.X, from.Z)
	x1, y1 := v.pixel(to.X, to.Z)

	dc.SetColor(Heading)
	dc.SetLineWidth(3)
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
	dc.DrawCircle(x1, y1, 3)
	dc.Fill()
}
