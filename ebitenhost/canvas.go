package ebitenhost

import (
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/grove"
)

// Debug font cell size used by ebitenutil.DebugPrint.
const (
	glyphW = 6
	glyphH = 16
)

var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(grove.ColorWhite.ToRGBA())
	return img
}()

// whiteSubImage avoids sampling the image border when drawing triangles.
var whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)

// Canvas implements grove.Canvas on an ebiten image. Shapes are transformed
// on the CPU and drawn as vector paths.
type Canvas struct {
	grove.TransformStack

	// StrokeWidth is the outline width in screen pixels.
	StrokeWidth float32
	// AntiAlias smooths path edges.
	AntiAlias bool

	targets  []*ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewCanvas returns a canvas drawing onto dst.
func NewCanvas(dst *ebiten.Image) *Canvas {
	c := &Canvas{StrokeWidth: 1}
	c.Reset(dst)
	return c
}

// Reset retargets the canvas at dst and clears the transform stack.
func (c *Canvas) Reset(dst *ebiten.Image) {
	c.targets = append(c.targets[:0], dst)
	c.TransformStack.Reset()
}

func (c *Canvas) target() *ebiten.Image { return c.targets[len(c.targets)-1] }

// PushTransform implements grove.Canvas.
func (c *Canvas) PushTransform(m grove.Affine) { c.Push(m) }

// PopTransform implements grove.Canvas.
func (c *Canvas) PopTransform() { c.Pop() }

// DrawRect implements grove.Canvas.
func (c *Canvas) DrawRect(r grove.Rect, col grove.Color, fill bool) {
	m := c.Current()
	if m.IsAxisAligned() {
		p := m.Apply(grove.V(r.X, r.Y))
		s := m.ScaleFactors()
		w, h := float32(r.Width*s.X), float32(r.Height*s.Y)
		if fill {
			vector.DrawFilledRect(c.target(), float32(p.X), float32(p.Y), w, h, col.ToRGBA(), c.AntiAlias)
		} else {
			vector.StrokeRect(c.target(), float32(p.X), float32(p.Y), w, h, c.StrokeWidth, col.ToRGBA(), c.AntiAlias)
		}
		return
	}
	c.DrawPolygon(rectPoints(r), col, fill)
}

// DrawCircle implements grove.Canvas. Non-uniform scales draw a circle with
// the mean radius.
func (c *Canvas) DrawCircle(center grove.Vec2, radius float64, col grove.Color, fill bool) {
	m := c.Current()
	p := m.Apply(center)
	s := m.ScaleFactors()
	r := float32(radius * (s.X + s.Y) / 2)
	if fill {
		vector.DrawFilledCircle(c.target(), float32(p.X), float32(p.Y), r, col.ToRGBA(), c.AntiAlias)
	} else {
		vector.StrokeCircle(c.target(), float32(p.X), float32(p.Y), r, c.StrokeWidth, col.ToRGBA(), c.AntiAlias)
	}
}

// DrawPolygon implements grove.Canvas.
func (c *Canvas) DrawPolygon(pts []grove.Vec2, col grove.Color, fill bool) {
	if len(pts) < 2 {
		return
	}
	path := polygonPath(c.Current(), pts)
	c.vertices, c.indices = c.vertices[:0], c.indices[:0]
	if fill {
		c.vertices, c.indices = path.AppendVerticesAndIndicesForFilling(c.vertices, c.indices)
	} else {
		c.vertices, c.indices = path.AppendVerticesAndIndicesForStroke(c.vertices, c.indices, &vector.StrokeOptions{
			Width:    c.StrokeWidth,
			LineJoin: vector.LineJoinMiter,
		})
	}
	rgba := col.ToRGBA()
	for i := range c.vertices {
		v := &c.vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR = float32(rgba.R) / 255
		v.ColorG = float32(rgba.G) / 255
		v.ColorB = float32(rgba.B) / 255
		v.ColorA = float32(rgba.A) / 255
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: c.AntiAlias}
	if fill {
		op.FillRule = ebiten.FillRuleNonZero
	}
	c.target().DrawTriangles(c.vertices, c.indices, whiteSubImage, op)
}

// DrawText implements grove.Canvas with the ebitenutil debug font.
func (c *Canvas) DrawText(p grove.Vec2, text string, col grove.Color) {
	w, h := textSize(text)
	if w == 0 {
		return
	}
	img := ebiten.NewImage(w, h)
	defer img.Deallocate()
	ebitenutil.DebugPrint(img, text)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(p.X, p.Y)
	op.GeoM.Concat(geoM(c.Current()))
	op.ColorScale.ScaleWithColor(col.ToRGBA())
	c.target().DrawImage(img, op)
}

// Masked implements grove.Canvas by drawing mask and content into offscreen
// images the size of the target and compositing them with source-in or
// source-out blending.
func (c *Canvas) Masked(mode grove.MaskMode, mask func(), content func()) {
	if mode == grove.MaskNone {
		content()
		return
	}
	b := c.target().Bounds()
	maskImg := ebiten.NewImage(b.Dx(), b.Dy())
	contentImg := ebiten.NewImage(b.Dx(), b.Dy())
	defer maskImg.Deallocate()
	defer contentImg.Deallocate()

	c.offscreen(maskImg, mask)
	c.offscreen(contentImg, content)

	blend := ebiten.BlendSourceIn
	if mode == grove.MaskSubtract {
		blend = ebiten.BlendSourceOut
	}
	maskImg.DrawImage(contentImg, &ebiten.DrawImageOptions{Blend: blend})
	c.target().DrawImage(maskImg, nil)
}

func (c *Canvas) offscreen(img *ebiten.Image, fn func()) {
	c.targets = append(c.targets, img)
	defer func() { c.targets = c.targets[:len(c.targets)-1] }()
	fn()
}

func geoM(m grove.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

func rectPoints(r grove.Rect) []grove.Vec2 {
	return []grove.Vec2{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

func polygonPath(m grove.Affine, pts []grove.Vec2) *vector.Path {
	var path vector.Path
	for i, p := range pts {
		q := m.Apply(p)
		if i == 0 {
			path.MoveTo(float32(q.X), float32(q.Y))
		} else {
			path.LineTo(float32(q.X), float32(q.Y))
		}
	}
	path.Close()
	return &path
}

// textSize returns the pixel size of text in the debug font.
func textSize(text string) (int, int) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	return int(math.Max(1, float64(w*glyphW))), len(lines) * glyphH
}
