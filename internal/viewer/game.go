package viewer

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"jsonmesh-renderer/internal/controls"
)

// wheelNotch converts one wheel step into the trackball's delta units.
const wheelNotch = 3

var buttons = []struct {
	mouse ebiten.MouseButton
	btn   controls.Button
}{
	{ebiten.MouseButtonLeft, controls.ButtonLeft},
	{ebiten.MouseButtonMiddle, controls.ButtonMiddle},
	{ebiten.MouseButtonRight, controls.ButtonRight},
}

// Game adapts a Session to ebiten.
type Game struct {
	s       *Session
	img     *ebiten.Image
	pix     []byte
	shown   uint64
	help    bool
	lastX   int
	lastY   int
	started bool
}

// Run opens a window and blocks until it is closed.
func Run(s *Session, title string, width, height int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(&Game{s: s, help: true})
	s.Wait()
	if err == ebiten.Termination {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.s.ResetCamera()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.s.Reframe()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.s.ToggleSpin()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.help = !g.help
	}

	g.updatePointer()
	g.s.Tick(time.Now())
	return nil
}

func (g *Game) updatePointer() {
	tb := g.s.Trackball()
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	for _, b := range buttons {
		if inpututil.IsMouseButtonJustPressed(b.mouse) {
			tb.PointerDown(b.btn, x, y)
		}
	}
	if !g.started || cx != g.lastX || cy != g.lastY {
		tb.PointerMove(x, y)
		g.lastX, g.lastY, g.started = cx, cy, true
	}
	for _, b := range buttons {
		if inpututil.IsMouseButtonJustReleased(b.mouse) {
			tb.PointerUp()
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		tb.Wheel(dy * wheelNotch)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame, version := g.s.Frame()
	if frame != nil && version != g.shown {
		b := frame.Bounds()
		if g.img == nil || g.img.Bounds().Dx() != b.Dx() || g.img.Bounds().Dy() != b.Dy() {
			if g.img != nil {
				g.img.Deallocate()
			}
			g.img = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.pix = premultiply(g.pix, frame.Pix)
		g.img.WritePixels(g.pix)
		g.shown = version
	}
	if g.img != nil {
		screen.DrawImage(g.img, nil)
	}

	if g.help {
		spin := "off"
		if g.s.Spinning() {
			spin = "on"
		}
		framed := "auto"
		if !g.s.Framed() {
			framed = "default"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS %.0f  camera %s  spin %s\nleft drag: rotate  middle/wheel: zoom  right drag: pan\nR reset  F reframe  Space spin  H help  Q quit",
			ebiten.ActualFPS(), framed, spin))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.s.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// premultiply converts NRGBA pixels to the premultiplied RGBA ebiten expects, reusing dst.
func premultiply(dst, src []byte) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i] = uint8(uint32(src[i]) * a / 255)
		dst[i+1] = uint8(uint32(src[i+1]) * a / 255)
		dst[i+2] = uint8(uint32(src[i+2]) * a / 255)
		dst[i+3] = src[i+3]
	}
	return dst
}
