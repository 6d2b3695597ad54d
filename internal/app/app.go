//go:build ebiten

package app

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"cogcanvas/internal/core"
	"cogcanvas/internal/doc"
	"cogcanvas/internal/host"
	"cogcanvas/internal/ui"
)

type mode int

const (
	modeRead mode = iota
	modeBibliography
	modeGraph
)

const (
	marginX    = 48
	marginTop  = 72
	blockGap   = 24
	maxColumnW = 760

	missingPanelH = 110
)

var (
	bgColor      = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	textColor    = color.RGBA{R: 205, G: 210, B: 220, A: 255}
	headingColor = color.RGBA{R: 240, G: 240, B: 248, A: 255}
	dimColor     = color.RGBA{R: 130, G: 138, B: 152, A: 255}
	accentColor  = color.RGBA{R: 96, G: 170, B: 220, A: 255}
)

// Game is the reader shell: it renders the current section's blocks, routes
// input to mounts, and pumps the frame scheduler.
type Game struct {
	cfg   *Config
	log   *slog.Logger
	doc   *doc.Document
	sched *core.Scheduler
	pacer *core.Pacer

	mode   mode
	scroll int

	winW, winH int
	containerW int

	full      *host.Mount
	strip     *ui.ControlStrip
	wasNative bool

	images    map[*host.Mount]*ebiten.Image
	dragMount *host.Mount
	dragRect  image.Rectangle
}

type blockRect struct {
	block doc.Block
	rect  image.Rectangle
}

// New constructs the shell and opens the first section.
func New(cfg *Config, log *slog.Logger, document *doc.Document, sched *core.Scheduler) *Game {
	g := &Game{
		cfg:    cfg,
		log:    log,
		doc:    document,
		sched:  sched,
		pacer:  core.NewPacer(cfg.TPS),
		images: map[*host.Mount]*ebiten.Image{},
		winW:   cfg.Width,
		winH:   cfg.Height,
	}
	g.containerW = g.columnWidth()
	document.Relayout(doc.Layout{ContainerW: g.containerW})
	document.Open(0)
	return g
}

func (g *Game) columnWidth() int {
	w := g.winW - 2*marginX
	if w > maxColumnW {
		w = maxColumnW
	}
	if w < 0 {
		w = 0
	}
	return w
}

// Update handles input, layout changes, and simulation ticking.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if w := g.columnWidth(); w != g.containerW {
		g.containerW = w
		g.doc.Relayout(doc.Layout{ContainerW: w})
	}

	if g.full != nil {
		g.updateFullscreen()
	} else {
		g.updateRead()
	}

	for n := g.pacer.Ticks(); n > 0; n-- {
		g.sched.Tick()
	}
	return nil
}

func (g *Game) updateRead() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		if g.mode == modeBibliography {
			g.mode = modeRead
		} else {
			g.mode = modeBibliography
		}
		g.scroll = 0
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		if g.mode == modeGraph {
			g.mode = modeRead
		} else {
			g.mode = modeGraph
		}
		g.scroll = 0
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.mode = modeRead
		return
	}

	if g.mode == modeRead {
		if inpututil.IsKeyJustPressed(ebiten.KeyN) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
			g.openSection(g.doc.Index() + 1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
			g.openSection(g.doc.Index() - 1)
		}
	}

	_, wy := ebiten.Wheel()
	if wy != 0 {
		g.scroll -= int(wy * 40)
		g.clampScroll()
	}

	if g.mode != modeRead {
		return
	}
	g.routePointer()
}

func (g *Game) openSection(i int) {
	if i < 0 || i >= g.doc.Len() || i == g.doc.Index() {
		return
	}
	g.doc.Open(i)
	g.scroll = 0
	g.images = map[*host.Mount]*ebiten.Image{}
	if sec := g.doc.Current(); sec != nil {
		g.log.Info("opened section", "slug", sec.Slug, "index", i)
	}
}

// routePointer delivers clicks and drags to the sim block under the cursor.
// A press on a gated mobile preview promotes it to fullscreen instead.
func (g *Game) routePointer() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for _, br := range g.layoutBlocks() {
			sim, ok := br.block.(doc.SimBlock)
			if !ok || !pointIn(mx, my, br.rect) {
				continue
			}
			if sim.Mount.InteractionGated() {
				g.enterFullscreen(sim.Mount)
				return
			}
			sim.Mount.PointerDown(mx-br.rect.Min.X, my-br.rect.Min.Y)
			g.dragMount = sim.Mount
			g.dragRect = br.rect
			return
		}
		return
	}

	if g.dragMount == nil {
		return
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragMount.PointerDrag(mx-g.dragRect.Min.X, my-g.dragRect.Min.Y)
		return
	}
	g.dragMount.PointerUp(mx-g.dragRect.Min.X, my-g.dragRect.Min.Y)
	g.dragMount = nil
}

func (g *Game) enterFullscreen(m *host.Mount) {
	m.EnterFullscreen(g.winW, g.winH, host.Insets{})
	if m.State() != host.StateFullscreen {
		return
	}
	g.full = m
	g.wasNative = false
	g.strip = nil
	if unit := m.Unit(); unit != nil {
		g.strip = ui.NewControlStrip(unit)
	}
	// request native fullscreen; denial leaves the overlay emulation, which
	// behaves identically
	ebiten.SetFullscreen(true)
}

func (g *Game) exitFullscreen(platformInitiated bool) {
	if g.full == nil {
		return
	}
	if platformInitiated {
		g.full.SyncPlatformFullscreen(false, g.winW, g.winH, host.Insets{})
	} else {
		g.full.ExitFullscreen()
	}
	ebiten.SetFullscreen(false)
	delete(g.images, g.full)
	g.full = nil
	g.strip = nil
}

func (g *Game) updateFullscreen() {
	native := ebiten.IsFullscreen()
	if native {
		g.wasNative = true
	}
	// the platform's fullscreen state is authoritative: if it dropped out
	// from under us, follow it
	if g.wasNative && !native {
		g.exitFullscreen(true)
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.exitFullscreen(false)
		return
	}

	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if g.strip != nil && g.strip.Click(mx, my) {
			return
		}
		g.full.PointerDown(mx, my)
		g.dragMount = g.full
		g.dragRect = image.Rectangle{}
		return
	}
	if g.dragMount != nil {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.dragMount.PointerDrag(mx, my)
		} else {
			g.dragMount.PointerUp(mx, my)
			g.dragMount = nil
		}
	}
}

// layoutBlocks computes the on-screen rectangle of every block in the
// current section at the current scroll position.
func (g *Game) layoutBlocks() []blockRect {
	sec := g.doc.Current()
	if sec == nil {
		return nil
	}
	x := (g.winW - g.containerW) / 2
	if x < marginX {
		x = marginX
	}
	y := marginTop - g.scroll

	rects := make([]blockRect, 0, len(sec.Blocks))
	for _, b := range sec.Blocks {
		h := 0
		switch blk := b.(type) {
		case doc.TextBlock:
			h = len(ui.WrapText(blk.Markdown, g.containerW)) * ui.LineHeight
		case doc.SimBlock:
			h = blk.Mount.Viewport().Height
			if h == 0 {
				h = missingPanelH
			}
			h += ui.LineHeight // caption line
		case doc.MissingBlock:
			h = missingPanelH
		}
		rects = append(rects, blockRect{block: b, rect: image.Rect(x, y, x+g.containerW, y+h)})
		y += h + blockGap
	}
	return rects
}

func (g *Game) contentHeight() int {
	rects := g.layoutBlocks()
	if len(rects) == 0 {
		return 0
	}
	last := rects[len(rects)-1].rect
	return last.Max.Y + g.scroll - marginTop
}

func (g *Game) clampScroll() {
	if g.scroll < 0 {
		g.scroll = 0
	}
	if g.mode != modeRead {
		return
	}
	max := g.contentHeight() - (g.winH - marginTop - 40)
	if max < 0 {
		max = 0
	}
	if g.scroll > max {
		g.scroll = max
	}
}

// Draw renders the current mode.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	if g.full != nil {
		g.drawFullscreen(screen)
		return
	}
	switch g.mode {
	case modeBibliography:
		g.drawBibliography(screen)
	case modeGraph:
		g.drawGraph(screen)
	default:
		g.drawSection(screen)
	}
}

func (g *Game) drawSection(screen *ebiten.Image) {
	sec := g.doc.Current()
	if sec == nil {
		ui.DrawText(screen, "vault is empty", marginX, marginTop, dimColor)
		return
	}

	header := fmt.Sprintf("%s — %s  [%d/%d]", g.doc.Title(), sec.Title, g.doc.Index()+1, g.doc.Len())
	ui.DrawText(screen, header, marginX, 32, headingColor)
	ui.DrawText(screen, "n/p sections · b bibliography · g graph · q quit", marginX, g.winH-14, dimColor)

	for _, br := range g.layoutBlocks() {
		if br.rect.Max.Y < 0 || br.rect.Min.Y > g.winH {
			continue
		}
		switch blk := br.block.(type) {
		case doc.TextBlock:
			g.drawTextBlock(screen, blk, br.rect)
		case doc.SimBlock:
			g.drawSimBlock(screen, blk.Mount, br.rect)
		case doc.MissingBlock:
			ui.ErrorPanel(screen, br.rect, "Unknown simulation", fmt.Sprintf("no simulation registered for id %q", blk.ID))
		}
	}
}

func (g *Game) drawTextBlock(screen *ebiten.Image, blk doc.TextBlock, r image.Rectangle) {
	y := r.Min.Y + 13
	for _, line := range ui.WrapText(blk.Markdown, r.Dx()) {
		col := textColor
		if len(line) > 0 && line[0] == '#' {
			col = headingColor
		}
		ui.DrawText(screen, line, r.Min.X, y, col)
		y += ui.LineHeight
	}
}

func (g *Game) drawSimBlock(screen *ebiten.Image, m *host.Mount, r image.Rectangle) {
	vp := m.Viewport()
	simRect := image.Rect(r.Min.X, r.Min.Y, r.Min.X+vp.Width, r.Min.Y+vp.Height)

	switch m.State() {
	case host.StateFailed:
		ui.ErrorPanel(screen, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+missingPanelH),
			fmt.Sprintf("Simulation %q failed", m.ID()), m.Fault())
		return
	case host.StateDeferred:
		return
	}

	unit := m.Unit()
	if unit == nil || unit.Frame() == nil {
		return
	}
	frame := unit.Frame()

	img := g.images[m]
	if img == nil || img.Bounds() != frame.Bounds() {
		img = ebiten.NewImage(frame.Bounds().Dx(), frame.Bounds().Dy())
		g.images[m] = img
	}
	img.ReplacePixels(frame.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(simRect.Min.X), float64(simRect.Min.Y))
	if m.State() == host.StatePreview {
		op.ColorM.Scale(1, 1, 1, 0.55)
	}
	screen.DrawImage(img, op)

	caption := m.Title()
	if m.State() == host.StatePreview {
		caption += " — tap to interact"
	}
	ui.DrawText(screen, caption, simRect.Min.X, simRect.Max.Y+14, accentColor)
}

func (g *Game) drawFullscreen(screen *ebiten.Image) {
	m := g.full
	unit := m.Unit()
	if m.State() == host.StateFailed || unit == nil || unit.Frame() == nil {
		ui.ErrorPanel(screen, image.Rect(marginX, marginTop, g.winW-marginX, marginTop+missingPanelH),
			fmt.Sprintf("Simulation %q failed", m.ID()), m.Fault())
		ui.DrawText(screen, "esc to return", marginX, g.winH-14, dimColor)
		return
	}
	frame := unit.Frame()

	img := g.images[m]
	if img == nil || img.Bounds() != frame.Bounds() {
		img = ebiten.NewImage(frame.Bounds().Dx(), frame.Bounds().Dy())
		g.images[m] = img
	}
	img.ReplacePixels(frame.Pix)
	screen.DrawImage(img, &ebiten.DrawImageOptions{})

	ui.DrawText(screen, m.Title(), 16, 24, headingColor)
	if m.Description() != "" {
		ui.DrawText(screen, m.Description(), 16, 24+ui.LineHeight, dimColor)
	}
	ui.DrawText(screen, "esc to exit fullscreen", 16, g.winH-14, dimColor)

	if g.strip != nil {
		stripY := g.winH - g.strip.Height() - 30
		g.strip.Layout(16, stripY)
		g.strip.Draw(screen, 16, stripY)
	}
}

func (g *Game) drawBibliography(screen *ebiten.Image) {
	ui.DrawText(screen, g.doc.Title()+" — Bibliography", marginX, 32, headingColor)
	ui.DrawText(screen, "b/esc back · q quit", marginX, g.winH-14, dimColor)

	y := marginTop - g.scroll
	for _, ref := range g.doc.Bibliography() {
		for i, line := range ui.WrapText(ref.Citation, g.containerW) {
			col := textColor
			x := marginX
			if i == 0 {
				ui.DrawText(screen, "["+ref.Key+"]", x, y+13, accentColor)
			}
			ui.DrawText(screen, line, x+160, y+13, col)
			y += ui.LineHeight
		}
		y += 8
	}
}

func (g *Game) drawGraph(screen *ebiten.Image) {
	ui.DrawText(screen, g.doc.Title()+" — Knowledge Graph", marginX, 32, headingColor)
	ui.DrawText(screen, "g/esc back · q quit", marginX, g.winH-14, dimColor)

	graph := g.doc.Graph()
	if len(graph.Nodes) == 0 {
		return
	}

	cx := float64(g.winW) / 2
	cy := float64(g.winH) / 2
	rx := float64(g.winW)/2 - 140
	ry := float64(g.winH)/2 - 120

	pos := make(map[string][2]float64, len(graph.Nodes))
	for i, n := range graph.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(graph.Nodes))
		pos[n.Slug] = [2]float64{cx + rx*math.Cos(angle), cy + ry*math.Sin(angle)}
	}

	for _, e := range graph.Edges {
		from, okF := pos[e.From]
		to, okT := pos[e.To]
		if !okF || !okT {
			continue
		}
		ui.DrawLine(screen, from[0], from[1], to[0], to[1], 1, color.RGBA{R: 70, G: 80, B: 100, A: 255})
	}
	for _, n := range graph.Nodes {
		p := pos[n.Slug]
		ui.FillRect(screen, image.Rect(int(p[0])-3, int(p[1])-3, int(p[0])+3, int(p[1])+3), accentColor)
		ui.DrawText(screen, n.Title, int(p[0])+8, int(p[1])+4, textColor)
	}
}

// Layout adopts the window size so the document column can reflow.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.winW = outsideWidth
	g.winH = outsideHeight
	return outsideWidth, outsideHeight
}

func pointIn(x, y int, r image.Rectangle) bool {
	return x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y
}
