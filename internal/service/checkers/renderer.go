package checkers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	corecheckers "github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MoveHighlight marks the last play on the rendered board.
type MoveHighlight struct {
	From     corecheckers.Coord
	To       corecheckers.Coord
	Captured []corecheckers.Coord
	Mover    corecheckers.Player
}

type PieceCount struct {
	First  int
	Second int
}

type RenderOptions struct {
	Highlight *MoveHighlight
	Counts    PieceCount
	HUDHeader string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *corecheckers.Board, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
	squareSize int
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{squareSize: 64}
}

const (
	sideMargin       = 32
	topMargin        = 96
	bottomMargin     = 32
	titleHeight      = 34
	turnPanelHeight  = 26
	gapBetweenPanels = 8
	gapToBoard       = 14
	panelRadius      = 10
	panelPaddingX    = 18
	shadowOffsetY    = 4
)

var (
	lightSquare         = color.RGBA{238, 223, 196, 255}
	darkSquare          = color.RGBA{116, 86, 64, 255}
	backgroundColor     = color.RGBA{22, 24, 34, 255}
	moveFromFill        = color.NRGBA{R: 255, G: 228, B: 120, A: 110}
	moveToFill          = color.NRGBA{R: 255, G: 228, B: 120, A: 170}
	capturedMarkColor   = color.NRGBA{R: 232, G: 72, B: 72, A: 200}
	moveArrowColor      = color.NRGBA{R: 148, G: 207, B: 255, A: 150}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 36, G: 40, B: 58, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 60}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *corecheckers.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	sq := r.squareSize
	boardSize := sq * corecheckers.Size
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawHUD(img, opts, boardRect)
	drawSquares(img, sq, origin)
	drawHighlight(img, opts.Highlight, sq, origin)
	if err := drawPieces(img, board, sq, origin); err != nil {
		return nil, err
	}
	drawCaptureMarks(img, opts.Highlight, sq, origin)
	drawCoordinates(img, sq, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func squareRect(c corecheckers.Coord, size int, origin image.Point) image.Rectangle {
	x := origin.X + c.Col*size
	y := origin.Y + c.Row*size
	return image.Rect(x, y, x+size, y+size)
}

func squareCenter(c corecheckers.Coord, size int, origin image.Point) pointF {
	r := squareRect(c, size, origin)
	return pointF{X: float64(r.Min.X + size/2), Y: float64(r.Min.Y + size/2)}
}

func drawSquares(dst *image.RGBA, size int, origin image.Point) {
	for row := 0; row < corecheckers.Size; row++ {
		for col := 0; col < corecheckers.Size; col++ {
			clr := lightSquare
			// 말은 (row+col)이 홀수인 칸에만 놓인다
			if (row+col)%2 == 1 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, squareRect(corecheckers.Coord{Row: row, Col: col}, size, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst *image.RGBA, board *corecheckers.Board, size int, origin image.Point) error {
	for row := 0; row < corecheckers.Size; row++ {
		for col := 0; col < corecheckers.Size; col++ {
			c := corecheckers.Coord{Row: row, Col: col}
			cell := board.At(c)
			if cell.Empty() {
				continue
			}
			piece, err := renderPieceImage(cell, size)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(c, size, origin), piece, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawHighlight(img *image.RGBA, h *MoveHighlight, size int, origin image.Point) {
	if h == nil {
		return
	}
	imagedraw.Draw(img, squareRect(h.From, size, origin), image.NewUniform(moveFromFill), image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, squareRect(h.To, size, origin), image.NewUniform(moveToFill), image.Point{}, imagedraw.Over)
	drawArrow(img, squareCenter(h.From, size, origin), squareCenter(h.To, size, origin), size, moveArrowColor)
}

func drawCaptureMarks(img *image.RGBA, h *MoveHighlight, size int, origin image.Point) {
	if h == nil {
		return
	}
	half := float64(size) * 0.22
	width := float64(size) * 0.06
	for _, c := range h.Captured {
		ctr := squareCenter(c, size, origin)
		drawStroke(img, pointF{ctr.X - half, ctr.Y - half}, pointF{ctr.X + half, ctr.Y + half}, width, capturedMarkColor)
		drawStroke(img, pointF{ctr.X - half, ctr.Y + half}, pointF{ctr.X + half, ctr.Y - half}, width, capturedMarkColor)
	}
}

func drawArrow(img *image.RGBA, start, end pointF, size int, clr color.Color) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	headLen := float64(size) * 0.38
	headWidth := float64(size) * 0.34
	base := pointF{X: end.X - dirX*headLen, Y: end.Y - dirY*headLen}
	drawStroke(img, start, base, float64(size)*0.12, clr)
	fillTriangleF(img,
		end,
		pointF{X: base.X - perpX*headWidth/2, Y: base.Y - perpY*headWidth/2},
		pointF{X: base.X + perpX*headWidth/2, Y: base.Y + perpY*headWidth/2},
		clr,
	)
}

// drawStroke fills a quad of the given width centred on the segment a-b.
func drawStroke(img *image.RGBA, a, b pointF, width float64, clr color.Color) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	px := -dy / length * width / 2
	py := dx / length * width / 2
	p0 := pointF{a.X - px, a.Y - py}
	p1 := pointF{a.X + px, a.Y + py}
	p2 := pointF{b.X + px, b.Y + py}
	p3 := pointF{b.X - px, b.Y - py}
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Player vs Bot"
	}
	turnText := strings.TrimSpace(opts.HUDTurn)
	if turnText == "" {
		turnText = "Turn"
	}
	scoreText := formatCounts(opts.Counts)

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnPanelHeight
	titleBottom := turnTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight

	scoreWidth := drawer.MeasureString(scoreText).Round() + panelPaddingX*2
	titleWidth := drawer.MeasureString(title).Round() + panelPaddingX*2
	if maxTitle := boardRect.Dx() - scoreWidth - 16; titleWidth > maxTitle {
		titleWidth = maxTitle
		title = truncateWithEllipsis(drawer.Face, title, titleWidth-panelPaddingX*2)
	}
	turnWidth := drawer.MeasureString(turnText).Round() + panelPaddingX*2

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, titleTop, boardRect.Max.X, titleBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	for _, r := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		drawRoundedPanel(img, r.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	}
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func formatCounts(c PieceCount) string {
	return fmt.Sprintf("x %d : %d o", c.First, c.Second)
}

func drawCoordinates(dst *image.RGBA, size int, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + corecheckers.Size*size
	for i := 0; i < corecheckers.Size; i++ {
		center := origin.Y + i*size + size/2
		drawCenteredText(drawer, strconv.Itoa(i+1), origin.X-sideMargin/2, center+ascent/2)
		colCenter := origin.X + i*size + size/2
		drawCenteredText(drawer, string(rune('A'+i)), colCenter, boardEnd+ascent+4)
	}
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return ""
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return "..."
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = min(max(radius, 0), rect.Dx()/2, rect.Dy()/2)
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c, radius, clr, c.X < rect.Min.X+rect.Dx()/2, c.Y < rect.Min.Y+rect.Dy()/2)
	}
}

// drawQuarterDisc fills the corner quadrant of a disc facing away from the panel.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, left, top bool) {
	rSquared := radius * radius
	for y := -radius; y <= 0; y++ {
		for x := -radius; x <= 0; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			px, py := x, y
			if !left {
				px = -x
			}
			if !top {
				py = -y
			}
			blendPixel(img, center.X+px, center.Y+py, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 65535 - sa
	// RGBA() returns alpha-premultiplied values, image.RGBA stores premultiplied bytes
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/65535) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/65535) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/65535) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/65535) >> 8),
	})
}

type pointF struct {
	X float64
	Y float64
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}
