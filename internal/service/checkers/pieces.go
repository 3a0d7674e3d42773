package checkers

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	corecheckers "github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const pieceSVGTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">
<circle cx="50" cy="55" r="38" fill="#000000" fill-opacity="0.35"/>
<circle cx="50" cy="49" r="38" fill="%s" stroke="%s" stroke-width="3"/>
<circle cx="50" cy="49" r="27" fill="none" stroke="%s" stroke-width="2"/>
%s</svg>`

const crownSVG = `<path d="M31 60 L34 37 L43 49 L50 33 L57 49 L66 37 L69 60 Z" fill="#f5c542" stroke="#7a5c12" stroke-width="2"/>`

type pieceStyle struct {
	fill   string
	stroke string
	ring   string
}

var pieceStyles = map[corecheckers.Player]pieceStyle{
	corecheckers.First:  {fill: "#f4efe6", stroke: "#6b6358", ring: "#c9c0b2"},
	corecheckers.Second: {fill: "#2b2b33", stroke: "#0d0d10", ring: "#4d4d59"},
}

type pieceCacheKey struct {
	cell corecheckers.Cell
	size int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceSVG(cell corecheckers.Cell) (string, error) {
	style, ok := pieceStyles[cell.Owner]
	if !ok {
		return "", fmt.Errorf("no piece style for %v", cell.Owner)
	}
	extra := ""
	if cell.Rank == corecheckers.King {
		extra = crownSVG
	}
	return fmt.Sprintf(pieceSVGTemplate, style.fill, style.stroke, style.ring, extra), nil
}

func renderPieceImage(cell corecheckers.Cell, size int) (image.Image, error) {
	key := pieceCacheKey{cell: cell, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	src, err := pieceSVG(cell)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
