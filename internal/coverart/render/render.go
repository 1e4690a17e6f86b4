// Package render draws playlist cover art: genre covers with big centered
// text on a background template, and artist covers with a "This is" overlay
// in the bottom-left corner. Rendering is bounded by a deadline so a corrupt
// image or giant font cannot stall a generation pass.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"jellyjams/internal/services"
	"jellyjams/internal/textutil"
)

const (
	genreCanvasSize  = 600
	artistCanvasSize = 350

	// textCanvasSize is the oversized scratch canvas text is drawn on before
	// being cropped and scaled onto the artist cover.
	textCanvasSize = 1000

	baseArtistFontSize = 80
	artistTextScale    = 3.0
	outlineWidth       = 3

	// DefaultDeadline bounds a single render.
	DefaultDeadline = 10 * time.Second
)

// defaultFontPaths are tried in order before falling back to the embedded Go
// font.
var defaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
}

// Options configures a TextRenderer.
type Options struct {
	// FontPaths overrides the font search list.
	FontPaths []string
	// Deadline bounds each render. Zero means DefaultDeadline.
	Deadline time.Duration
}

// TextRenderer implements cover generation with text overlays.
type TextRenderer struct {
	fontPaths []string
	deadline  time.Duration
}

// New builds a TextRenderer.
func New(opts Options) *TextRenderer {
	paths := opts.FontPaths
	if len(paths) == 0 {
		paths = defaultFontPaths
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &TextRenderer{fontPaths: paths, deadline: deadline}
}

// GenreCover renders the background template at 600x600 with the genre name
// and the word RADIO centered in outlined capitals, saved as JPEG.
func (r *TextRenderer) GenreCover(ctx context.Context, backgroundPath, genre, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	src, err := decodeImage(backgroundPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "genre cover", "decode background", err)
	}
	if err := checkpoint(ctx, "genre cover"); err != nil {
		return err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, genreCanvasSize, genreCanvasSize))
	scaled := resize.Resize(genreCanvasSize, genreCanvasSize, src, resize.Lanczos3)
	draw.Draw(canvas, canvas.Bounds(), scaled, image.Point{}, draw.Src)

	line1 := strings.ToUpper(textutil.FoldASCII(genre))
	line2 := "RADIO"
	face, err := r.fitFace(ctx, []string{line1, line2}, genreCanvasSize-40)
	if err != nil {
		return err
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	const lineSpacing = 20
	total := 2*lineHeight + lineSpacing
	yBase := (genreCanvasSize-total)/2 + metrics.Ascent.Ceil()

	for i, line := range []string{line1, line2} {
		width := font.MeasureString(face, line).Ceil()
		x := (genreCanvasSize - width) / 2
		y := yBase + i*(lineHeight+lineSpacing)
		drawOutlinedText(canvas, face, line, x, y, color.White, color.Black)
	}
	if err := checkpoint(ctx, "genre cover"); err != nil {
		return err
	}
	return saveJPEG(destPath, canvas)
}

// ArtistOverlay renders the artist's folder image at 350x350 with a scaled
// "This is <artist>" overlay bottom-left, saved as PNG. The overlay color
// adapts to the brightness of the area it covers.
func (r *TextRenderer) ArtistOverlay(ctx context.Context, sourcePath, artist, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	src, err := decodeImage(sourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "artist overlay", "decode source", err)
	}
	if err := checkpoint(ctx, "artist overlay"); err != nil {
		return err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, artistCanvasSize, artistCanvasSize))
	fitted := resize.Thumbnail(artistCanvasSize, artistCanvasSize, src, resize.Lanczos3)
	offset := image.Pt(
		(artistCanvasSize-fitted.Bounds().Dx())/2,
		(artistCanvasSize-fitted.Bounds().Dy())/2,
	)
	draw.Draw(canvas, fitted.Bounds().Add(offset), fitted, image.Point{}, draw.Src)

	textColor := adaptiveTextColor(canvas)
	face, err := r.loadFace(baseArtistFontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	line1 := "This is"
	line2 := textutil.FoldASCII(artist)
	if err := checkpoint(ctx, "artist overlay"); err != nil {
		return err
	}

	text := renderTextBlock(face, []string{line1, line2}, textColor)
	if text == nil {
		return services.Wrap(services.ErrValidation, "render", "artist overlay", "text block is empty", nil)
	}
	if err := checkpoint(ctx, "artist overlay"); err != nil {
		return err
	}

	// Scale up for impact, then clamp to the canvas width.
	w := uint(float64(text.Bounds().Dx()) * artistTextScale)
	h := uint(float64(text.Bounds().Dy()) * artistTextScale)
	scaled := resize.Resize(w, h, text, resize.Lanczos3)
	maxWidth := artistCanvasSize - 40
	if scaled.Bounds().Dx() > maxWidth {
		ratio := float64(maxWidth) / float64(scaled.Bounds().Dx())
		scaled = resize.Resize(uint(maxWidth), uint(float64(scaled.Bounds().Dy())*ratio), scaled, resize.Lanczos3)
	}
	if err := checkpoint(ctx, "artist overlay"); err != nil {
		return err
	}

	pasteY := artistCanvasSize - scaled.Bounds().Dy() - 30
	if pasteY < 0 {
		pasteY = 10
	}
	target := scaled.Bounds().Add(image.Pt(20, pasteY))
	draw.Draw(canvas, target, scaled, scaled.Bounds().Min, draw.Over)

	return savePNG(destPath, canvas)
}

// renderTextBlock draws the lines left-aligned on a large transparent canvas
// and returns the tightly cropped result, or nil when nothing was drawn.
func renderTextBlock(face font.Face, lines []string, fill color.Color) *image.RGBA {
	scratch := image.NewRGBA(image.Rect(0, 0, textCanvasSize, textCanvasSize))
	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	const lineSpacing = 5

	drawn := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		drawn++
	}
	if drawn == 0 {
		return nil
	}

	y := (textCanvasSize-drawn*(lineHeight+lineSpacing))/2 + metrics.Ascent.Ceil()
	drawer := &font.Drawer{Dst: scratch, Src: image.NewUniform(fill), Face: face}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		drawer.Dot = fixed.P(50, y)
		drawer.DrawString(line)
		y += lineHeight + lineSpacing
	}

	bounds, ok := opaqueBounds(scratch)
	if !ok {
		return nil
	}
	return scratch.SubImage(bounds).(*image.RGBA)
}

// opaqueBounds finds the bounding box of all pixels with nonzero alpha.
func opaqueBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if minX > maxX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// adaptiveTextColor samples the bottom band of the canvas where the overlay
// lands and picks white on dark backgrounds, black on light ones.
func adaptiveTextColor(img *image.RGBA) color.Color {
	b := img.Bounds()
	bandTop := b.Max.Y - 120
	if bandTop < b.Min.Y {
		bandTop = b.Min.Y
	}
	var sum, count float64
	for y := bandTop; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sum += 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			count++
		}
	}
	if count == 0 || sum/count < 128 {
		return color.White
	}
	return color.Black
}

func drawOutlinedText(dst *image.RGBA, face font.Face, text string, x, y int, fill, outline color.Color) {
	outlineDrawer := &font.Drawer{Dst: dst, Src: image.NewUniform(outline), Face: face}
	for dx := -outlineWidth; dx <= outlineWidth; dx++ {
		for dy := -outlineWidth; dy <= outlineWidth; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			outlineDrawer.Dot = fixed.P(x+dx, y+dy)
			outlineDrawer.DrawString(text)
		}
	}
	fillDrawer := &font.Drawer{Dst: dst, Src: image.NewUniform(fill), Face: face}
	fillDrawer.Dot = fixed.P(x, y)
	fillDrawer.DrawString(text)
}

// fitFace loads a face large enough to be striking but shrunk until the
// longest line fits the given width.
func (r *TextRenderer) fitFace(ctx context.Context, lines []string, maxWidth int) (font.Face, error) {
	size := 140.0
	for {
		if err := checkpoint(ctx, "fit face"); err != nil {
			return nil, err
		}
		face, err := r.loadFace(size)
		if err != nil {
			return nil, err
		}
		widest := 0
		for _, line := range lines {
			if w := font.MeasureString(face, line).Ceil(); w > widest {
				widest = w
			}
		}
		if widest <= maxWidth || size <= 24 {
			return face, nil
		}
		face.Close()
		size -= 8
	}
}

func (r *TextRenderer) loadFace(size float64) (font.Face, error) {
	for _, path := range r.fontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			continue
		}
		return face, nil
	}
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "load face", "parse embedded font", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "load face", "build embedded face", err)
	}
	return face, nil
}

func checkpoint(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTimeout, "render", op, "render deadline exceeded", err)
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o664)
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "save", "create cover file", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		f.Close()
		return services.Wrap(services.ErrTransient, "render", "save", "encode jpeg", err)
	}
	return f.Close()
}

func savePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o664)
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "save", "create cover file", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return services.Wrap(services.ErrTransient, "render", "save", "encode png", err)
	}
	return f.Close()
}
