package shape

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ayusman/mudra/internal/vmath"
)

// Text rasterization parameters.
const (
	TextFontSize  = 96.0  // pixels
	TextStride    = 3     // sample every Nth pixel in both directions
	TextThreshold = 128   // minimum alpha of a foreground pixel
	TextScale     = 0.035 // world units per bitmap pixel
	TextJitter    = 0.02
	TextDepth     = 0.15
	textPadding   = 8
	textMaxWidth  = 2 * 4.6 // keep long strings inside MaxRadius
)

// CJKFontCandidates are bold system faces with CJK coverage. The first one
// that loads joins the font chain ahead of the embedded Go Bold.
var CJKFontCandidates = []string{
	// macOS
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Medium.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/System/Library/Fonts/AppleSDGothicNeo.ttc",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/opentype/noto/NotoSerifCJK-Bold.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
	"/usr/share/fonts/wqy-zenhei/wqy-zenhei.ttc",
	// Windows
	`C:\Windows\Fonts\msyhbd.ttc`,
	`C:\Windows\Fonts\YuGothB.ttc`,
	`C:\Windows\Fonts\malgunbd.ttf`,
}

// ErrEmptyCollection is returned for a font collection without any usable face.
var ErrEmptyCollection = errors.New("font collection has no faces")

// TextRasterizer turns a string into foreground pixel samples. Each rune is
// drawn with the first font in the chain that has a glyph for it.
type TextRasterizer struct {
	fonts []*opentype.Font
}

// NewTextRasterizer builds the font chain: the font at path when set, then
// the first loadable entry of CJKFontCandidates, then the embedded Go Bold.
func NewTextRasterizer(path string) (*TextRasterizer, error) {
	var fonts []*opentype.Font
	if path != "" {
		f, err := LoadFont(path)
		if err != nil {
			return nil, err
		}
		fonts = append(fonts, f)
	}

	if f := firstFont(CJKFontCandidates, path); f != nil {
		fonts = append(fonts, f)
	}

	return newTextRasterizer(fonts...)
}

// newTextRasterizer appends the embedded Go Bold to fonts.
func newTextRasterizer(fonts ...*opentype.Font) (*TextRasterizer, error) {
	fallback, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &TextRasterizer{fonts: append(fonts, fallback)}, nil
}

// LoadFont reads a TrueType or CFF OpenType font. For a collection (.ttc)
// the first bold member is used, or the first member when none is bold.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}

	if !bytes.HasPrefix(data, []byte("ttcf")) {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		return f, nil
	}

	c, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font collection %s: %w", path, err)
	}
	f, err := boldMember(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func boldMember(c *opentype.Collection) (*opentype.Font, error) {
	var buf sfnt.Buffer
	var first *opentype.Font
	for i := 0; i < c.NumFonts(); i++ {
		f, err := c.Font(i)
		if err != nil {
			continue
		}
		if first == nil {
			first = f
		}
		name, err := f.Name(&buf, sfnt.NameIDSubfamily)
		if err == nil && strings.Contains(strings.ToLower(name), "bold") {
			return f, nil
		}
	}
	if first == nil {
		return nil, ErrEmptyCollection
	}
	return first, nil
}

// firstFont loads the first existing candidate other than skip.
func firstFont(candidates []string, skip string) *opentype.Font {
	for _, path := range candidates {
		if path == skip {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if f, err := LoadFont(path); err == nil {
			return f
		}
	}
	return nil
}

// fontFor returns the chain index of the first font with a glyph for r, or
// -1 when no font has one.
func (t *TextRasterizer) fontFor(buf *sfnt.Buffer, r rune) int {
	for i, f := range t.fonts {
		if idx, err := f.GlyphIndex(buf, r); err == nil && idx != 0 {
			return i
		}
	}
	return -1
}

// run is a stretch of a line drawn with one font.
type run struct {
	font int
	text string
}

// runs splits line by font. Runes no font covers are dropped rather than
// drawn as boxes.
func (t *TextRasterizer) runs(buf *sfnt.Buffer, line string) []run {
	var out []run
	for _, r := range line {
		i := t.fontFor(buf, r)
		if i < 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].font == i {
			out[n-1].text += string(r)
			continue
		}
		out = append(out, run{font: i, text: string(r)})
	}
	return out
}

// Bitmap draws the covered runes of text, one line per "\n", into an alpha
// image.
func (t *TextRasterizer) Bitmap(text string) *image.Alpha {
	faces := make([]font.Face, len(t.fonts))
	var ascent, descent fixed.Int26_6
	for i, f := range t.fonts {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    TextFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		defer face.Close()
		faces[i] = face

		m := face.Metrics()
		ascent = max(ascent, m.Ascent)
		descent = max(descent, m.Descent)
	}
	lineHeight := (ascent + descent).Ceil()

	var buf sfnt.Buffer
	var lines [][]run
	width := 0
	for _, line := range strings.Split(text, "\n") {
		runs := t.runs(&buf, line)
		w := fixed.Int26_6(0)
		for _, r := range runs {
			if faces[r.font] != nil {
				w += font.MeasureString(faces[r.font], r.text)
			}
		}
		width = max(width, w.Ceil())
		lines = append(lines, runs)
	}

	img := image.NewAlpha(image.Rect(0, 0, width+2*textPadding, lineHeight*len(lines)+2*textPadding))
	d := &font.Drawer{
		Dst: img,
		Src: image.Opaque,
	}
	for i, runs := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(textPadding),
			Y: fixed.I(textPadding+i*lineHeight) + ascent,
		}
		for _, r := range runs {
			if faces[r.font] == nil {
				continue
			}
			d.Face = faces[r.font]
			d.DrawString(r.text)
		}
	}

	return img
}

// Pixels returns the foreground pixel coordinates of text at TextStride
// spacing together with the bitmap bounds.
func (t *TextRasterizer) Pixels(text string) ([]image.Point, image.Rectangle) {
	img := t.Bitmap(text)
	bounds := img.Bounds()

	var pixels []image.Point
	for y := bounds.Min.Y; y < bounds.Max.Y; y += TextStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += TextStride {
			if img.AlphaAt(x, y).A > TextThreshold {
				pixels = append(pixels, image.Point{X: x, Y: y})
			}
		}
	}
	return pixels, bounds
}

// Cloud maps the rasterized text to count 3D points. When count exceeds the
// number of pixels they are reused cyclically. Text without any drawable
// pixel yields a grid so the cloud is never empty.
func (t *TextRasterizer) Cloud(r *rand.Rand, text string, count int) Cloud {
	if count < 1 {
		return Cloud{}
	}

	pixels, bounds := t.Pixels(text)
	if len(pixels) == 0 {
		return gridCloud(count)
	}

	scale := TextScale
	if w := float64(bounds.Dx()) * scale; w > textMaxWidth {
		scale = textMaxWidth / float64(bounds.Dx())
	}
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2

	cloud := make(Cloud, count)
	for i := range cloud {
		px := pixels[i%len(pixels)]
		cloud[i] = bound(vmath.Vec3{
			X: (float64(px.X)-cx)*scale + (r.Float64()-0.5)*2*TextJitter,
			Y: -(float64(px.Y)-cy)*scale + (r.Float64()-0.5)*2*TextJitter,
			Z: (r.Float64() - 0.5) * TextDepth,
		})
	}
	return cloud
}

// gridCloud lays count points on a flat square grid centred on the origin.
func gridCloud(count int) Cloud {
	side := int(math.Ceil(math.Sqrt(float64(count))))
	const extent = 4.0

	step := 0.0
	if side > 1 {
		step = extent / float64(side-1)
	}

	cloud := make(Cloud, count)
	for i := range cloud {
		col := i % side
		row := i / side
		cloud[i] = vmath.Vec3{
			X: float64(col)*step - extent/2*boolToFloat(side > 1),
			Y: extent/2*boolToFloat(side > 1) - float64(row)*step,
		}
	}
	return cloud
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
