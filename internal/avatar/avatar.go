// Package avatar turns uploaded pictures into small circular PNG thumbnails
// stored inline on the founder profile as data URIs.
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/julianstephens/genie/internal/constants"
)

const dataURIPrefix = "data:image/png;base64,"

var (
	ErrTooLarge    = fmt.Errorf("image is larger than %d MB", constants.MaxAvatarBytes>>20)
	ErrUnsupported = errors.New("unsupported image format, use png, jpeg, gif or webp")
)

var palette = []color.NRGBA{
	{R: 0x4f, G: 0x46, B: 0xe5, A: 0xff},
	{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	{R: 0x0e, G: 0x74, B: 0x90, A: 0xff},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xff},
	{R: 0xdb, G: 0x27, B: 0x77, A: 0xff},
	{R: 0xea, G: 0x58, B: 0x0c, A: 0xff},
}

// FromFile reads an image file and returns it as a profile avatar data URI.
func FromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, constants.MaxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(raw) > constants.MaxAvatarBytes {
		return "", ErrTooLarge
	}

	buf, err := Process(raw, constants.AvatarSize)
	if err != nil {
		return "", err
	}
	return DataURI(buf), nil
}

// Process center-crops raw to a square, scales it to size x size and clips it
// to a circle. The result is PNG encoded.
func Process(raw []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid avatar size %d", size)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	origin := image.Point{X: b.Min.X + (b.Dx()-side)/2, Y: b.Min.Y + (b.Dy()-side)/2}

	square := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(square, square.Bounds(), img, origin, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), square, square.Bounds(), draw.Over, nil)

	return circle(scaled, size)
}

// Initials draws a placeholder avatar with the founder's initials on a
// colour picked from their name.
func Initials(name string, size int) ([]byte, error) {
	letters := initials(name)
	bg := palette[hash(name)%uint32(len(palette))]

	dc := gg.NewContext(size, size)
	dc.SetColor(bg)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(letters, float64(size)/2, float64(size)/2, 0.5, 0.35)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return out.Bytes(), nil
}

func circle(img image.Image, size int) ([]byte, error) {
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(img, 0, 0)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return out.Bytes(), nil
}

// DataURI wraps PNG bytes in a data URI.
func DataURI(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// Decode returns the PNG image held by a data URI produced by DataURI.
func Decode(uri string) (image.Image, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a png data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	return img, nil
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(word))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
