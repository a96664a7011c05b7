package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/julianstephens/genie/internal/avatar"
)

// avatarArt draws the avatar as half-block cells, cols wide and cols/2 tall.
// An empty or unreadable avatar yields "".
func avatarArt(uri string, cols int) string {
	if uri == "" || cols <= 0 {
		return ""
	}
	img, err := avatar.Decode(uri)
	if err != nil {
		return ""
	}

	rows := cols / 2
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, y*2)
			bottom := dst.RGBAAt(x, y*2+1)
			style := lipgloss.NewStyle()
			switch {
			case top.A < 128 && bottom.A < 128:
				b.WriteString(" ")
				continue
			case top.A < 128:
				b.WriteString(style.Foreground(hex(bottom.R, bottom.G, bottom.B)).Render("▄"))
				continue
			case bottom.A >= 128:
				style = style.Background(hex(bottom.R, bottom.G, bottom.B))
			}
			b.WriteString(style.Foreground(hex(top.R, top.G, top.B)).Render("▀"))
		}
		if y < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func hex(r, g, b uint8) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}
