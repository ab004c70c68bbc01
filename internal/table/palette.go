package table

import "unicode/utf16"

// Palette is the fixed set of tag colors rocket labels hash into.
var Palette = []string{
	"blue", "purple", "cyan", "green", "magenta", "pink", "red",
	"orange", "yellow", "volcano", "geekblue", "lime", "gold",
}

// PaletteHex maps each palette name to its terminal color.
var PaletteHex = map[string]string{
	"blue":     "#1677ff",
	"purple":   "#722ed1",
	"cyan":     "#13c2c2",
	"green":    "#52c41a",
	"magenta":  "#eb2f96",
	"pink":     "#eb2f96",
	"red":      "#f5222d",
	"orange":   "#fa8c16",
	"yellow":   "#fadb14",
	"volcano":  "#fa541c",
	"geekblue": "#2f54eb",
	"lime":     "#a0d911",
	"gold":     "#faad14",
}

// HashString is the 31-multiplier string hash folded to 32 bits:
// h = h*31 + c over the UTF-16 code units of s.
func HashString(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

// ColorFor picks the palette entry for label. Negative hashes use their
// magnitude so every label lands inside the palette.
func ColorFor(label string) string {
	h := int64(HashString(label))
	if h < 0 {
		h = -h
	}
	return Palette[h%int64(len(Palette))]
}
