package gallery

// Variant is one cell of the derivative matrix.
type Variant struct {
	Width  int
	Format Format
}

// Widths produced for every image item.
var Widths = []int{320, 640, 1024, 1600}

// Quality returns the fixed encoder quality for an image format.
func Quality(f Format) int {
	switch f {
	case FormatAVIF:
		return 80
	case FormatWebP:
		return 85
	case FormatJPEG:
		return 90
	default:
		return 0
	}
}

// defaultMatrix is spelled out so the contract can be read without running code.
var defaultMatrix = []Variant{
	{320, FormatAVIF}, {320, FormatWebP}, {320, FormatJPEG},
	{640, FormatAVIF}, {640, FormatWebP}, {640, FormatJPEG},
	{1024, FormatAVIF}, {1024, FormatWebP}, {1024, FormatJPEG},
	{1600, FormatAVIF}, {1600, FormatWebP}, {1600, FormatJPEG},
}

// DefaultMatrix returns a copy of the width×format matrix.
func DefaultMatrix() []Variant {
	out := make([]Variant, len(defaultMatrix))
	copy(out, defaultMatrix)
	return out
}

// ClampWidth returns the width a variant is rendered at for a source of the
// given width. Variants are never upscaled.
func ClampWidth(target, sourceWidth int) int {
	if sourceWidth > 0 && sourceWidth < target {
		return sourceWidth
	}
	return target
}
