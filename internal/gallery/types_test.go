package gallery

import (
	"errors"
	"testing"
)

func TestParseItemType(t *testing.T) {
	t.Parallel()

	for _, it := range ItemTypes {
		got, err := ParseItemType(it.String())
		if err != nil || got != it {
			t.Errorf("ParseItemType(%q) = %v, %v", it, got, err)
		}
	}

	for _, bad := range []string{"", "Main", "blog"} {
		if _, err := ParseItemType(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseItemType(%q) error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestItemTypeMarshalText(t *testing.T) {
	t.Parallel()

	b, err := ItemTypeStudents.MarshalText()
	if err != nil || string(b) != "students" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
	if _, err := ItemType(0).MarshalText(); err == nil {
		t.Error("zero ItemType should not marshal")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"avif":  FormatAVIF,
		"webp":  FormatWebP,
		"jpg":   FormatJPEG,
		"video": FormatVideo,
	}
	for s, want := range tests {
		got, err := ParseFormat(s)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseFormat("mp3"); err == nil {
		t.Error("ParseFormat(mp3) should fail")
	}
	if Format(0).Valid() || Format(9).Valid() {
		t.Error("out-of-range formats must not be valid")
	}
}

func TestDefaultMatrix(t *testing.T) {
	t.Parallel()

	m := DefaultMatrix()
	if len(m) != len(Widths)*len(ImageFormats) {
		t.Fatalf("matrix has %d cells, want %d", len(m), len(Widths)*len(ImageFormats))
	}

	seen := make(map[Variant]bool)
	for _, v := range m {
		if seen[v] {
			t.Errorf("duplicate cell %+v", v)
		}
		seen[v] = true
	}
	for _, w := range Widths {
		for _, f := range ImageFormats {
			if !seen[Variant{Width: w, Format: f}] {
				t.Errorf("missing cell %d/%s", w, f)
			}
		}
	}

	m[0].Width = 1
	if DefaultMatrix()[0].Width != 320 {
		t.Error("DefaultMatrix must return a copy")
	}
}

func TestClampWidth(t *testing.T) {
	t.Parallel()

	tests := []struct{ target, source, want int }{
		{320, 1600, 320},
		{1600, 1600, 1600},
		{1024, 500, 500},
		{640, 0, 640},
	}
	for _, tt := range tests {
		if got := ClampWidth(tt.target, tt.source); got != tt.want {
			t.Errorf("ClampWidth(%d, %d) = %d, want %d", tt.target, tt.source, got, tt.want)
		}
	}
}

func TestQuality(t *testing.T) {
	t.Parallel()

	if Quality(FormatAVIF) != 80 || Quality(FormatWebP) != 85 || Quality(FormatJPEG) != 90 {
		t.Error("unexpected per-format quality")
	}
	if Quality(FormatVideo) != 0 {
		t.Error("video has no encoder quality")
	}
}

func TestCollisionErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := error(&CollisionError{Slug: "a", Paths: []string{"x/a.jpg", "y/a.png"}})
	if !errors.Is(err, ErrSlugCollision) {
		t.Error("CollisionError should match ErrSlugCollision")
	}
}
