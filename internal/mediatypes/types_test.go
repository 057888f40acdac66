package mediatypes

import "testing"

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Kind
	}{
		{"photo.jpg", KindImage},
		{"photo.JPEG", KindImage},
		{"dir/shot.png", KindImage},
		{"shot.webp", KindImage},
		{"IMG_0001.HEIC", KindImage},
		{"still.avif", KindImage},
		{"clip.mov", KindVideo},
		{"clip.MP4", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.avi", KindVideo},
		{"anim.gif", KindOther},
		{"notes.txt", KindOther},
		{"clip.mkv", KindOther},
		{"noext", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.path); got != tt.want {
				t.Errorf("KindOf(%q) = %s, want %s", tt.path, got, tt.want)
			}
			if IsMediaFile(tt.path) != (tt.want != KindOther) {
				t.Errorf("IsMediaFile(%q) disagrees with KindOf", tt.path)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.AVIF": "image/avif",
		"a.mov":  "video/quicktime",
		"a.bin":  "application/octet-stream",
	}
	for path, want := range tests {
		if got := GetMimeType(path); got != want {
			t.Errorf("GetMimeType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestEveryExtensionHasMimeType(t *testing.T) {
	t.Parallel()

	for ext := range ImageExtensions {
		if _, ok := MimeTypes[ext]; !ok {
			t.Errorf("image extension %s has no MIME type", ext)
		}
	}
	for ext := range VideoExtensions {
		if _, ok := MimeTypes[ext]; !ok {
			t.Errorf("video extension %s has no MIME type", ext)
		}
	}
}
