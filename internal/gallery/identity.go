package gallery

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DeriveSlug returns the canonical identity for a source file. Only the file
// name takes part (directories and extension are dropped): it is lower-cased,
// every run of characters outside [a-z0-9] becomes one hyphen, and leading or
// trailing hyphens are trimmed. The result may be empty for names with no
// ASCII alphanumerics.
func DeriveSlug(relativePath string) string {
	name := stem(relativePath)

	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// DeriveTitle turns a file name into a human title: the extension is dropped,
// hyphens and underscores become spaces and the first letter of every word is
// upper-cased. The rest of each word keeps its case, so acronyms and camera
// prefixes survive ("IMG_2023.JPG" becomes "IMG 2023").
func DeriveTitle(filename string) string {
	name := stem(filename)
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, name)

	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// HumanizeSlug is the title used when no stored translation is usable.
func HumanizeSlug(slug string) string {
	return DeriveTitle(slug)
}

// ValidSlug reports whether s has the shape DeriveSlug produces.
func ValidSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	prevHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevHyphen = false
		case c == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return true
}

func stem(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
