package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"media-gallery/internal/gallery"
	"media-gallery/internal/metrics"
)

const (
	// DefaultPageSize is used when pageSize is absent.
	DefaultPageSize = 30
	// MaxPageSize is the upper clamp for pageSize.
	MaxPageSize = 100
)

// Params is a validated gallery listing request.
type Params struct {
	Page     int
	PageSize int
	Locale   gallery.Locale
	Tag      string
	Type     gallery.ItemType
}

// MaxPage is the largest page accepted for pageSize.
func MaxPage(pageSize int) int {
	return math.MaxInt / max(pageSize, 1)
}

// Offset is the number of items before the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Params) key() string {
	return fmt.Sprintf("%s|%d|%d|%s|%s", p.Type, p.Page, p.PageSize, p.Locale, p.Tag)
}

// ParseParams validates listing query parameters. Absent values take their
// defaults; a numeric pageSize outside [1, MaxPageSize] is clamped. Anything
// else outside the contract is a *gallery.ValidationError.
func ParseParams(v url.Values, defaultLocale gallery.Locale) (Params, error) {
	p := Params{
		Page:     1,
		PageSize: DefaultPageSize,
		Locale:   defaultLocale,
		Type:     gallery.ItemTypeMain,
	}

	page := strings.TrimSpace(v.Get("page"))
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return p, invalid("page", page, "must be an integer >= 1")
		}
		p.Page = n
	}

	if s := strings.TrimSpace(v.Get("pageSize")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, invalid("pageSize", s, "must be an integer")
		}
		p.PageSize = min(max(n, 1), MaxPageSize)
	}

	// Page*PageSize must fit in an int so Offset and the next-page check
	// cannot wrap.
	if p.Page > MaxPage(p.PageSize) {
		return p, invalid("page", page, "too large")
	}

	if s := v.Get("locale"); s != "" {
		l, err := ParseLocale(s)
		if err != nil {
			return p, err
		}
		p.Locale = l
	}

	if s := v.Get("tag"); s != "" {
		if !gallery.ValidSlug(s) {
			return p, invalid("tag", s, "must be a slug")
		}
		p.Tag = s
	}

	if s := v.Get("type"); s != "" {
		t, err := gallery.ParseItemType(s)
		if err != nil {
			metrics.QueryValidationErrors.WithLabelValues("type").Inc()
			return p, err
		}
		p.Type = t
	}

	return p, nil
}

// ParseLocale validates a locale parameter.
func ParseLocale(s string) (gallery.Locale, error) {
	l, err := gallery.ParseLocale(s)
	if err != nil {
		metrics.QueryValidationErrors.WithLabelValues("locale").Inc()
		return "", err
	}
	return l, nil
}

func invalid(field, value, reason string) error {
	metrics.QueryValidationErrors.WithLabelValues(field).Inc()
	return &gallery.ValidationError{Field: field, Value: value, Reason: reason}
}
