package query

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"media-gallery/internal/gallery"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{
			name:  "defaults",
			query: "",
			want:  Params{Page: 1, PageSize: DefaultPageSize, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
		{
			name:  "explicit values",
			query: "page=3&pageSize=10&locale=pl&tag=haircut&type=students",
			want:  Params{Page: 3, PageSize: 10, Locale: gallery.LocalePL, Tag: "haircut", Type: gallery.ItemTypeStudents},
		},
		{
			name:  "pageSize clamped high",
			query: "pageSize=500",
			want:  Params{Page: 1, PageSize: 100, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
		{
			name:  "pageSize clamped low",
			query: "pageSize=0",
			want:  Params{Page: 1, PageSize: 1, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
		{
			name:  "last addressable page",
			query: "page=92233720368547758&pageSize=100",
			want:  Params{Page: 92233720368547758, PageSize: 100, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
		{
			name:  "largest page with pageSize one",
			query: "page=9223372036854775807&pageSize=1",
			want:  Params{Page: math.MaxInt, PageSize: 1, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
		{
			name:  "negative pageSize clamped",
			query: "pageSize=-7",
			want:  Params{Page: 1, PageSize: 1, Locale: gallery.LocaleEN, Type: gallery.ItemTypeMain},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.query)
			got, err := ParseParams(v, gallery.LocaleEN)
			if err != nil {
				t.Fatalf("ParseParams(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("ParseParams(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseParamsRejects(t *testing.T) {
	tests := []struct {
		query    string
		field    string
		isLocale bool
	}{
		{"page=abc", "page", false},
		{"page=0", "page", false},
		{"page=-1", "page", false},
		{"page=1.5", "page", false},
		{"pageSize=ten", "pageSize", false},
		{"page=9223372036854775807&pageSize=100", "page", false},
		{"page=92233720368547759&pageSize=100", "page", false},
		{"page=9223372036854775807", "page", false},
		{"locale=de", "locale", true},
		{"locale=EN", "locale", true},
		{"type=video", "type", false},
		{"tag=Hair%20Cut", "tag", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.query)
			_, err := ParseParams(v, gallery.LocaleEN)

			var ve *gallery.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, gallery.ErrValidation) {
				t.Error("error should match ErrValidation")
			}
			if errors.Is(err, gallery.ErrLocaleNotSupported) != tt.isLocale {
				t.Errorf("ErrLocaleNotSupported match = %v, want %v", !tt.isLocale, tt.isLocale)
			}
		})
	}
}

func TestParamsOffset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 20, 40},
	}
	for _, tt := range tests {
		if got := (Params{Page: tt.page, PageSize: tt.size}).Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}
