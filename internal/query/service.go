package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"media-gallery/internal/cache"
	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
	"media-gallery/internal/metrics"
)

// Store is the read-only view of persistence the service needs.
type Store interface {
	ListItems(ctx context.Context, opts database.ListOptions) (*database.ItemPage, error)
	ListTags(ctx context.Context) ([]database.Tag, error)
}

// Srcsets holds one responsive descriptor per image format.
type Srcsets struct {
	AVIF string `json:"avif"`
	WebP string `json:"webp"`
	JPEG string `json:"jpg"`
}

// TagRef is a tag attached to an item.
type TagRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Item is one entry of a gallery page.
type Item struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Alt      string   `json:"alt"`
	W        int      `json:"w"`
	H        int      `json:"h"`
	Srcsets  Srcsets  `json:"srcsets"`
	Video    string   `json:"video,omitempty"`
	BlurData string   `json:"blurData"`
	Tags     []TagRef `json:"tags"`
}

// Page is the gallery listing response. NextPage is nil on the last page.
type Page struct {
	Items       []Item `json:"items"`
	NextPage    *int   `json:"nextPage"`
	TotalItems  int    `json:"totalItems"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

// TagSummary is one entry of the tag listing.
type TagSummary struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagList is the tag listing response.
type TagList struct {
	Tags []TagSummary `json:"tags"`
}

// Caches are created once per process and handed to the service. A nil
// cache disables caching for that endpoint.
type Caches struct {
	Pages *cache.TTL[string, *Page]
	Tags  *cache.TTL[gallery.Locale, *TagList]
}

// Service answers gallery and tag listing requests.
type Service struct {
	store    Store
	fallback gallery.Locale
	caches   Caches
}

// NewService creates a service. fallback is the locale consulted when the
// requested one has no value.
func NewService(store Store, fallback gallery.Locale, caches Caches) *Service {
	return &Service{store: store, fallback: fallback, caches: caches}
}

// Purge drops all cached responses.
func (s *Service) Purge() {
	if s.caches.Pages != nil {
		s.caches.Pages.Purge()
	}
	if s.caches.Tags != nil {
		s.caches.Tags.Purge()
	}
}

// List returns one page of items.
func (s *Service) List(ctx context.Context, p Params) (*Page, error) {
	key := p.key()
	if s.caches.Pages != nil {
		if page, ok := s.caches.Pages.Get(key); ok {
			metrics.QueryCacheHits.WithLabelValues("gallery").Inc()
			return page, nil
		}
		metrics.QueryCacheMisses.WithLabelValues("gallery").Inc()
	}

	res, err := s.store.ListItems(ctx, database.ListOptions{
		Type:    p.Type,
		TagSlug: p.Tag,
		Limit:   p.PageSize,
		Offset:  p.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	page := &Page{
		Items:       make([]Item, 0, len(res.Items)),
		TotalItems:  res.Total,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}
	if p.Offset()+p.PageSize < res.Total {
		next := p.Page + 1
		page.NextPage = &next
	}
	for i := range res.Items {
		page.Items = append(page.Items, s.item(&res.Items[i], p.Locale))
	}

	if s.caches.Pages != nil {
		s.caches.Pages.Set(key, page)
	}
	return page, nil
}

func (s *Service) item(rec *database.ItemRecord, locale gallery.Locale) Item {
	tr := rec.Translations()
	slug := rec.Item.Slug

	it := Item{
		Slug:     slug,
		Title:    tr.Resolve(gallery.FieldTitle, locale, s.fallback, slug),
		Alt:      tr.Resolve(gallery.FieldAlt, locale, s.fallback, slug),
		W:        rec.Item.Width,
		H:        rec.Item.Height,
		BlurData: rec.Item.BlurData,
		Srcsets: Srcsets{
			AVIF: Srcset(rec.Assets, gallery.FormatAVIF),
			WebP: Srcset(rec.Assets, gallery.FormatWebP),
			JPEG: Srcset(rec.Assets, gallery.FormatJPEG),
		},
		Tags: make([]TagRef, 0, len(rec.Tags)),
	}
	for _, a := range rec.Assets {
		if a.Format == gallery.FormatVideo {
			it.Video = a.URL
			break
		}
	}
	for _, t := range rec.Tags {
		it.Tags = append(it.Tags, TagRef{
			Slug: t.Slug,
			Name: gallery.ResolveName(t.Names, locale, s.fallback, t.Slug),
		})
	}
	return it
}

// Srcset joins the assets of one format as "<url> <width>w" entries in
// ascending width order. Entries with a width already listed are dropped.
// It returns "" when no asset has the format.
func Srcset(assets []gallery.Asset, format gallery.Format) string {
	var matching []gallery.Asset
	for _, a := range assets {
		if a.Format == format {
			matching = append(matching, a)
		}
	}
	if len(matching) == 0 {
		return ""
	}
	sort.SliceStable(matching, func(i, j int) bool { return matching[i].WidthPx < matching[j].WidthPx })

	var b strings.Builder
	last := 0
	for _, a := range matching {
		if a.WidthPx == last {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.URL)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(a.WidthPx))
		b.WriteByte('w')
		last = a.WidthPx
	}
	return b.String()
}

// Tags lists tags in use with names resolved for locale.
func (s *Service) Tags(ctx context.Context, locale gallery.Locale) (*TagList, error) {
	if s.caches.Tags != nil {
		if list, ok := s.caches.Tags.Get(locale); ok {
			metrics.QueryCacheHits.WithLabelValues("tags").Inc()
			return list, nil
		}
		metrics.QueryCacheMisses.WithLabelValues("tags").Inc()
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	list := &TagList{Tags: make([]TagSummary, 0, len(tags))}
	for _, t := range tags {
		if t.Count < 1 {
			continue
		}
		list.Tags = append(list.Tags, TagSummary{
			Slug:  t.Slug,
			Name:  gallery.ResolveName(t.Names, locale, s.fallback, t.Slug),
			Count: t.Count,
		})
	}

	if s.caches.Tags != nil {
		s.caches.Tags.Set(locale, list)
	}
	return list, nil
}
