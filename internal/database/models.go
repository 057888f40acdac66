package database

import "media-gallery/internal/gallery"

// ItemRecord is an item together with everything that is persisted with it.
type ItemRecord struct {
	Item   gallery.Item
	Assets []gallery.Asset
	I18n   []gallery.I18nValue
	Tags   []Tag
}

// SaveResult reports what SaveItem did.
type SaveResult struct {
	ID      string
	Created bool // false means an existing item was replaced
}

// ListOptions selects one page of items.
type ListOptions struct {
	Type    gallery.ItemType
	TagSlug string // empty means no tag filter
	Limit   int
	Offset  int
}

// ItemPage is one page of items plus the total size of the filtered set.
type ItemPage struct {
	Items []ItemRecord
	Total int
}

// Tag is a categorical label with localized names.
type Tag struct {
	ID    int64
	Slug  string
	Names map[gallery.Locale]string
	Count int // items carrying the tag, filled by ListTags
}

// Translations returns the item's localized fields as a lookup table.
func (r *ItemRecord) Translations() gallery.Translations {
	return gallery.NewTranslations(r.I18n)
}
