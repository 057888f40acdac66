package gallery

import (
	"fmt"
	"time"
)

// ItemType is the logical collection an item belongs to.
type ItemType uint8

const (
	// ItemTypeMain is the primary gallery.
	ItemTypeMain ItemType = iota + 1
	// ItemTypeStudents holds student work.
	ItemTypeStudents
	// ItemTypeSuccess holds success stories.
	ItemTypeSuccess
)

// ItemTypes lists every valid ItemType in declaration order.
var ItemTypes = []ItemType{ItemTypeMain, ItemTypeStudents, ItemTypeSuccess}

func (t ItemType) String() string {
	switch t {
	case ItemTypeMain:
		return "main"
	case ItemTypeStudents:
		return "students"
	case ItemTypeSuccess:
		return "success"
	default:
		return fmt.Sprintf("ItemType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the declared values.
func (t ItemType) Valid() bool {
	return t >= ItemTypeMain && t <= ItemTypeSuccess
}

// ParseItemType converts the wire name into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	for _, t := range ItemTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, &ValidationError{Field: "type", Value: s, Reason: "must be one of main, students, success"}
}

// MarshalText implements encoding.TextMarshaler.
func (t ItemType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid item type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// Format is the encoding of a GalleryAsset.
type Format uint8

const (
	// FormatAVIF is an AVIF still image.
	FormatAVIF Format = iota + 1
	// FormatWebP is a WebP still image.
	FormatWebP
	// FormatJPEG is a baseline JPEG.
	FormatJPEG
	// FormatVideo is the untouched original video file.
	FormatVideo
)

// ImageFormats are the formats produced by the variant generator, in srcset order.
var ImageFormats = []Format{FormatAVIF, FormatWebP, FormatJPEG}

func (f Format) String() string {
	switch f {
	case FormatAVIF:
		return "avif"
	case FormatWebP:
		return "webp"
	case FormatJPEG:
		return "jpg"
	case FormatVideo:
		return "video"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Valid reports whether f is one of the declared values.
func (f Format) Valid() bool {
	return f >= FormatAVIF && f <= FormatVideo
}

// Ext returns the file extension used for derived files, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatAVIF:
		return ".avif"
	case FormatWebP:
		return ".webp"
	case FormatJPEG:
		return ".jpg"
	default:
		return ""
	}
}

// ParseFormat converts a stored format name into a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatAVIF, FormatWebP, FormatJPEG, FormatVideo} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown asset format %q", s)
}

// Field is a localizable text attribute of an item.
type Field uint8

const (
	// FieldTitle is the display title.
	FieldTitle Field = iota + 1
	// FieldAlt is the image alternative text.
	FieldAlt
	// FieldDescription is the long description.
	FieldDescription
)

// Fields lists every localizable field.
var Fields = []Field{FieldTitle, FieldAlt, FieldDescription}

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAlt:
		return "alt"
	case FieldDescription:
		return "description"
	default:
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
}

// ParseField converts a stored field name into a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown i18n field %q", s)
}

// Item is one physical media asset.
type Item struct {
	ID         string
	Slug       string
	Type       ItemType
	Width      int
	Height     int
	BlurData   string
	SourcePath string // relative to the ingestion root
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Asset is one web-servable rendition of an item.
type Asset struct {
	ItemID  string
	Format  Format
	WidthPx int
	URL     string
}

// I18nValue is one localized field of an item.
type I18nValue struct {
	Locale Locale
	Field  Field
	Value  string
}
