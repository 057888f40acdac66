package gallery

// Locale is a supported content language.
type Locale string

const (
	// LocaleEN is English.
	LocaleEN Locale = "en"
	// LocalePL is Polish.
	LocalePL Locale = "pl"
	// LocaleUK is Ukrainian.
	LocaleUK Locale = "uk"
)

// DefaultLocale receives the derived titles at ingestion time and is the
// first fallback at read time.
const DefaultLocale = LocaleEN

// SupportedLocales is the fixed set every item carries rows for.
var SupportedLocales = []Locale{LocaleEN, LocalePL, LocaleUK}

// ParseLocale accepts only members of SupportedLocales.
func ParseLocale(s string) (Locale, error) {
	for _, l := range SupportedLocales {
		if string(l) == s {
			return l, nil
		}
	}
	return "", &ValidationError{Field: "locale", Value: s, Reason: "unsupported locale"}
}

// Translations indexes stored i18n rows by locale and field.
type Translations map[Locale]map[Field]string

// NewTranslations builds a Translations index from stored rows.
func NewTranslations(values []I18nValue) Translations {
	t := make(Translations)
	for _, v := range values {
		t.Set(v.Locale, v.Field, v.Value)
	}
	return t
}

// Set stores a value.
func (t Translations) Set(locale Locale, field Field, value string) {
	fields, ok := t[locale]
	if !ok {
		fields = make(map[Field]string)
		t[locale] = fields
	}
	fields[field] = value
}

// Get returns a stored value and whether the row exists.
func (t Translations) Get(locale Locale, field Field) (string, bool) {
	fields, ok := t[locale]
	if !ok {
		return "", false
	}
	v, ok := fields[field]
	return v, ok
}

// Resolve applies the fallback chain for one field: the requested locale,
// then the fallback locale, then (title and alt only) the humanized slug.
// Missing rows are treated like empty values.
func (t Translations) Resolve(field Field, requested, fallback Locale, slug string) string {
	if v, _ := t.Get(requested, field); v != "" {
		return v
	}
	if v, _ := t.Get(fallback, field); v != "" {
		return v
	}
	if field == FieldTitle || field == FieldAlt {
		return HumanizeSlug(slug)
	}
	return ""
}

// ResolveName applies the same chain to a single-valued name map, as used for
// tag display names.
func ResolveName(names map[Locale]string, requested, fallback Locale, slug string) string {
	if v := names[requested]; v != "" {
		return v
	}
	if v := names[fallback]; v != "" {
		return v
	}
	return HumanizeSlug(slug)
}

// IngestTranslations returns the rows created for a new item: the derived
// title as title and alt in the default locale, empty values everywhere else.
func IngestTranslations(title string) []I18nValue {
	values := make([]I18nValue, 0, len(SupportedLocales)*len(Fields))
	for _, locale := range SupportedLocales {
		for _, field := range Fields {
			v := I18nValue{Locale: locale, Field: field}
			if locale == DefaultLocale && (field == FieldTitle || field == FieldAlt) {
				v.Value = title
			}
			values = append(values, v)
		}
	}
	return values
}
