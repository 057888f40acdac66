package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"media-gallery/internal/gallery"
)

// UpsertTag creates a tag or updates its localized names. Names not present
// in the map are left unchanged.
func (d *Database) UpsertTag(ctx context.Context, slug string, names map[gallery.Locale]string) (tag *Tag, err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_tag", start, err) }()

	if !gallery.ValidSlug(slug) {
		return nil, fmt.Errorf("invalid tag slug %q", slug)
	}

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return nil, err
	}

	tag = &Tag{Slug: slug, Names: make(map[gallery.Locale]string)}
	err = func() error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (slug) VALUES (?) ON CONFLICT(slug) DO NOTHING", slug); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE slug = ?", slug).Scan(&tag.ID); err != nil {
			return fmt.Errorf("lookup tag: %w", err)
		}
		for locale, name := range names {
			if _, err := gallery.ParseLocale(string(locale)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO tag_i18n (tag_id, locale, name) VALUES (?, ?, ?)
				ON CONFLICT(tag_id, locale) DO UPDATE SET name = excluded.name`,
				tag.ID, string(locale), name)
			if err != nil {
				return fmt.Errorf("upsert tag name %s: %w", locale, err)
			}
		}
		return nil
	}()

	if err = d.endWrite(tx, txStart, err); err != nil {
		return nil, err
	}
	for locale, name := range names {
		tag.Names[locale] = name
	}
	return tag, nil
}

// DeleteTag removes a tag and all of its item links.
func (d *Database) DeleteTag(ctx context.Context, slug string) (err error) {
	start := time.Now()
	defer func() { recordQuery("delete_tag", start, err) }()

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE slug = ?", slug)
	if err == nil {
		if n, _ := res.RowsAffected(); n == 0 {
			err = fmt.Errorf("tag %q: %w", slug, sql.ErrNoRows)
		}
	}
	return d.endWrite(tx, txStart, err)
}

// TagItem links an item to a tag. Linking twice is a no-op.
func (d *Database) TagItem(ctx context.Context, itemSlug, tagSlug string) (err error) {
	start := time.Now()
	defer func() { recordQuery("tag_item", start, err) }()

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return err
	}

	err = func() error {
		var itemID string
		var tagID int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM gallery_items WHERE slug = ?", itemSlug).Scan(&itemID); err != nil {
			return fmt.Errorf("item %q: %w", itemSlug, err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE slug = ?", tagSlug).Scan(&tagID); err != nil {
			return fmt.Errorf("tag %q: %w", tagSlug, err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO gallery_item_tags (item_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			itemID, tagID)
		return err
	}()
	return d.endWrite(tx, txStart, err)
}

// UntagItem removes a link between an item and a tag.
func (d *Database) UntagItem(ctx context.Context, itemSlug, tagSlug string) (err error) {
	start := time.Now()
	defer func() { recordQuery("untag_item", start, err) }()

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM gallery_item_tags
		WHERE item_id = (SELECT id FROM gallery_items WHERE slug = ?)
		  AND tag_id = (SELECT id FROM tags WHERE slug = ?)`,
		itemSlug, tagSlug)
	return d.endWrite(tx, txStart, err)
}

// ListTags returns every tag attached to at least one item, ordered by slug,
// with the number of items carrying it.
func (d *Database) ListTags(ctx context.Context) (tags []Tag, err error) {
	start := time.Now()
	defer func() { recordQuery("list_tags", start, err) }()
	return d.listTags(ctx, false)
}

// AllTags is ListTags including tags no item carries.
func (d *Database) AllTags(ctx context.Context) (tags []Tag, err error) {
	start := time.Now()
	defer func() { recordQuery("all_tags", start, err) }()
	return d.listTags(ctx, true)
}

func (d *Database) listTags(ctx context.Context, includeUnused bool) (tags []Tag, err error) {

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, rbErr)
		}
	}()

	having := "HAVING COUNT(it.item_id) > 0"
	if includeUnused {
		having = ""
	}
	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.slug, COUNT(it.item_id)
		FROM tags t
		LEFT JOIN gallery_item_tags it ON it.tag_id = t.id
		GROUP BY t.id, t.slug
		`+having+`
		ORDER BY t.slug`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	index := make(map[int64]int)
	err = eachRow(rows, func() error {
		t := Tag{Names: make(map[gallery.Locale]string)}
		if err := rows.Scan(&t.ID, &t.Slug, &t.Count); err != nil {
			return err
		}
		index[t.ID] = len(tags)
		tags = append(tags, t)
		return nil
	})
	if err != nil || len(tags) == 0 {
		return tags, err
	}

	rows, err = tx.QueryContext(ctx, "SELECT tag_id, locale, name FROM tag_i18n")
	if err != nil {
		return nil, fmt.Errorf("load tag names: %w", err)
	}
	err = eachRow(rows, func() error {
		var id int64
		var locale, name string
		if err := rows.Scan(&id, &locale, &name); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			tags[i].Names[gallery.Locale(locale)] = name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
