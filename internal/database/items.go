package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SaveItem persists an item, its assets and its localized fields in one
// transaction. An item whose slug already exists for the same source path is
// replaced: metadata and assets are rewritten, created_at and the item id are
// kept, and localized values that are already non-empty are left alone. A
// slug owned by a different source path fails with ErrSlugCollision. Any
// other failure rolls back and is reported as ErrPersistenceConflict.
func (d *Database) SaveItem(ctx context.Context, rec *ItemRecord) (res SaveResult, err error) {
	start := time.Now()
	defer func() { recordQuery("save_item", start, err) }()

	if err = validateRecord(rec); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %s: %w", gallery.ErrPersistenceConflict, rec.Item.Slug, err)
	}

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %s: %w", gallery.ErrPersistenceConflict, rec.Item.Slug, err)
	}

	res, err = saveItemTx(ctx, tx, rec, time.Now())
	if err = d.endWrite(tx, txStart, err); err != nil {
		if errors.Is(err, gallery.ErrSlugCollision) {
			return SaveResult{}, err
		}
		return SaveResult{}, fmt.Errorf("%w: %s: %w", gallery.ErrPersistenceConflict, rec.Item.Slug, err)
	}

	logging.Debug("Saved item %s (%s, created=%v, %d assets)", rec.Item.Slug, res.ID, res.Created, len(rec.Assets))
	return res, nil
}

func validateRecord(rec *ItemRecord) error {
	it := rec.Item
	switch {
	case !gallery.ValidSlug(it.Slug):
		return fmt.Errorf("invalid slug %q", it.Slug)
	case !it.Type.Valid():
		return fmt.Errorf("invalid item type %v", it.Type)
	case it.Width <= 0 || it.Height <= 0:
		return fmt.Errorf("invalid dimensions %dx%d", it.Width, it.Height)
	case it.BlurData == "":
		return errors.New("missing placeholder")
	case len(rec.Assets) == 0:
		return errors.New("item has no assets")
	}
	for _, a := range rec.Assets {
		if !a.Format.Valid() || a.WidthPx <= 0 || a.URL == "" {
			return fmt.Errorf("invalid asset %s@%d %q", a.Format, a.WidthPx, a.URL)
		}
	}
	for _, v := range rec.I18n {
		if _, err := gallery.ParseLocale(string(v.Locale)); err != nil {
			return err
		}
	}
	return nil
}

func saveItemTx(ctx context.Context, tx *sql.Tx, rec *ItemRecord, now time.Time) (SaveResult, error) {
	it := rec.Item
	var res SaveResult

	var existingPath string
	err := tx.QueryRowContext(ctx,
		"SELECT id, source_path FROM gallery_items WHERE slug = ?", it.Slug,
	).Scan(&res.ID, &existingPath)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res.ID = it.ID
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		created := it.CreatedAt
		if created.IsZero() {
			created = now
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gallery_items (id, slug, type, width, height, blur_data, source_path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.ID, it.Slug, it.Type.String(), it.Width, it.Height, it.BlurData, it.SourcePath,
			created.UnixMilli(), now.UnixMilli(),
		)
		if err != nil {
			return res, fmt.Errorf("insert item: %w", err)
		}
		res.Created = true

	case err != nil:
		return res, fmt.Errorf("lookup item: %w", err)

	default:
		if existingPath != it.SourcePath {
			return res, &gallery.CollisionError{Slug: it.Slug, Paths: []string{existingPath, it.SourcePath}}
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE gallery_items
			SET type = ?, width = ?, height = ?, blur_data = ?, updated_at = ?
			WHERE id = ?`,
			it.Type.String(), it.Width, it.Height, it.BlurData, now.UnixMilli(), res.ID,
		)
		if err != nil {
			return res, fmt.Errorf("update item: %w", err)
		}
		if _, err = tx.ExecContext(ctx, "DELETE FROM gallery_assets WHERE item_id = ?", res.ID); err != nil {
			return res, fmt.Errorf("clear assets: %w", err)
		}
	}

	if err := insertAssets(ctx, tx, res.ID, rec.Assets); err != nil {
		return res, err
	}
	if err := upsertI18n(ctx, tx, res.ID, rec.I18n); err != nil {
		return res, err
	}
	return res, nil
}

func insertAssets(ctx context.Context, tx *sql.Tx, itemID string, assets []gallery.Asset) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO gallery_assets (item_id, fmt, width_px, url) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare asset insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assets {
		if _, err := stmt.ExecContext(ctx, itemID, a.Format.String(), a.WidthPx, a.URL); err != nil {
			return fmt.Errorf("insert asset %s@%d: %w", a.Format, a.WidthPx, err)
		}
	}
	return nil
}

// upsertI18n never overwrites a non-empty stored value, so curated
// translations survive re-ingestion.
func upsertI18n(ctx context.Context, tx *sql.Tx, itemID string, values []gallery.I18nValue) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gallery_i18n (item_id, locale, field, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id, locale, field) DO UPDATE SET value = excluded.value
		WHERE gallery_i18n.value = ''`)
	if err != nil {
		return fmt.Errorf("prepare i18n upsert: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, itemID, string(v.Locale), v.Field.String(), v.Value); err != nil {
			return fmt.Errorf("upsert i18n %s/%s: %w", v.Locale, v.Field, err)
		}
	}
	return nil
}

// SetI18n overwrites one localized field of an item. It is the curation
// path, unlike ingestion which only fills empty values.
func (d *Database) SetI18n(ctx context.Context, slug string, locale gallery.Locale, field gallery.Field, value string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_i18n", start, err) }()

	tx, txStart, err := d.beginWrite(ctx)
	if err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		INSERT INTO gallery_i18n (item_id, locale, field, value)
		SELECT id, ?, ?, ? FROM gallery_items WHERE slug = ?
		ON CONFLICT(item_id, locale, field) DO UPDATE SET value = excluded.value`,
		string(locale), field.String(), value, slug,
	)
	if err == nil {
		if n, _ := res.RowsAffected(); n == 0 {
			err = fmt.Errorf("item %q: %w", slug, sql.ErrNoRows)
		}
	}
	return d.endWrite(tx, txStart, err)
}

// SourcePath returns the relative source path that owns slug, or "" when
// the slug is unused.
func (d *Database) SourcePath(ctx context.Context, slug string) (path string, err error) {
	start := time.Now()
	defer func() { recordQuery("get_item", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT source_path FROM gallery_items WHERE slug = ?", slug).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return path, err
}

const itemColumns = "i.id, i.slug, i.type, i.width, i.height, i.blur_data, i.source_path, i.created_at, i.updated_at"

func scanItem(rows interface{ Scan(...any) error }) (gallery.Item, error) {
	var it gallery.Item
	var typ string
	var created, updated int64
	if err := rows.Scan(&it.ID, &it.Slug, &typ, &it.Width, &it.Height, &it.BlurData, &it.SourcePath, &created, &updated); err != nil {
		return it, err
	}
	t, err := gallery.ParseItemType(typ)
	if err != nil {
		return it, err
	}
	it.Type = t
	it.CreatedAt = time.UnixMilli(created)
	it.UpdatedAt = time.UnixMilli(updated)
	return it, nil
}

// GetItemBySlug returns one item with its relations, or sql.ErrNoRows.
func (d *Database) GetItemBySlug(ctx context.Context, slug string) (rec *ItemRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("get_item", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM gallery_items i WHERE i.slug = ?", slug)
	it, err := scanItem(row)
	if err != nil {
		return nil, err
	}

	records := []ItemRecord{{Item: it}}
	if err = loadRelations(ctx, d.db, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// ListItems returns one page of items of the given type, newest first with
// ties broken by slug. The count and the page are read from the same
// snapshot.
func (d *Database) ListItems(ctx context.Context, opts ListOptions) (page *ItemPage, err error) {
	start := time.Now()
	defer func() { recordQuery("list_items", start, err) }()

	if opts.Offset < 0 || opts.Limit < 1 {
		return nil, fmt.Errorf("invalid listing window: limit %d offset %d", opts.Limit, opts.Offset)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logging.Warn("failed to end read transaction: %v", rbErr)
		}
	}()

	where := "i.type = ?"
	args := []any{opts.Type.String()}
	if opts.TagSlug != "" {
		where += ` AND EXISTS (
			SELECT 1 FROM gallery_item_tags it JOIN tags t ON t.id = it.tag_id
			WHERE it.item_id = i.id AND t.slug = ?)`
		args = append(args, opts.TagSlug)
	}

	page = &ItemPage{}
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM gallery_items i WHERE "+where, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if page.Total == 0 || opts.Offset >= page.Total {
		return page, nil
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM gallery_items i WHERE "+where+
			" ORDER BY i.created_at DESC, i.slug ASC LIMIT ? OFFSET ?",
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	err = eachRow(rows, func() error {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		page.Items = append(page.Items, ItemRecord{Item: it})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = loadRelations(ctx, tx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// loadRelations fills assets, localized fields and tags for records with
// one query per relation.
func loadRelations(ctx context.Context, q queryer, records []ItemRecord) error {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]*ItemRecord, len(records))
	ids := make([]any, len(records))
	for i := range records {
		index[records[i].Item.ID] = &records[i]
		ids[i] = records[i].Item.ID
	}
	in := placeholders(len(ids))

	rows, err := q.QueryContext(ctx,
		"SELECT item_id, fmt, width_px, url FROM gallery_assets WHERE item_id IN ("+in+") ORDER BY item_id, fmt, width_px",
		ids...)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	err = eachRow(rows, func() error {
		var id, f string
		var a gallery.Asset
		if err := rows.Scan(&id, &f, &a.WidthPx, &a.URL); err != nil {
			return err
		}
		format, err := gallery.ParseFormat(f)
		if err != nil {
			return err
		}
		a.ItemID, a.Format = id, format
		index[id].Assets = append(index[id].Assets, a)
		return nil
	})
	if err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx,
		"SELECT item_id, locale, field, value FROM gallery_i18n WHERE item_id IN ("+in+")",
		ids...)
	if err != nil {
		return fmt.Errorf("load i18n: %w", err)
	}
	err = eachRow(rows, func() error {
		var id, locale, field string
		var v gallery.I18nValue
		if err := rows.Scan(&id, &locale, &field, &v.Value); err != nil {
			return err
		}
		f, err := gallery.ParseField(field)
		if err != nil {
			return err
		}
		v.Locale, v.Field = gallery.Locale(locale), f
		index[id].I18n = append(index[id].I18n, v)
		return nil
	})
	if err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT it.item_id, t.id, t.slug, COALESCE(n.locale, ''), COALESCE(n.name, '')
		FROM gallery_item_tags it
		JOIN tags t ON t.id = it.tag_id
		LEFT JOIN tag_i18n n ON n.tag_id = t.id
		WHERE it.item_id IN (`+in+`)
		ORDER BY it.item_id, t.slug`,
		ids...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	return eachRow(rows, func() error {
		var id, slug, locale, name string
		var tagID int64
		if err := rows.Scan(&id, &tagID, &slug, &locale, &name); err != nil {
			return err
		}
		rec := index[id]
		n := len(rec.Tags)
		if n == 0 || rec.Tags[n-1].ID != tagID {
			rec.Tags = append(rec.Tags, Tag{ID: tagID, Slug: slug, Names: make(map[gallery.Locale]string)})
			n++
		}
		if locale != "" {
			rec.Tags[n-1].Names[gallery.Locale(locale)] = name
		}
		return nil
	})
}

func eachRow(rows *sql.Rows, fn func() error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(); err != nil {
			return err
		}
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
