package database

import (
	"context"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/metrics"
)

// GetStats counts items per type and tags in use. It implements
// metrics.StatsProvider.
func (d *Database) GetStats(ctx context.Context) (stats metrics.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats.ItemsByType = make(map[string]int, len(gallery.ItemTypes))
	for _, t := range gallery.ItemTypes {
		stats.ItemsByType[t.String()] = 0
	}

	rows, err := d.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM gallery_items GROUP BY type")
	if err != nil {
		return stats, err
	}
	err = eachRow(rows, func() error {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return err
		}
		stats.ItemsByType[typ] = n
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = d.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT tag_id) FROM gallery_item_tags").Scan(&stats.Tags)
	return stats, err
}
