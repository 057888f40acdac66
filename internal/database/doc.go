// Package database provides SQLite persistence for the media gallery.
//
// It handles storage and retrieval of:
//   - Gallery items with their derived assets and localized fields
//   - Tags with localized names and the item/tag relation
//
// Every item is written in a single transaction: the item row, all of its
// assets and all of its localized fields commit together or not at all.
// The database uses WAL mode so listing queries keep reading the previous
// committed state while an ingestion run is writing.
package database
