// Package gallery holds the domain vocabulary shared by the ingestion
// pipeline and the query service: the closed enums for collections, asset
// formats, locales and localized fields, the deterministic slug/title
// derivation, the variant matrix, the locale fallback chain and the error
// taxonomy.
//
// Everything here is pure. Nothing touches the filesystem or the database.
package gallery
