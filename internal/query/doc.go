// Package query implements the read side of the gallery: request parameter
// validation and the listing service that turns stored items into
// responsive image descriptors with localized text.
package query
