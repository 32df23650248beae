// Package export encodes an item's mixed soundtrack into its delivery format
// and publishes it to the output directory with an atomic move.
package export
