// Package migrations holds the SQL schema history. Each migration registers
// itself from init(); cmd/sweetshop imports this package for its side effects.
package migrations
