// Package types defines the entities stored in the Datax warehouse
// (pages, posts, daily metrics, reaction breakdowns, weekly stats),
// the store configuration, and the standard error values shared by the
// storage layer, the ingesters, and the delta calculator.
package types
