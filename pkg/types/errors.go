package types

import "errors"

// Standard errors returned by the storage layer and the delta calculator.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrDataDirEmpty is returned by Config.Validate when no data
	// directory is configured.
	ErrDataDirEmpty = errors.New("data directory must not be empty")

	// ErrDuplicateMetricKey is returned by the delta calculator when two
	// rows share the same (platform, page_id, post_id, download_date).
	// The predecessor of a row is then ambiguous and the whole recompute
	// aborts.
	ErrDuplicateMetricKey = errors.New("duplicate daily metric key")

	// ErrMissingDownloadDate is returned by the delta calculator when a
	// row in scope has no download date. Series order cannot be
	// established, so the whole recompute aborts rather than skipping
	// the row and masking an ingestion bug.
	ErrMissingDownloadDate = errors.New("daily metric row has no download date")

	// ErrInvalidPlatform is returned when a platform identifier is not
	// one of the supported platforms.
	ErrInvalidPlatform = errors.New("unknown platform")
)
