// Shared helpers for datax CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// openStore resolves the data directory and opens the warehouse. The
// caller must defer Close.
func openStore() (*store.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	st, err := store.Open(types.Config{DataDir: dataDir})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// exitCodeFor maps an error to a CLI exit code: configuration mistakes
// are user errors, everything else is a system error.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errMissingConfig),
		errors.Is(err, types.ErrInvalidPlatform),
		errors.Is(err, types.ErrDataDirEmpty):
		return exitUserError
	default:
		return exitSysError
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
