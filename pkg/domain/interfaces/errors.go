package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when a requested entity does
// not exist. Both backends wrap this sentinel so callers can branch
// with errors.Is regardless of the configured store.
var ErrNotFound = goerr.New("not found")
