package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrQuotaExceeded is returned when an identity has used up its
	// question quota for the current window.
	ErrQuotaExceeded = goerr.New("question quota exceeded")

	// ErrEnrichmentUnavailable is returned when metadata generation is
	// requested but no enrichment service is configured.
	ErrEnrichmentUnavailable = goerr.New("enrichment service is not configured")
)
