package retrieval

import "errors"

// Sentinel errors for the retrieval pipeline. Check with errors.Is().
var (
	// ErrProvider indicates embedding generation failed (timeout, network,
	// model failure). Recovered locally via lexical fallback, never fatal.
	ErrProvider = errors.New("embedding provider failure")

	// ErrStore indicates a persistence failure. Propagated to the caller;
	// the retrieval attempt is abandoned.
	ErrStore = errors.New("episode store failure")
)
