package verification

// Event topics broadcast over the tracker's bus. The HTTP layer bridges
// these to SSE subscribers; observers never mutate tracker state.
const (
	EventStarted        = "verification-started"
	EventManifestLoaded = "manifest-loaded"
	EventProgress       = "verification-progress"
	EventFailed         = "verification-failed"
	EventComplete       = "verification-complete"
	EventRoutingGateway = "routing-gateway"
)

type Event struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
	TxId       string `json:"txId,omitempty"`
	Current    int    `json:"current,omitempty"`
	Total      int    `json:"total,omitempty"`
	Gateway    string `json:"gateway,omitempty"`
	Error      string `json:"error,omitempty"`
}
