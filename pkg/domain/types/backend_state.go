package types

// BackendState is the connection state of the durable quota backend.
// Degraded is terminal for the process lifetime: once reconnect
// attempts are exhausted the limiter never leaves the in-process store.
type BackendState string

const (
	BackendDisconnected BackendState = "disconnected"
	BackendConnecting   BackendState = "connecting"
	BackendConnected    BackendState = "connected"
	BackendDegraded     BackendState = "degraded"
)

// String returns the string representation of the backend state
func (s BackendState) String() string {
	return string(s)
}
