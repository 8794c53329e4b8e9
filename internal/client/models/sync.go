package models

// Direction selects which side's data feeds the exchange call.
type Direction int

const (
	// PullRemote adopts the server's wardrobe; the local snapshot sent up
	// is empty.
	PullRemote Direction = iota
	// PushLocal sends the full local wardrobe, including image assets not
	// yet on the server.
	PushLocal
)

func (d Direction) String() string {
	if d == PushLocal {
		return "push"
	}
	return "pull"
}

// SyncState is the reconciliation engine's state machine position.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncAuthenticating
	SyncCheckpointMismatch
	SyncExchanging
	SyncSettled
	SyncFailed
	SyncUnauthenticated
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncAuthenticating:
		return "authenticating"
	case SyncCheckpointMismatch:
		return "checkpoint-mismatch"
	case SyncExchanging:
		return "exchanging"
	case SyncSettled:
		return "settled"
	case SyncFailed:
		return "failed"
	case SyncUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
