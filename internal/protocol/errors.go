package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Level loading.
	ErrBadLevel = "E_BAD_LEVEL"
	ErrConfig   = "E_CONFIG"

	// Search outcome.
	ErrUnsolvable = "E_UNSOLVABLE"
	ErrExhausted  = "E_EXHAUSTED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadLevel:        {},
	ErrConfig:          {},
	ErrUnsolvable:      {},
	ErrExhausted:       {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
