package entities

// ProviderKind identifies an upstream provider family. It is used as a
// metric label and as the allow-list key for providerId overrides.
type ProviderKind string

const (
	ProviderInfura     ProviderKind = "infura"
	ProviderPokt       ProviderKind = "pokt"
	ProviderPublicnode ProviderKind = "publicnode"
	ProviderQuicknode  ProviderKind = "quicknode"
	ProviderSyndica    ProviderKind = "syndica"
	ProviderTrongrid   ProviderKind = "trongrid"
	ProviderHiro       ProviderKind = "hiro"
	ProviderToncenter  ProviderKind = "toncenter"
	ProviderNear       ProviderKind = "near"
	ProviderSui        ProviderKind = "sui"
)

// ParseProviderKind validates a providerId query value.
func ParseProviderKind(s string) (ProviderKind, bool) {
	switch k := ProviderKind(s); k {
	case ProviderInfura, ProviderPokt, ProviderPublicnode, ProviderQuicknode,
		ProviderSyndica, ProviderTrongrid, ProviderHiro, ProviderToncenter,
		ProviderNear, ProviderSui:
		return k, true
	}
	return "", false
}

// Priority orders providers within a chain's candidate pool.
type Priority int

const (
	PriorityDisabled Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
)

// CallOutcome classifies the result of one upstream proxy attempt.
type CallOutcome int

const (
	OutcomeSuccess CallOutcome = iota
	OutcomeRateLimited
	OutcomeTransportError
	OutcomeHTTPError
)
