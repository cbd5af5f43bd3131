package entities

import (
	"strings"

	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// Caip2 is a chain identifier of the form "namespace:reference",
// e.g. "eip155:1" or "solana:4sGjMW1sUnHzSxGspuhpqLDx6wiyjNtZ".
type Caip2 struct {
	Namespace string
	Reference string
}

// ParseCaip2 parses the canonical "<namespace>:<reference>" form.
// Both components must be non-empty and the reference must not itself
// contain a separator.
func ParseCaip2(s string) (Caip2, error) {
	ns, ref, ok := strings.Cut(s, ":")
	if !ok || ns == "" || ref == "" || strings.Contains(ref, ":") {
		return Caip2{}, domainerrors.BadRequestField("chainId", "chainId must be a CAIP-2 identifier like eip155:1")
	}
	return Caip2{Namespace: ns, Reference: ref}, nil
}

// MustCaip2 parses a CAIP-2 string and panics on failure. For static tables.
func MustCaip2(s string) Caip2 {
	c, err := ParseCaip2(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical form.
func (c Caip2) String() string {
	return c.Namespace + ":" + c.Reference
}

// IsZero reports whether the identifier is unset.
func (c Caip2) IsZero() bool {
	return c.Namespace == "" && c.Reference == ""
}
