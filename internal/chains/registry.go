// Package chains holds the static catalogue of chains the gateway
// recognizes. A chain being listed here does not guarantee a healthy
// provider for it; it only gates the public API's chainId validation.
package chains

import (
	"rpc-gateway.backend/internal/domain/entities"
)

// ChainInfo describes one catalogued chain.
type ChainInfo struct {
	Name         string
	NativeSymbol string
	Providers    []entities.ProviderKind
	WSProviders  []entities.ProviderKind
}

// Registry is the read-only chain catalogue, loaded once at bootstrap.
type Registry struct {
	chains map[entities.Caip2]ChainInfo
}

// NewRegistry builds the catalogue from the embedded table.
func NewRegistry() *Registry {
	return &Registry{chains: supportedChains()}
}

// Lookup returns the catalogue entry for a chain.
func (r *Registry) Lookup(chain entities.Caip2) (ChainInfo, bool) {
	info, ok := r.chains[chain]
	return info, ok
}

// IsSupported reports whether the chain is in the catalogue.
func (r *Registry) IsSupported(chain entities.Caip2) bool {
	_, ok := r.chains[chain]
	return ok
}

// All returns every catalogued chain id.
func (r *Registry) All() []entities.Caip2 {
	out := make([]entities.Caip2, 0, len(r.chains))
	for c := range r.chains {
		out = append(out, c)
	}
	return out
}

func supportedChains() map[entities.Caip2]ChainInfo {
	infura := entities.ProviderInfura
	pokt := entities.ProviderPokt
	publicnode := entities.ProviderPublicnode
	quicknode := entities.ProviderQuicknode
	syndica := entities.ProviderSyndica

	return map[entities.Caip2]ChainInfo{
		entities.MustCaip2("eip155:1"): {
			Name:         "Ethereum",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode, quicknode},
			WSProviders:  []entities.ProviderKind{infura, quicknode},
		},
		entities.MustCaip2("eip155:10"): {
			Name:         "Optimism",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode},
			WSProviders:  []entities.ProviderKind{infura},
		},
		entities.MustCaip2("eip155:56"): {
			Name:         "BNB Smart Chain",
			NativeSymbol: "BNB",
			Providers:    []entities.ProviderKind{pokt, publicnode},
		},
		entities.MustCaip2("eip155:137"): {
			Name:         "Polygon",
			NativeSymbol: "POL",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode, quicknode},
			WSProviders:  []entities.ProviderKind{infura, quicknode},
		},
		entities.MustCaip2("eip155:324"): {
			Name:         "zkSync Era",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{pokt, publicnode},
		},
		entities.MustCaip2("eip155:8453"): {
			Name:         "Base",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode, quicknode},
			WSProviders:  []entities.ProviderKind{quicknode},
		},
		entities.MustCaip2("eip155:42161"): {
			Name:         "Arbitrum One",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode, quicknode},
			WSProviders:  []entities.ProviderKind{infura},
		},
		entities.MustCaip2("eip155:43114"): {
			Name:         "Avalanche C-Chain",
			NativeSymbol: "AVAX",
			Providers:    []entities.ProviderKind{infura, pokt, publicnode},
		},
		entities.MustCaip2("eip155:59144"): {
			Name:         "Linea",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, publicnode},
		},
		entities.MustCaip2("eip155:1101"): {
			Name:         "Polygon zkEVM",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{publicnode},
		},
		entities.MustCaip2("eip155:5000"): {
			Name:         "Mantle",
			NativeSymbol: "MNT",
			Providers:    []entities.ProviderKind{publicnode},
		},
		entities.MustCaip2("eip155:11155111"): {
			Name:         "Ethereum Sepolia",
			NativeSymbol: "ETH",
			Providers:    []entities.ProviderKind{infura, publicnode},
			WSProviders:  []entities.ProviderKind{infura},
		},
		entities.MustCaip2("solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"): {
			Name:         "Solana",
			NativeSymbol: "SOL",
			Providers:    []entities.ProviderKind{syndica, pokt, quicknode},
		},
		entities.MustCaip2("solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"): {
			Name:         "Solana Devnet",
			NativeSymbol: "SOL",
			Providers:    []entities.ProviderKind{syndica},
		},
		entities.MustCaip2("bip122:000000000019d6689c085ae165831e93"): {
			Name:         "Bitcoin",
			NativeSymbol: "BTC",
			Providers:    []entities.ProviderKind{publicnode},
		},
		entities.MustCaip2("tron:0x2b6653dc"): {
			Name:         "Tron",
			NativeSymbol: "TRX",
			Providers:    []entities.ProviderKind{entities.ProviderTrongrid},
		},
		entities.MustCaip2("stacks:1"): {
			Name:         "Stacks",
			NativeSymbol: "STX",
			Providers:    []entities.ProviderKind{entities.ProviderHiro},
		},
		entities.MustCaip2("ton:-239"): {
			Name:         "TON",
			NativeSymbol: "TON",
			Providers:    []entities.ProviderKind{entities.ProviderToncenter},
		},
		entities.MustCaip2("near:mainnet"): {
			Name:         "NEAR",
			NativeSymbol: "NEAR",
			Providers:    []entities.ProviderKind{entities.ProviderNear},
		},
		entities.MustCaip2("sui:mainnet"): {
			Name:         "Sui",
			NativeSymbol: "SUI",
			Providers:    []entities.ProviderKind{entities.ProviderSui},
		},
	}
}
