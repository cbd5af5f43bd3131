package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/proxy"
)

// ensRegistryAddress is the ENS registry, identical on mainnet and the
// major testnets.
const ensRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

var ethereumMainnet = entities.MustCaip2("eip155:1")

// 4-byte selectors for the registry and resolver calls.
var (
	selResolver = crypto.Keccak256([]byte("resolver(bytes32)"))[:4]
	selAddr     = crypto.Keccak256([]byte("addr(bytes32)"))[:4]
	selName     = crypto.Keccak256([]byte("name(bytes32)"))[:4]
)

// Identity is the result of a lookup in either direction.
type Identity struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// IdentityUsecase resolves ENS names and reverse records. Every chain read
// is a self-proxied eth_call, so lookups share the proxy engine's failover
// and observability.
type IdentityUsecase struct {
	transport proxy.Transport
}

// NewIdentityUsecase creates a new identity usecase
func NewIdentityUsecase(transport proxy.Transport) *IdentityUsecase {
	return &IdentityUsecase{transport: transport}
}

// Resolve looks up the counterpart of an address or name. Hex addresses
// resolve to their reverse-registered name; anything else is treated as an
// ENS name and resolved forward.
func (u *IdentityUsecase) Resolve(ctx context.Context, projectID, addressOrName string) (*Identity, error) {
	metrics.IdentityLookups.Inc()

	if common.IsHexAddress(addressOrName) {
		name, err := u.reverseLookup(ctx, projectID, common.HexToAddress(addressOrName))
		if err != nil {
			return nil, err
		}
		return &Identity{Name: name, Address: common.HexToAddress(addressOrName).Hex()}, nil
	}

	name := strings.ToLower(strings.TrimSpace(addressOrName))
	if name == "" || !strings.Contains(name, ".") {
		return nil, domainerrors.BadRequestField("address", "expected a hex address or an ENS name")
	}
	addr, err := u.forwardLookup(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	return &Identity{Name: name, Address: addr}, nil
}

func (u *IdentityUsecase) forwardLookup(ctx context.Context, projectID, name string) (string, error) {
	node := Namehash(name)

	resolver, err := u.resolverFor(ctx, projectID, node)
	if err != nil {
		return "", err
	}

	data := append(append([]byte{}, selAddr...), node[:]...)
	result, err := u.ethCall(ctx, projectID, resolver, data)
	if err != nil {
		return "", err
	}
	if len(result) < 32 {
		return "", domainerrors.BadRequestField("address", "name has no address record")
	}
	addr := common.BytesToAddress(result[12:32])
	if addr == (common.Address{}) {
		return "", domainerrors.BadRequestField("address", "name has no address record")
	}
	return addr.Hex(), nil
}

func (u *IdentityUsecase) reverseLookup(ctx context.Context, projectID string, addr common.Address) (string, error) {
	reverseName := strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse"
	node := Namehash(reverseName)

	resolver, err := u.resolverFor(ctx, projectID, node)
	if err != nil {
		return "", err
	}

	data := append(append([]byte{}, selName...), node[:]...)
	result, err := u.ethCall(ctx, projectID, resolver, data)
	if err != nil {
		return "", err
	}

	name, err := unpackString(result)
	if err != nil || name == "" {
		return "", domainerrors.BadRequestField("address", "address has no reverse record")
	}
	return name, nil
}

// resolverFor asks the ENS registry which resolver owns the node.
func (u *IdentityUsecase) resolverFor(ctx context.Context, projectID string, node common.Hash) (common.Address, error) {
	data := append(append([]byte{}, selResolver...), node[:]...)
	result, err := u.ethCall(ctx, projectID, common.HexToAddress(ensRegistryAddress), data)
	if err != nil {
		return common.Address{}, err
	}
	if len(result) < 32 {
		return common.Address{}, domainerrors.BadRequestField("address", "no resolver configured")
	}
	resolver := common.BytesToAddress(result[12:32])
	if resolver == (common.Address{}) {
		return common.Address{}, domainerrors.BadRequestField("address", "no resolver configured")
	}
	return resolver, nil
}

// ethCall issues a read-only call through the self-transport.
func (u *IdentityUsecase) ethCall(ctx context.Context, projectID string, to common.Address, data []byte) ([]byte, error) {
	params := []interface{}{
		map[string]string{
			"to":   to.Hex(),
			"data": "0x" + common.Bytes2Hex(data),
		},
		"latest",
	}
	rpc, err := entities.NewRPCRequest(1, "eth_call", params)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	resp, err := u.transport.CallRPC(ctx, ethereumMainnet, projectID, rpc)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domainerrors.UpstreamTransport(fmt.Errorf("eth_call: %s", resp.Error.Message))
	}

	var hexResult string
	if err := json.Unmarshal(resp.Result, &hexResult); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return common.FromHex(hexResult), nil
}

// Namehash implements EIP-137 recursive name hashing.
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node[:], labelHash))
	}
	return node
}

// unpackString decodes a single ABI-encoded dynamic string return value.
func unpackString(data []byte) (string, error) {
	if len(data) < 64 {
		return "", fmt.Errorf("short string return")
	}
	offset := new(big.Int).SetBytes(data[:32]).Uint64()
	if offset+32 > uint64(len(data)) {
		return "", fmt.Errorf("bad string offset")
	}
	length := new(big.Int).SetBytes(data[offset : offset+32]).Uint64()
	if offset+32+length > uint64(len(data)) {
		return "", fmt.Errorf("bad string length")
	}
	return string(data[offset+32 : offset+32+length]), nil
}
