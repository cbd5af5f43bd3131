package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"rpc-gateway.backend/internal/chains"
	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/proxy"
)

// Balance is a native-token balance in base units.
type Balance struct {
	ChainID string `json:"chainId"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Symbol  string `json:"symbol,omitempty"`
}

// HistoryPage is one page of account transaction history.
type HistoryPage struct {
	ChainID string          `json:"chainId"`
	Address string          `json:"address"`
	Entries json.RawMessage `json:"entries"`
	Cursor  string          `json:"cursor,omitempty"`
}

// AccountUsecase serves balance and history reads as self-proxied RPC
// calls, so they share the engine's routing and failover.
type AccountUsecase struct {
	transport proxy.Transport
	catalogue *chains.Registry
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(transport proxy.Transport, catalogue *chains.Registry) *AccountUsecase {
	return &AccountUsecase{transport: transport, catalogue: catalogue}
}

// NativeBalance reads the native-token balance for an account. Only eip155
// chains are supported; other namespaces have no uniform balance RPC.
func (u *AccountUsecase) NativeBalance(ctx context.Context, projectID string, chain entities.Caip2, address string) (*Balance, error) {
	if chain.Namespace != "eip155" {
		return nil, domainerrors.BadRequestField("chainId", "balance lookup is only available for eip155 chains")
	}
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return nil, domainerrors.BadRequestField("address", "expected a 0x-prefixed 20-byte address")
	}

	rpc, err := entities.NewRPCRequest(1, "eth_getBalance", []string{address, "latest"})
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	resp, err := u.transport.CallRPC(ctx, chain, projectID, rpc)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domainerrors.UpstreamTransport(fmt.Errorf("eth_getBalance: %s", resp.Error.Message))
	}

	var hexAmount string
	if err := json.Unmarshal(resp.Result, &hexAmount); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	amount, ok := new(big.Int).SetString(strings.TrimPrefix(hexAmount, "0x"), 16)
	if !ok {
		return nil, domainerrors.InternalError(fmt.Errorf("non-hex balance %q", hexAmount))
	}

	balance := &Balance{
		ChainID: chain.String(),
		Address: address,
		Amount:  amount.String(),
	}
	if info, ok := u.catalogue.Lookup(chain); ok {
		balance.Symbol = info.NativeSymbol
	}
	return balance, nil
}

// History fetches one page of transaction history through the
// wallet-service RPC surface.
func (u *AccountUsecase) History(ctx context.Context, projectID string, chain entities.Caip2, address, cursor string) (*HistoryPage, error) {
	params := map[string]string{"address": address}
	if cursor != "" {
		params["cursor"] = cursor
	}
	rpc, err := entities.NewRPCRequest(1, "wallet_getTransactionHistory", []interface{}{params})
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	resp, err := u.transport.CallRPC(ctx, chain, projectID, rpc)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domainerrors.UpstreamTransport(fmt.Errorf("wallet_getTransactionHistory: %s", resp.Error.Message))
	}

	page := &HistoryPage{ChainID: chain.String(), Address: address, Entries: resp.Result}
	// Cursor extraction is best-effort; providers that do not paginate
	// return a bare list.
	var envelope struct {
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(resp.Result, &envelope); err == nil {
		page.Cursor = envelope.Cursor
	}
	return page, nil
}
