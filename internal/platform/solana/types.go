package solana

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pariscan/pariscan/internal/domain"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// rpcResponse is a JSON-RPC 2.0 response envelope with a lazily decoded
// result.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// programAccount is one entry of a getProgramAccounts result.
type programAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		// Data is a [payload, encoding] tuple when base64 encoding is
		// requested.
		Data     []string `json:"data"`
		Owner    string   `json:"owner"`
		Lamports uint64   `json:"lamports"`
	} `json:"account"`
}

// toRawAccount converts an RPC account entry to the domain representation.
func (pa programAccount) toRawAccount() (domain.RawAccount, error) {
	pk, err := domain.PublicKeyFromBase58(pa.Pubkey)
	if err != nil {
		return domain.RawAccount{}, fmt.Errorf("solana: account pubkey: %w", err)
	}
	if len(pa.Account.Data) < 1 {
		return domain.RawAccount{}, fmt.Errorf("solana: account %s: empty data tuple", pa.Pubkey)
	}
	if len(pa.Account.Data) > 1 && pa.Account.Data[1] != "base64" {
		return domain.RawAccount{}, fmt.Errorf("solana: account %s: unexpected encoding %q", pa.Pubkey, pa.Account.Data[1])
	}
	payload, err := base64.StdEncoding.DecodeString(pa.Account.Data[0])
	if err != nil {
		return domain.RawAccount{}, fmt.Errorf("solana: account %s: decode data: %w", pa.Pubkey, err)
	}
	return domain.RawAccount{Pubkey: pk, Data: payload}, nil
}
