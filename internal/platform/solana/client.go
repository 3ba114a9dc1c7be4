// Package solana is the read-only JSON-RPC client used to snapshot the
// betting program's accounts. It is the pipeline's only I/O boundary: one
// batch call returns every account owned by the program, and the core then
// runs to completion on the in-memory snapshot.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pariscan/pariscan/internal/domain"
)

// Client is a minimal Solana JSON-RPC client scoped to the calls the scanner
// needs.
type Client struct {
	endpoint   string
	commitment string
	httpClient *http.Client
}

// NewClient creates a Client for the given RPC endpoint, e.g.
// "https://api.mainnet-beta.solana.com". Commitment defaults to "confirmed"
// when empty.
func NewClient(endpoint, commitment string) *Client {
	if commitment == "" {
		commitment = "confirmed"
	}
	return &Client{
		endpoint:   endpoint,
		commitment: commitment,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ProgramAccounts fetches one snapshot of all accounts owned by programID
// (base58). Accounts whose RPC entries cannot be converted are skipped; the
// decode layer applies its own per-record defenses afterwards.
func (c *Client) ProgramAccounts(ctx context.Context, programID string) ([]domain.RawAccount, error) {
	params := []any{
		programID,
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	var entries []programAccount
	if err := c.call(ctx, "getProgramAccounts", params, &entries); err != nil {
		return nil, fmt.Errorf("solana: get program accounts: %w", err)
	}

	accounts := make([]domain.RawAccount, 0, len(entries))
	for _, e := range entries {
		acc, err := e.toRawAccount()
		if err != nil {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// Health checks the RPC endpoint's own health probe. A non-"ok" result maps
// to domain.ErrRPCUnhealthy.
func (c *Client) Health(ctx context.Context) error {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		return fmt.Errorf("solana: health: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("solana: health %q: %w", status, domain.ErrRPCUnhealthy)
	}
	return nil
}

// call performs one JSON-RPC round trip and unmarshals the result into out.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}
