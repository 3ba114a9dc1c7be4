package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pariscan/pariscan/internal/domain"
)

func TestProgramAccounts(t *testing.T) {
	var pk domain.PublicKey
	pk[0] = 0xAB
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getProgramAccounts", req.Method)

		result := fmt.Sprintf(
			`[{"pubkey":%q,"account":{"data":[%q,"base64"],"lamports":1}}]`,
			base58.Encode(pk[:]),
			base64.StdEncoding.EncodeToString(payload),
		)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	accounts, err := c.ProgramAccounts(context.Background(), "prog111")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, pk, accounts[0].Pubkey)
	assert.Equal(t, payload, accounts[0].Data)
}

func TestProgramAccountsSkipsBadEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":[
			{"pubkey":"not-base58-!!!","account":{"data":["AQI=","base64"]}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	accounts, err := c.ProgramAccounts(context.Background(), "prog111")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ProgramAccounts(context.Background(), "prog111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	require.NoError(t, c.Health(context.Background()))
}
