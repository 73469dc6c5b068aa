package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// HTTPClient is a Client implementation that speaks JSON-over-HTTP to a
// CryptoNote daemon's wallet-facing RPC surface.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client pointed at baseURL (e.g.
// "http://127.0.0.1:11898"), using timeout as the per-request deadline.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// call performs a JSON POST of req to path and decodes the response into
// resp, translating transport and status failures into the node error
// taxonomy.
func (c *HTTPClient) call(ctx context.Context, path string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return types.WrapError(types.ErrInternalNodeError, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return types.WrapError(types.ErrInternalNodeError, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return types.WrapError(types.ErrTimeout, err)
		}
		return types.WrapError(types.ErrConnectError, err)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusServiceUnavailable:
		return types.NewError(types.ErrNodeBusy)
	case httpResp.StatusCode >= 500:
		return types.NewError(types.ErrInternalNodeError)
	case httpResp.StatusCode >= 400:
		return types.WrapError(types.ErrNetworkError, fmt.Errorf("node returned status %d", httpResp.StatusCode))
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return types.WrapError(types.ErrInternalNodeError, err)
	}
	return nil
}

func (c *HTTPClient) GetLastBlockHeader(ctx context.Context) (types.BlockHeader, error) {
	var resp types.BlockHeader
	err := c.call(ctx, "/getlastblockheader", struct{}{}, &resp)
	return resp, err
}

func (c *HTTPClient) GetInfo(ctx context.Context) (Info, error) {
	var resp Info
	err := c.call(ctx, "/getinfo", struct{}{}, &resp)
	return resp, err
}

func (c *HTTPClient) QueryBlocksLite(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64) (QueryBlocksLiteResult, error) {
	req := struct {
		BlockHashes []crypto.Hash `json:"blockHashes"`
		StartHeight uint64        `json:"startHeight"`
	}{knownBlockHashes, startHeight}

	var resp QueryBlocksLiteResult
	err := c.call(ctx, "/queryblockslite", req, &resp)
	return resp, err
}

func (c *HTTPClient) GetWalletSyncData(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64, viewKeys []crypto.PublicKey) (WalletSyncDataResult, error) {
	req := struct {
		BlockHashes []crypto.Hash      `json:"blockHashes"`
		StartHeight uint64             `json:"startHeight"`
		ViewKeys    []crypto.PublicKey `json:"viewKeys"`
	}{knownBlockHashes, startHeight, viewKeys}

	var resp WalletSyncDataResult
	err := c.call(ctx, "/getwalletsyncdata", req, &resp)
	return resp, err
}

func (c *HTTPClient) GetPoolChangesLite(ctx context.Context, knownTxHashes []crypto.Hash) (PoolChangesResult, error) {
	req := struct {
		KnownTxHashes []crypto.Hash `json:"knownTxHashes"`
	}{knownTxHashes}

	var resp PoolChangesResult
	err := c.call(ctx, "/getpoolchangeslite", req, &resp)
	return resp, err
}

func (c *HTTPClient) GetRandomOutsForAmounts(ctx context.Context, amounts []uint64, mixin int) ([]RandomOutsForAmount, error) {
	req := struct {
		Amounts []uint64 `json:"amounts"`
		Mixin   int      `json:"mixin"`
	}{amounts, mixin}

	var resp []RandomOutsForAmount
	err := c.call(ctx, "/getrandom_outs", req, &resp)
	return resp, err
}

func (c *HTTPClient) GetGlobalIndexesForRange(ctx context.Context, startHeight, endHeight uint64) (map[crypto.Hash][]uint64, error) {
	req := struct {
		StartHeight uint64 `json:"startHeight"`
		EndHeight   uint64 `json:"endHeight"`
	}{startHeight, endHeight}

	var resp map[crypto.Hash][]uint64
	err := c.call(ctx, "/get_global_indexes_for_range", req, &resp)
	return resp, err
}

func (c *HTTPClient) SendRawTransaction(ctx context.Context, raw []byte) error {
	req := struct {
		TxAsHex string `json:"txAsHex"`
	}{fmt.Sprintf("%x", raw)}

	return c.call(ctx, "/sendrawtransaction", req, nil)
}

func (c *HTTPClient) GetFeeInfo(ctx context.Context) (FeeInfo, error) {
	var resp FeeInfo
	err := c.call(ctx, "/fee", struct{}{}, &resp)
	return resp, err
}
