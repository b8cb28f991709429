// Package cometrpc is a CometBFT/Tendermint-style RPC client: it fetches
// the chain tip height and pages through tx_search results for a height
// range, decoding base64 attribute keys/values along the way.
package cometrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"wasmindexer/internal/types"
)

const perPage = 100

// Client is the RPC surface the Indexer Loop depends on.
type Client interface {
	Tip(ctx context.Context) (uint64, error)
	TxSearch(ctx context.Context, from, to uint64) ([]types.Tx, error)
}

// HTTPClient is a Client backed by a CometBFT-style JSON/HTTP RPC endpoint.
type HTTPClient struct {
	endpoint        string
	http            *http.Client
	onDecodeFailure func()
}

// Option configures an HTTPClient at construction.
type Option func(*HTTPClient)

// WithDecodeFailureCounter registers a hook invoked once per attribute
// field (key or value) that fails base64 or UTF-8 decoding, so a caller can
// feed it into a metrics sink without this package depending on one.
func WithDecodeFailureCounter(f func()) Option {
	return func(c *HTTPClient) { c.onDecodeFailure = f }
}

// NewHTTPClient builds an HTTPClient against endpoint, using a pooling
// *http.Client suitable for many concurrent callers.
func NewHTTPClient(endpoint string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

type blockchainResponse struct {
	Result struct {
		LastHeight string `json:"last_height"`
	} `json:"result"`
}

// Tip returns the chain's current best-known height.
func (c *HTTPClient) Tip(ctx context.Context) (uint64, error) {
	var resp blockchainResponse
	if err := c.get(ctx, "/blockchain", nil, &resp); err != nil {
		return 0, transportErr("tip", err)
	}

	h, err := strconv.ParseUint(resp.Result.LastHeight, 10, 64)
	if err != nil {
		return 0, transportErr("tip: parsing last_height", err)
	}
	return h, nil
}

type txSearchResponse struct {
	Result struct {
		TotalCount string      `json:"total_count"`
		Txs        []txPayload `json:"txs"`
	} `json:"result"`
}

type txPayload struct {
	Hash   string `json:"hash"`
	Height string `json:"height"`
	Index  uint64 `json:"index"`
	Result struct {
		Code   int64          `json:"code"`
		Events []eventPayload `json:"events"`
	} `json:"tx_result"`
}

type eventPayload struct {
	Type       string              `json:"type"`
	Attributes []attributePayload  `json:"attributes"`
}

type attributePayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TxSearch returns every transaction whose height lies in [from, to],
// inclusive, sorted by height then index, with failed txs dropped.
func (c *HTTPClient) TxSearch(ctx context.Context, from, to uint64) ([]types.Tx, error) {
	query := queryForRange(from, to)

	var all []txPayload
	page := 1
	for {
		params := url.Values{
			"query":    {query},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		}

		var resp txSearchResponse
		if err := c.get(ctx, "/tx_search", params, &resp); err != nil {
			return nil, transportErr("tx_search", err)
		}

		total, err := strconv.ParseUint(resp.Result.TotalCount, 10, 64)
		if err != nil {
			return nil, transportErr("tx_search: parsing total_count", err)
		}

		all = append(all, resp.Result.Txs...)

		if uint64(len(all)) >= total || len(resp.Result.Txs) == 0 {
			break
		}
		page++
	}

	txs := make([]types.Tx, 0, len(all))
	for _, p := range all {
		height, err := strconv.ParseUint(p.Height, 10, 64)
		if err != nil {
			return nil, transportErr("tx_search: parsing height", err)
		}
		txs = append(txs, types.Tx{
			Hash:   p.Hash,
			Height: height,
			Index:  p.Index,
			Code:   p.Result.Code,
			Events: c.decodeEvents(p.Result.Events),
		})
	}

	return postProcess(txs), nil
}

func (c *HTTPClient) decodeEvents(events []eventPayload) []types.Event {
	out := make([]types.Event, 0, len(events))
	for _, e := range events {
		attrs := make([]types.Attribute, 0, len(e.Attributes))
		for _, a := range e.Attributes {
			attr := decodeAttribute(a.Key, a.Value)
			if c.onDecodeFailure != nil {
				if !attr.KeyOK {
					c.onDecodeFailure()
				}
				if !attr.ValueOK {
					c.onDecodeFailure()
				}
			}
			attrs = append(attrs, attr)
		}
		out = append(out, types.Event{Type: e.Type, Attributes: attrs})
	}
	return out
}

// postProcess sorts stably by index ascending then (stably) by height
// ascending -- sorting by the minor key first makes the final stable sort
// by the major key preserve index order within equal heights -- and drops
// any transaction whose code is non-zero.
func postProcess(txs []types.Tx) []types.Tx {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Index < txs[j].Index })
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Height < txs[j].Height })

	out := txs[:0]
	for _, tx := range txs {
		if tx.Code != 0 {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func queryForRange(from, to uint64) string {
	if from == to {
		return fmt.Sprintf("tx.height = %d", from)
	}
	return fmt.Sprintf("tx.height >= %d AND tx.height <= %d", from, to)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.endpoint + path
	if params != nil {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
