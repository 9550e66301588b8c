package assethttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

const maxResponseBody = 1 << 20

// Resolver implements port.AssetResolver for asset services reached over
// HTTP. Each asset handle maps to the base URL of its service; handles
// without an endpoint resolve to nothing.
type Resolver struct {
	endpoints map[domain.Address]string
	custody   domain.Address
	client    *http.Client
}

// NewResolver returns a resolver for endpoints acting as custody.
func NewResolver(endpoints map[string]string, custody domain.Address, timeout time.Duration) *Resolver {
	eps := make(map[domain.Address]string, len(endpoints))
	for asset, url := range endpoints {
		eps[domain.NewAddress(asset)] = strings.TrimRight(url, "/")
	}
	return &Resolver{
		endpoints: eps,
		custody:   custody,
		client:    &http.Client{Timeout: timeout},
	}
}

// Resolve implements port.AssetResolver.
func (r *Resolver) Resolve(asset domain.Address) (port.Token, bool) {
	base, ok := r.endpoints[asset]
	if !ok || base == "" {
		return nil, false
	}
	return &token{r: r, base: base}, true
}

type transferReq struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type transferResp struct {
	Success *bool `json:"success"`
}

type token struct {
	r    *Resolver
	base string
}

func (t *token) Transfer(ctx context.Context, to domain.Address, amount uint64) (port.TransferStatus, error) {
	return t.post(ctx, "/transfer", transferReq{
		From:   t.r.custody.String(),
		To:     to.String(),
		Amount: strconv.FormatUint(amount, 10),
	})
}

func (t *token) TransferFrom(ctx context.Context, from, to domain.Address, amount uint64) (port.TransferStatus, error) {
	return t.post(ctx, "/transfer-from", transferReq{
		From:   from.String(),
		To:     to.String(),
		Amount: strconv.FormatUint(amount, 10),
	})
}

// post sends req and reads the reported status. A 2xx response with an
// empty body or no "success" field reports nothing.
func (t *token) post(ctx context.Context, path string, req transferReq) (port.TransferStatus, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Account", t.r.custody.String())

	resp, err := t.r.client.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%s %s: status %d: %s", http.MethodPost, path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return port.TransferSilent, nil
	}
	var out transferResp
	if err = json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("decode %s response: %w", path, err)
	}
	switch {
	case out.Success == nil:
		return port.TransferSilent, nil
	case *out.Success:
		return port.TransferOK, nil
	default:
		return port.TransferRejected, nil
	}
}
