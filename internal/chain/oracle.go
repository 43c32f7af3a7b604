// Package chain reads the subscription contract over Ethereum JSON-RPC.
package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrNotConfigured is returned when no contract address is set.
	ErrNotConfigured = errors.New("chain: subscription contract not configured")
	// ErrMalformedResult is returned when a call result cannot be decoded.
	ErrMalformedResult = errors.New("chain: malformed call result")
)

var (
	selIsPremium    = Selector("isPremium(address)")
	selGetExpiry    = Selector("getExpiry(address)")
	selMonthlyPrice = Selector("MONTHLY_PRICE()")
)

const wordSize = 32

// Selector returns the 4-byte function selector of a canonical signature.
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// Oracle answers subscription questions from the contract state. It never
// retries; callers decide how to treat failures.
type Oracle struct {
	client   *resty.Client
	rpcURL   string
	contract string
	nextID   atomic.Uint64
}

func NewOracle(rpcURL, contract string, timeout time.Duration) *Oracle {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Oracle{client: c, rpcURL: rpcURL, contract: strings.ToLower(contract)}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

func (o *Oracle) call(ctx context.Context, method string, params []any, out any) error {
	req := rpcRequest{JSONRPC: "2.0", ID: o.nextID.Add(1), Method: method, Params: params}
	resp, err := o.client.R().SetContext(ctx).SetBody(&req).Post(o.rpcURL)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s: rpc status %d", method, resp.StatusCode())
	}
	var rr rpcResponse
	if err := json.Unmarshal(resp.Body(), &rr); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rr.Error.Code, rr.Error.Message)
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		return fmt.Errorf("%s: %w: empty result", method, ErrMalformedResult)
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("%s: %w: %v", method, ErrMalformedResult, err)
	}
	return nil
}

// ethCall runs a read-only call against the contract at the latest block and
// returns the first result word.
func (o *Oracle) ethCall(ctx context.Context, data []byte) ([]byte, error) {
	if o.contract == "" {
		return nil, ErrNotConfigured
	}
	var res string
	msg := callMsg{To: o.contract, Data: "0x" + hex.EncodeToString(data)}
	if err := o.call(ctx, "eth_call", []any{msg, "latest"}, &res); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(res, "0x"))
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w: %v", ErrMalformedResult, err)
	}
	if len(raw) < wordSize {
		return nil, fmt.Errorf("eth_call: %w: %d bytes", ErrMalformedResult, len(raw))
	}
	return raw[:wordSize], nil
}

// EncodeAddress left-pads a 20-byte address into one ABI word.
func EncodeAddress(addr string) ([]byte, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(addr)), "0x")
	if len(s) != 40 {
		return nil, fmt.Errorf("chain: invalid address %q", addr)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid address %q: %w", addr, err)
	}
	word := make([]byte, wordSize)
	copy(word[wordSize-len(b):], b)
	return word, nil
}

func withAddress(sel []byte, addr string) ([]byte, error) {
	word, err := EncodeAddress(addr)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, sel...), word...), nil
}

// IsPremiumActive reports the contract's premium flag for addr.
func (o *Oracle) IsPremiumActive(ctx context.Context, addr string) (bool, error) {
	data, err := withAddress(selIsPremium, addr)
	if err != nil {
		return false, err
	}
	word, err := o.ethCall(ctx, data)
	if err != nil {
		return false, err
	}
	return decodeBool(word)
}

// Expiry returns the subscription expiry as unix seconds; 0 means never subscribed.
func (o *Oracle) Expiry(ctx context.Context, addr string) (int64, error) {
	data, err := withAddress(selGetExpiry, addr)
	if err != nil {
		return 0, err
	}
	word, err := o.ethCall(ctx, data)
	if err != nil {
		return 0, err
	}
	v := new(big.Int).SetBytes(word)
	if !v.IsInt64() {
		return 0, fmt.Errorf("getExpiry: %w: value out of range", ErrMalformedResult)
	}
	return v.Int64(), nil
}

// MonthlyPrice returns the subscription price in wei.
func (o *Oracle) MonthlyPrice(ctx context.Context) (*big.Int, error) {
	word, err := o.ethCall(ctx, selMonthlyPrice)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word), nil
}

// HealthPing implements health.HealthPinger with eth_blockNumber.
func (o *Oracle) HealthPing(ctx context.Context) error {
	var block string
	return o.call(ctx, "eth_blockNumber", []any{}, &block)
}

func decodeBool(word []byte) (bool, error) {
	for _, b := range word[:wordSize-1] {
		if b != 0 {
			return false, fmt.Errorf("isPremium: %w: not a bool", ErrMalformedResult)
		}
	}
	switch word[wordSize-1] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("isPremium: %w: not a bool", ErrMalformedResult)
	}
}
