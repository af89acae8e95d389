package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

// KeysPageSize is the page size used when enumerating storage map keys.
const KeysPageSize = 1000

// GetHeader returns the header at hash, or the best block header when hash
// is empty.
func (c *Client) GetHeader(ctx context.Context, hash string) (*Header, error) {
	var params []interface{}
	if hash != "" {
		params = []interface{}{hash}
	}
	result, err := c.call(ctx, "chain_getHeader", params)
	if err != nil {
		return nil, fmt.Errorf("chain_getHeader: %w", err)
	}
	if string(result) == "null" {
		return nil, fmt.Errorf("chain_getHeader(%s): block not found", hash)
	}

	var header Header
	if err := json.Unmarshal(result, &header); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}
	return &header, nil
}

func (c *Client) GetBlockHash(ctx context.Context, number model.BlockNumber) (string, error) {
	result, err := c.call(ctx, "chain_getBlockHash", []interface{}{uint32(number)})
	if err != nil {
		return "", fmt.Errorf("chain_getBlockHash(%d): %w", number, err)
	}
	var hash *string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unmarshal block hash: %w", err)
	}
	if hash == nil {
		return "", fmt.Errorf("chain_getBlockHash(%d): block not found", number)
	}
	return *hash, nil
}

// Head returns the number and hash of the current best block.
func (c *Client) Head(ctx context.Context) (model.BlockRef, error) {
	header, err := c.GetHeader(ctx, "")
	if err != nil {
		return model.BlockRef{}, err
	}
	number, err := ParseHexUint32(header.Number)
	if err != nil {
		return model.BlockRef{}, fmt.Errorf("parse head number: %w", err)
	}
	hash, err := c.GetBlockHash(ctx, model.BlockNumber(number))
	if err != nil {
		return model.BlockRef{}, err
	}
	return model.BlockRef{Number: model.BlockNumber(number), Hash: hash}, nil
}

// GetStorage reads the raw value at key. A missing value returns nil bytes
// and no error. An empty at reads the best block.
func (c *Client) GetStorage(ctx context.Context, key []byte, at string) ([]byte, error) {
	params := []interface{}{EncodeHexBytes(key)}
	if at != "" {
		params = append(params, at)
	}
	result, err := c.call(ctx, "state_getStorage", params)
	if err != nil {
		return nil, fmt.Errorf("state_getStorage(%s): %w", EncodeHexBytes(key), err)
	}
	var data *string
	if err := json.Unmarshal(result, &data); err != nil {
		return nil, fmt.Errorf("unmarshal storage value: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return DecodeHexBytes(*data)
}

// GetKeysPaged returns up to count keys under prefix, starting after
// startKey.
func (c *Client) GetKeysPaged(ctx context.Context, prefix []byte, count int, startKey []byte, at string) ([][]byte, error) {
	params := []interface{}{EncodeHexBytes(prefix), count}
	if len(startKey) > 0 || at != "" {
		var start interface{}
		if len(startKey) > 0 {
			start = EncodeHexBytes(startKey)
		}
		params = append(params, start)
	}
	if at != "" {
		params = append(params, at)
	}
	result, err := c.call(ctx, "state_getKeysPaged", params)
	if err != nil {
		return nil, fmt.Errorf("state_getKeysPaged(%s): %w", EncodeHexBytes(prefix), err)
	}
	var raw []string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal storage keys: %w", err)
	}
	keys := make([][]byte, 0, len(raw))
	for _, k := range raw {
		key, err := DecodeHexBytes(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// GetKeys enumerates every key under prefix.
func (c *Client) GetKeys(ctx context.Context, prefix []byte, at string) ([][]byte, error) {
	var (
		all   [][]byte
		start []byte
	)
	for {
		page, err := c.GetKeysPaged(ctx, prefix, KeysPageSize, start, at)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < KeysPageSize {
			return all, nil
		}
		start = page[len(page)-1]
	}
}

// SubmitExtrinsic submits a SCALE-encoded extrinsic and returns its hash.
func (c *Client) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (string, error) {
	result, err := c.call(ctx, "author_submitExtrinsic", []interface{}{EncodeHexBytes(extrinsic)})
	if err != nil {
		return "", fmt.Errorf("author_submitExtrinsic: %w", err)
	}
	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unmarshal extrinsic hash: %w", err)
	}
	return hash, nil
}

// DevSetStorage overwrites storage through the chopsticks dev RPC. values
// uses the chopsticks pallet/item JSON shape.
func (c *Client) DevSetStorage(ctx context.Context, values interface{}) error {
	if _, err := c.call(ctx, "dev_setStorage", []interface{}{values}); err != nil {
		return fmt.Errorf("dev_setStorage: %w", err)
	}
	return nil
}

// DevNewBlock asks chopsticks to build one block and returns its hash.
func (c *Client) DevNewBlock(ctx context.Context) (string, error) {
	result, err := c.call(ctx, "dev_newBlock", []interface{}{map[string]int{"count": 1}})
	if err != nil {
		return "", fmt.Errorf("dev_newBlock: %w", err)
	}
	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unmarshal new block hash: %w", err)
	}
	return hash, nil
}
