package clients

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	pvtypes "github.com/vitwit/payverify/types"
)

// DefaultPollInterval is the receipt polling cadence used when none is set.
const DefaultPollInterval = 2 * time.Second

// rpcBackend is the slice of the ethclient API the client consumes;
// *ethclient.Client satisfies it.
type rpcBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

var _ Reader = (*EVMClient)(nil)

// EVMClient implements Reader over a go-ethereum JSON-RPC connection.
type EVMClient struct {
	rpcURL       string
	eth          rpcBackend
	pollInterval time.Duration

	mu      sync.Mutex
	chainID *big.Int // fetched lazily, cached
}

func NewEVMClient(rpcURL string) (*EVMClient, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}

	return &EVMClient{
		rpcURL:       rpcURL,
		eth:          eth,
		pollInterval: DefaultPollInterval,
	}, nil
}

// SetPollInterval overrides the receipt polling cadence. Must be called
// before the client is shared across verifications.
func (c *EVMClient) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.pollInterval = d
	}
}

// WaitForReceipt polls eth_getTransactionReceipt until the transaction is
// mined or ctx is done. A ticker keeps the wait cooperative; no busy loop.
// Transient RPC failures between ticks are retried until the deadline, not
// surfaced immediately.
func (c *EVMClient) WaitForReceipt(ctx context.Context, txHash string) (*pvtypes.Receipt, error) {
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return toReceipt(receipt), nil
		}
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, fmt.Errorf("%w (last rpc error for %s: %v)", ctx.Err(), txHash, lastErr)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TransactionByHash fetches the transaction and recovers its sender.
func (c *EVMClient) TransactionByHash(ctx context.Context, txHash string) (*pvtypes.TransactionDetail, error) {
	hash := common.HexToHash(txHash)

	tx, pending, err := c.eth.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", txHash, err)
	}
	if pending {
		return nil, fmt.Errorf("transaction %s still pending", txHash)
	}

	chainID, err := c.getChainID(ctx)
	if err != nil {
		return nil, err
	}

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender of %s: %w", txHash, err)
	}

	detail := &pvtypes.TransactionDetail{
		Hash:  tx.Hash().Hex(),
		From:  from.Hex(),
		Value: tx.Value(),
		Nonce: tx.Nonce(),
		Data:  tx.Data(),
	}
	if to := tx.To(); to != nil {
		detail.To = to.Hex()
	}

	return detail, nil
}

func (c *EVMClient) getChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chainID != nil {
		return c.chainID, nil
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id fetch: %w", err)
	}
	c.chainID = chainID
	return chainID, nil
}

func (c *EVMClient) RPCUrl() string { return c.rpcURL }

func (c *EVMClient) Close() { c.eth.Close() }

func toReceipt(r *ethtypes.Receipt) *pvtypes.Receipt {
	out := &pvtypes.Receipt{
		TxHash:  r.TxHash.Hex(),
		Status:  r.Status,
		GasUsed: r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = new(big.Int).Set(r.BlockNumber)
	}
	return out
}
