package clients

import (
	"context"

	pvtypes "github.com/vitwit/payverify/types"
)

// Reader is the chain-RPC surface the verifier consumes: confirmation
// waiting and transaction lookup. ethclient-backed and fake implementations
// both satisfy it.
type Reader interface {
	// WaitForReceipt blocks until the transaction is mined or ctx expires.
	WaitForReceipt(ctx context.Context, txHash string) (*pvtypes.Receipt, error)

	// TransactionByHash fetches the full transaction record.
	TransactionByHash(ctx context.Context, txHash string) (*pvtypes.TransactionDetail, error)

	Close()
}
