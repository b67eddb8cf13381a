package types

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the base-unit scaling of the chain's native currency:
// amounts on the wire are integers of 10^-18 units (wei).
const NativeDecimals = 18

// Config holds the immutable configuration of a payment verifier.
// RecipientWallet must be a 0x-prefixed 40-hex-digit address; construction
// fails otherwise. All other fields are optional.
type Config struct {
	// Address payments must be sent to.
	RecipientWallet string `json:"recipientWallet" validate:"required,eth_addr"`

	// RPC endpoint used to build the default chain client. Ignored when a
	// client is injected via the WithClient option.
	RPCUrl string `json:"rpcUrl,omitempty"`

	// Default confirmation-wait timeout. Zero means the library default.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// Raw ABI JSON used to decode call data for the recipient fallback
	// check. Empty disables decoding.
	ABIJson string `json:"abiJson,omitempty"`
}

// TransactionDetail is the full record of a submitted transaction as
// reported by the node.
type TransactionDetail struct {
	Hash  string   `json:"hash"`
	From  string   `json:"from"`
	To    string   `json:"to"` // empty for contract creation
	Value *big.Int `json:"value"`
	Nonce uint64   `json:"nonce"`
	Data  []byte   `json:"data,omitempty"`
}

// Receipt is the node-reported outcome of a mined transaction.
type Receipt struct {
	TxHash      string   `json:"transactionHash"`
	Status      uint64   `json:"status"` // 0 reverted, 1 success
	BlockNumber *big.Int `json:"blockNumber,omitempty"`
	GasUsed     uint64   `json:"gasUsed,omitempty"`
}

// Receipt status values reported by EVM nodes.
const (
	ReceiptStatusReverted uint64 = 0
	ReceiptStatusSuccess  uint64 = 1
)

// DecodedCall is the result of decoding call data against an ABI schema:
// the selected method and its arguments keyed by parameter name.
type DecodedCall struct {
	Method string                 `json:"method"`
	Args   map[string]interface{} `json:"args"`
}

// VerificationResult is produced once per VerifyPayment call.
//
// Success is false only for a reverted transaction; every other non-success
// outcome surfaces as a typed error instead.
type VerificationResult struct {
	Success        bool               `json:"success"`
	TransferAmount decimal.Decimal    `json:"transferAmount"`
	Transaction    *TransactionDetail `json:"transaction"`
	Receipt        *Receipt           `json:"receipt"`
	DecodedData    *DecodedCall       `json:"decodedData,omitempty"`
}

// DuplicateCheck reports whether a confirmed payment is new. Returning
// false rejects the transaction as already processed. Implementations own
// any synchronization or external storage they need.
type DuplicateCheck func(ctx context.Context, tx *TransactionDetail) (bool, error)
