// Package verification implements the payment verification protocol: wait
// for confirmation, fetch the transaction, check the recipient and delegate
// duplicate detection to the configured predicate.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vitwit/payverify/clients"
	"github.com/vitwit/payverify/logger"
	"github.com/vitwit/payverify/metrics"
	pvtypes "github.com/vitwit/payverify/types"
	"github.com/vitwit/payverify/utils"
)

// DefaultTimeout bounds the confirmation wait when the caller passes none.
const DefaultTimeout = 30 * time.Second

// Params carries everything a Verifier needs. Only RecipientWallet and
// Client are mandatory.
type Params struct {
	RecipientWallet string
	Client          clients.Reader
	Schema          *abi.ABI
	DuplicateCheck  pvtypes.DuplicateCheck
	Timeout         time.Duration
	Logger          logger.Logger
	Metrics         metrics.Recorder
}

// Verifier runs the sequential verification protocol. Configuration is
// fixed at construction; instances are safe for concurrent use.
type Verifier struct {
	recipient common.Address
	client    clients.Reader
	schema    *abi.ABI
	dupCheck  pvtypes.DuplicateCheck
	timeout   time.Duration
	log       logger.Logger
	metrics   metrics.Recorder
}

func NewVerifier(p Params) (*Verifier, error) {
	if err := utils.ValidateAddress(p.RecipientWallet); err != nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid recipient wallet: %v", err),
		}
	}
	if p.Client == nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrConfigError,
			Message: "chain client is required",
		}
	}

	v := &Verifier{
		recipient: common.HexToAddress(p.RecipientWallet),
		client:    p.Client,
		schema:    p.Schema,
		dupCheck:  p.DuplicateCheck,
		timeout:   p.Timeout,
		log:       p.Logger,
		metrics:   p.Metrics,
	}
	if v.timeout <= 0 {
		v.timeout = DefaultTimeout
	}
	if v.log == nil {
		v.log = logger.NoopLogger{}
	}
	if v.metrics == nil {
		v.metrics = metrics.NoopRecorder{}
	}
	return v, nil
}

// Recipient returns the configured recipient address in checksum form.
func (v *Verifier) Recipient() string {
	return v.recipient.Hex()
}

// VerifyPayment runs one pass of the verification protocol for txHash.
// A zero timeout means the verifier's default. Reverted transactions yield
// a Success=false result, not an error; every other failure is a typed
// *types.VerifierError.
func (v *Verifier) VerifyPayment(ctx context.Context, txHash string, timeout time.Duration) (*pvtypes.VerificationResult, error) {
	if timeout <= 0 {
		timeout = v.timeout
	}

	start := time.Now()
	result, err := v.verify(ctx, txHash, timeout)

	outcome := "verified"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Success:
		outcome = "reverted"
	}
	labels := map[string]string{"outcome": outcome}
	v.metrics.IncCounter("verify", labels)
	v.metrics.ObserveLatency("verify", time.Since(start), labels)

	if err != nil {
		v.log.Warn("payment verification failed", map[string]any{
			"txHash": txHash,
			"error":  err.Error(),
		})
		return nil, err
	}

	v.log.Info("payment verified", map[string]any{
		"txHash":  txHash,
		"success": result.Success,
		"amount":  result.TransferAmount.String(),
	})
	return result, nil
}

func (v *Verifier) verify(ctx context.Context, txHash string, timeout time.Duration) (*pvtypes.VerificationResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := v.client.WaitForReceipt(waitCtx, txHash)
	if err != nil {
		// The caller's own context ending is theirs to interpret; only
		// the verifier's deadline maps to the timeout error.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrConfirmationTimeout,
				Message: fmt.Sprintf("confirmation of %s not observed within %s", txHash, timeout),
			}
		}
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrNetworkError,
			Message: fmt.Sprintf("confirmation wait for %s: %v", txHash, err),
		}
	}

	tx, err := v.client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrNetworkError,
			Message: fmt.Sprintf("transaction fetch for %s: %v", txHash, err),
		}
	}

	result := &pvtypes.VerificationResult{
		TransferAmount: utils.FromBaseUnits(tx.Value, pvtypes.NativeDecimals),
		Transaction:    tx,
		Receipt:        receipt,
	}

	switch receipt.Status {
	case pvtypes.ReceiptStatusReverted:
		// A reverted transaction is a normal outcome for the caller.
		return result, nil
	case pvtypes.ReceiptStatusSuccess:
	default:
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrUnknownReceiptStatus,
			Message: fmt.Sprintf("unrecognized receipt status %d for %s", receipt.Status, txHash),
		}
	}

	if !strings.EqualFold(tx.To, v.recipient.Hex()) {
		decoded, ok := v.decodedRecipientMatch(tx.Data)
		if !ok {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrRecipientMismatch,
				Message: fmt.Sprintf("transaction pays %s, expected %s", tx.To, v.recipient.Hex()),
			}
		}
		result.DecodedData = decoded
	}

	if v.dupCheck != nil {
		fresh, err := v.dupCheck(ctx, tx)
		if err != nil {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrDuplicateCheckFailed,
				Message: fmt.Sprintf("duplicate check for %s: %v", txHash, err),
			}
		}
		if !fresh {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrAlreadyPaid,
				Message: fmt.Sprintf("transaction %s already counted as paid", txHash),
			}
		}
	}

	result.Success = true
	return result, nil
}

// decodedRecipientMatch attempts the call-data fallback for proxied or
// token transfers. Decode failure means "no match via decode", never a
// hard failure of the verification pass.
func (v *Verifier) decodedRecipientMatch(data []byte) (*pvtypes.DecodedCall, bool) {
	if v.schema == nil {
		return nil, false
	}

	decoded, err := v.DecodeTxData(data)
	if err != nil {
		v.log.Debug("call data did not decode against schema", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	addr, ok := ExtractRecipient(decoded)
	if !ok {
		return nil, false
	}
	if !strings.EqualFold(addr.Hex(), v.recipient.Hex()) {
		return nil, false
	}
	return decoded, true
}
