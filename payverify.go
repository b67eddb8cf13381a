// Package payverify verifies that EVM transactions constitute valid,
// non-duplicate payments to a configured recipient address. It wraps a
// remote node's JSON-RPC interface: wait for confirmation, re-fetch the
// transaction, check the recipient (directly or via decoded call data) and
// delegate duplicate detection to a caller-supplied predicate.
package payverify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/go-playground/validator/v10"
	"github.com/vitwit/payverify/clients"
	"github.com/vitwit/payverify/logger"
	"github.com/vitwit/payverify/metrics"
	pvtypes "github.com/vitwit/payverify/types"
	"github.com/vitwit/payverify/verification"
)

var validate = validator.New()

// PayVerify is the main entry point. Construct one per recipient wallet;
// instances are immutable after New and safe for concurrent use.
type PayVerify struct {
	verifier   *verification.Verifier
	client     clients.Reader
	ownsClient bool

	// set via options before the verifier is built
	log      logger.Logger
	metrics  metrics.Recorder
	timeout  time.Duration
	schema   *abi.ABI
	dupCheck pvtypes.DuplicateCheck
}

// New validates the configuration and builds a verifier. No network calls
// happen here; the RPC connection is only exercised by VerifyPayment.
func New(cfg *pvtypes.Config, opts ...Option) (*PayVerify, error) {
	if cfg == nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrConfigError,
			Message: "configuration is required",
		}
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid recipient wallet %q: %v", cfg.RecipientWallet, err),
		}
	}

	p := &PayVerify{
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: cfg.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.schema == nil && cfg.ABIJson != "" {
		parsed, err := abi.JSON(strings.NewReader(cfg.ABIJson))
		if err != nil {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrConfigError,
				Message: fmt.Sprintf("parse ABI schema: %v", err),
			}
		}
		p.schema = &parsed
	}

	if p.client == nil {
		if cfg.RPCUrl == "" {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrConfigError,
				Message: "either an RPC url or an injected client is required",
			}
		}
		client, err := clients.NewEVMClient(cfg.RPCUrl)
		if err != nil {
			return nil, &pvtypes.VerifierError{
				Code:    pvtypes.ErrConfigError,
				Message: fmt.Sprintf("create chain client: %v", err),
			}
		}
		p.client = client
		p.ownsClient = true
	}

	verifier, err := verification.NewVerifier(verification.Params{
		RecipientWallet: cfg.RecipientWallet,
		Client:          p.client,
		Schema:          p.schema,
		DuplicateCheck:  p.dupCheck,
		Timeout:         p.timeout,
		Logger:          p.log,
		Metrics:         p.metrics,
	})
	if err != nil {
		if p.ownsClient {
			p.client.Close()
		}
		return nil, err
	}
	p.verifier = verifier

	return p, nil
}

// VerifyPayment runs one verification pass for txHash. A zero timeout uses
// the configured default.
func (p *PayVerify) VerifyPayment(ctx context.Context, txHash string, timeout time.Duration) (*pvtypes.VerificationResult, error) {
	return p.verifier.VerifyPayment(ctx, txHash, timeout)
}

// DecodeTxData decodes raw call data against the configured ABI schema.
func (p *PayVerify) DecodeTxData(data []byte) (*pvtypes.DecodedCall, error) {
	return p.verifier.DecodeTxData(data)
}

// Recipient returns the configured recipient wallet in checksum form.
func (p *PayVerify) Recipient() string {
	return p.verifier.Recipient()
}

// Close releases the underlying RPC connection if this instance created it.
// Injected clients are the caller's to close.
func (p *PayVerify) Close() {
	if p.ownsClient {
		p.client.Close()
	}
}

// Version information
const Version = "1.0.0"
