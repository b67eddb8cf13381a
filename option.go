package payverify

import (
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/vitwit/payverify/clients"
	"github.com/vitwit/payverify/logger"
	"github.com/vitwit/payverify/metrics"
	pvtypes "github.com/vitwit/payverify/types"
)

type Option func(*PayVerify)

func WithLogger(l logger.Logger) Option {
	return func(p *PayVerify) {
		p.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *PayVerify) {
		p.metrics = r
	}
}

// WithTimeout sets the default confirmation-wait timeout.
func WithTimeout(t time.Duration) Option {
	return func(p *PayVerify) {
		p.timeout = t
	}
}

// WithClient injects a chain client, replacing the default ethclient-backed
// one. The caller keeps ownership and must close it.
func WithClient(c clients.Reader) Option {
	return func(p *PayVerify) {
		p.client = c
	}
}

// WithABI sets a parsed ABI schema, taking precedence over Config.ABIJson.
func WithABI(schema *abi.ABI) Option {
	return func(p *PayVerify) {
		p.schema = schema
	}
}

// WithDuplicateCheck installs the predicate consulted for every confirmed
// payment; see the idempotency package for ready-made implementations.
func WithDuplicateCheck(fn pvtypes.DuplicateCheck) Option {
	return func(p *PayVerify) {
		p.dupCheck = fn
	}
}
