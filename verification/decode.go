package verification

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	pvtypes "github.com/vitwit/payverify/types"
)

// recipientArgNames are the parameter names checked, in order, when looking
// for a recipient-like address in decoded call data.
var recipientArgNames = []string{"to", "recipient", "_to", "dst", "receiver"}

// DecodeTxData decodes the 4-byte function selector and arguments of raw
// call data against the configured ABI schema.
func (v *Verifier) DecodeTxData(data []byte) (*pvtypes.DecodedCall, error) {
	if v.schema == nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrConfigError,
			Message: "no ABI schema configured",
		}
	}
	if len(data) < 4 {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrDecodeFailed,
			Message: fmt.Sprintf("call data too short: %d bytes", len(data)),
		}
	}

	method, err := v.schema.MethodById(data[:4])
	if err != nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrDecodeFailed,
			Message: fmt.Sprintf("no schema entry for selector 0x%x", data[:4]),
		}
	}

	args := make(map[string]interface{})
	if err := method.Inputs.UnpackIntoMap(args, data[4:]); err != nil {
		return nil, &pvtypes.VerifierError{
			Code:    pvtypes.ErrDecodeFailed,
			Message: fmt.Sprintf("unpack %s arguments: %v", method.Name, err),
		}
	}

	return &pvtypes.DecodedCall{
		Method: method.Name,
		Args:   args,
	}, nil
}

// ExtractRecipient pulls an address-typed recipient argument out of a
// decoded call, if the schema exposes one under a known parameter name.
func ExtractRecipient(call *pvtypes.DecodedCall) (common.Address, bool) {
	if call == nil {
		return common.Address{}, false
	}
	for _, name := range recipientArgNames {
		raw, ok := call.Args[name]
		if !ok {
			continue
		}
		if addr, ok := raw.(common.Address); ok {
			return addr, true
		}
	}
	return common.Address{}, false
}
