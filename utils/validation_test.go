package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "valid lowercase", address: "0xabcdef0123456789abcdef0123456789abcdef01"},
		{name: "valid mixed case", address: "0xAbCdEF0123456789abCdef0123456789AbCdEf01"},
		{name: "empty", address: "", wantErr: true},
		{name: "missing prefix", address: "abcdef0123456789abcdef0123456789abcdef01", wantErr: true},
		{name: "too short", address: "0xabcdef", wantErr: true},
		{name: "too long", address: "0xabcdef0123456789abcdef0123456789abcdef0123", wantErr: true},
		{name: "non-hex", address: "0xghijkl0123456789abcdef0123456789abcdef01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTxHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{name: "valid", hash: "0x2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66"},
		{name: "empty", hash: "", wantErr: true},
		{name: "missing prefix", hash: "2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66", wantErr: true},
		{name: "wrong length", hash: "0x2e8818a233e2e802", wantErr: true},
		{name: "non-hex", hash: "0xzz8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTxHash(tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
