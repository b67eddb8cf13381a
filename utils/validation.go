package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var hexRe = regexp.MustCompile("^[0-9a-fA-F]+$")

// ValidateAddress checks the EVM address format: 0x followed by 40 hex
// digits, case-insensitive.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("address must start with 0x")
	}
	if len(address) != 42 {
		return fmt.Errorf("address must be 42 characters long")
	}
	if !hexRe.MatchString(address[2:]) {
		return fmt.Errorf("address must be valid hex")
	}
	return nil
}

// ValidateTxHash checks the EVM transaction hash format: 0x followed by
// 64 hex digits.
func ValidateTxHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}
	if !strings.HasPrefix(hash, "0x") {
		return fmt.Errorf("transaction hash must start with 0x")
	}
	if len(hash) != 66 {
		return fmt.Errorf("transaction hash must be 66 characters long")
	}
	if !hexRe.MatchString(hash[2:]) {
		return fmt.Errorf("transaction hash must be valid hex")
	}
	return nil
}
