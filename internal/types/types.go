package types

import (
	"fmt"
	"math/big"
)

// Address identifies an account on the ledger. Addresses are opaque strings,
// the backend never interprets them beyond equality.
type Address string

// ChainID identifies a chain the bridge can talk to.
type ChainID uint64

const AddressZero Address = ""

// Unit returns one whole token in minimal units (1e18).
func Unit() *big.Int {
	u := big.NewInt(10)
	return u.Exp(u, big.NewInt(18), nil)
}

// WholeToMinimal converts whole tokens to minimal units (multiplies by 1e18).
func WholeToMinimal(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), Unit())
}

// OracleScale returns the scale of an oracle answer (1e8).
func OracleScale() *big.Int {
	s := big.NewInt(10)
	return s.Exp(s, big.NewInt(8), nil)
}

// StringToBigInt converts string to BigInt, panics on empty strings and errors
func StringToBigInt(s string) *big.Int {
	if s == "" {
		panic("string is empty")
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		panic(fmt.Sprintf("cannot decode %s into big.Int", s))
	}

	return b
}

// ParseAmount decodes a non-negative decimal amount. Used on the storage
// boundary where panicking on corrupt rows is not acceptable.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return nil, fmt.Errorf("cannot decode %q into big.Int", s)
	}

	if b.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}

	return b, nil
}
