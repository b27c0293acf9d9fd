package bridge

import (
	"math/big"

	"github.com/pkg/errors"

	"backend/internal/types"
)

// The payload is a fixed 32-byte big-endian amount followed by the receiver
// address bytes. Amounts above 256 bits do not occur on the ledger.
const amountWidth = 32

var ErrMalformedPayload = errors.New("malformed bridge payload")

func EncodePayload(receiver types.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > amountWidth*8 {
		return nil, ErrMalformedPayload
	}
	if receiver == types.AddressZero {
		return nil, ErrMalformedPayload
	}

	payload := make([]byte, amountWidth, amountWidth+len(receiver))
	amount.FillBytes(payload)
	return append(payload, receiver...), nil
}

func DecodePayload(payload []byte) (types.Address, *big.Int, error) {
	if len(payload) <= amountWidth {
		return types.AddressZero, nil, ErrMalformedPayload
	}

	amount := new(big.Int).SetBytes(payload[:amountWidth])
	receiver := types.Address(payload[amountWidth:])
	return receiver, amount, nil
}
