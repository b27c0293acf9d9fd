package ledger

import (
	"math/big"

	"github.com/pkg/errors"
)

// troyOunceGrams is the exact troy-ounce weight in grams, scaled by 1e7
// (31.1034768 g).
var troyOunceGrams = big.NewInt(311_034_768)

// oracleToUnitScale lifts an 8-decimal oracle answer to the 18-decimal
// minimal-unit scale.
var oracleToUnitScale = big.NewInt(10_000_000_000)

// derivePricePerUnit reads both feeds and derives the price of one whole
// token in 18-decimal fixed point:
//
//	gramPrice = ouncePrice * 1e7 / 311_034_768
//	pricePerUnit = gramPrice * 1e10
//
// The multiplication runs before the division to keep precision. The
// base-currency answer is validated but does not enter the conversion.
func (l *Ledger) derivePricePerUnit() (*big.Int, *big.Int, error) {
	ounce, err := l.assetFeed.LatestAnswer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "ledger: reading asset feed")
	}

	base, err := l.baseFeed.LatestAnswer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "ledger: reading base-currency feed")
	}

	if ounce.Sign() <= 0 || base.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	price := new(big.Int).Mul(ounce, big.NewInt(10_000_000))
	price.Quo(price, troyOunceGrams)
	price.Mul(price, oracleToUnitScale)

	if price.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	return price, base, nil
}

// CurrentPrice returns the derived price of one whole token (18 decimals)
// together with the base-currency oracle answer (8 decimals).
func (l *Ledger) CurrentPrice() (*big.Int, *big.Int, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.derivePricePerUnit()
}
