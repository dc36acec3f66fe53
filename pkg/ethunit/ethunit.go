// Package ethunit converts between decimal ether text and integer wei.
// Monetary values cross the boundary exactly once, here, and live as
// *big.Int afterwards. Floats are never involved.
package ethunit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Decimals of the native unit.
const Decimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ParseEther converts decimal ether text ("0.001", "2") into wei. More than
// 18 fractional digits is an error, not a rounding.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: negative: %s", ErrInvalidAmount, s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("%w: more than %d fractional digits: %s", ErrInvalidAmount, Decimals, s)
	}

	wi, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	wi.Mul(wi, weiPerEther)

	if frac != "" {
		// Right-pad to 18 digits: "001" -> 001000000000000000 wei.
		fi, ok := new(big.Int).SetString(frac+strings.Repeat("0", Decimals-len(frac)), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		wi.Add(wi, fi)
	}

	return wi, nil
}

// FormatEther renders wei as decimal ether text with trailing zeros trimmed.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Abs(wei)
	if wei.Sign() < 0 {
		sign = "-"
	}

	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	digits := strings.TrimRight(fmt.Sprintf("%018s", frac.String()), "0")
	return sign + whole.String() + "." + digits
}
