package ethunit_test

import (
	"math/big"
	"testing"

	"engagelayer/pkg/ethunit"

	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"0":       "0",
		"1":       "1000000000000000000",
		"0.001":   "1000000000000000",
		"0.02":    "20000000000000000",
		"2.5":     "2500000000000000000",
		".5":      "500000000000000000",
		" 1.0 ":   "1000000000000000000",
		"0.000000000000000001": "1",
	}

	for in, want := range cases {
		got, err := ethunit.ParseEther(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.String(), in)
	}
}

func TestParseEtherSpendingCap(t *testing.T) {
	t.Parallel()

	// The protocol's default daily cap, 0.02 ETH.
	got, err := ethunit.ParseEther("0.02")
	require.NoError(t, err)

	want, ok := new(big.Int).SetString("470de4df820000", 16)
	require.True(t, ok)
	require.Zero(t, got.Cmp(want))
}

func TestParseEtherRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"", "-1", "1.2.3", "abc", "1.0000000000000000001", "0x10",
	} {
		_, err := ethunit.ParseEther(in)
		require.ErrorIs(t, err, ethunit.ErrInvalidAmount, in)
	}
}

func TestFormatEther(t *testing.T) {
	t.Parallel()

	wei, err := ethunit.ParseEther("0.001")
	require.NoError(t, err)
	require.Equal(t, "0.001", ethunit.FormatEther(wei))

	require.Equal(t, "0", ethunit.FormatEther(nil))
	require.Equal(t, "1", ethunit.FormatEther(big.NewInt(1e18)))
	require.Equal(t, "-0.5", ethunit.FormatEther(big.NewInt(-5e17)))
}
