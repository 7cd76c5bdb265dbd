package escrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaymentRejectsNegative(t *testing.T) {
	_, err := NewPayment(-1)
	require.Error(t, err)
}

func TestSplitMovesFunds(t *testing.T) {
	p, err := NewPayment(5000)
	require.NoError(t, err)

	taken, err := p.Split(1200)
	require.NoError(t, err)
	require.EqualValues(t, 1200, taken.Value())
	require.EqualValues(t, 3800, p.Value())
}

func TestSplitBeyondValueFails(t *testing.T) {
	p, err := NewPayment(100)
	require.NoError(t, err)

	_, splitErr := p.Split(101)
	require.Error(t, splitErr)
	require.EqualValues(t, 100, p.Value(), "failed split must not move funds")
}

func TestPutDrainsSource(t *testing.T) {
	a, err := NewPayment(300)
	require.NoError(t, err)
	b, err := NewPayment(200)
	require.NoError(t, err)

	a.Put(b)
	require.EqualValues(t, 500, a.Value())
	require.EqualValues(t, 0, b.Value())
}

func TestUnboundedMinter(t *testing.T) {
	minted, err := UnboundedMinter{}.Mint(context.Background(), 750)
	require.NoError(t, err)
	require.EqualValues(t, 750, minted.Value())
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		1250:  "12.50",
		10000: "100.00",
	}
	for cents, want := range cases {
		require.Equal(t, want, FormatCents(cents))
	}
}
