package amo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReservation(t *testing.T) {
	t.Run("starts free", func(t *testing.T) {
		var r Reservation
		_, ok := r.Reserved()
		require.False(t, ok)
		require.False(t, r.Consume(0), "address zero must not match a free reservation")
	})
	t.Run("reserve and consume", func(t *testing.T) {
		var r Reservation
		r.Reserve(0x1000)
		addr, ok := r.Reserved()
		require.True(t, ok)
		require.Equal(t, U64(0x1000), addr)
		require.True(t, r.Consume(0x1000))
		_, ok = r.Reserved()
		require.False(t, ok, "successful sc frees the reservation")
		require.False(t, r.Consume(0x1000), "reservation is single use")
	})
	t.Run("mismatch invalidates", func(t *testing.T) {
		var r Reservation
		r.Reserve(0x1000)
		require.False(t, r.Consume(0x2000))
		_, ok := r.Reserved()
		require.False(t, ok)
		require.False(t, r.Consume(0x1000))
	})
	t.Run("reserve overwrites", func(t *testing.T) {
		var r Reservation
		r.Reserve(0x1000)
		r.Reserve(0x2000)
		require.False(t, r.Consume(0x1000))
		r.Reserve(0x1000)
		r.Reserve(0x2000)
		require.True(t, r.Consume(0x2000))
	})
	t.Run("zero address", func(t *testing.T) {
		var r Reservation
		r.Reserve(0)
		require.True(t, r.Consume(0))
	})
}
