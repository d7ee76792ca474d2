package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelBorja/TechTix/app/repository"
)

// fakeEventInventory implements only the capacity methods; everything else
// panics through the embedded nil interface if touched.
type fakeEventInventory struct {
	repository.EventRepository
	sold      int
	capacity  int
	claimErr  error
	increment int
	decrement int
}

func (f *fakeEventInventory) IncrementTicketsSold(id uint, quantity int) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.sold+quantity > f.capacity {
		return false, nil
	}
	f.sold += quantity
	f.increment++
	return true, nil
}

func (f *fakeEventInventory) DecrementTicketsSold(id uint, quantity int) error {
	f.sold -= quantity
	f.decrement++
	return nil
}

type fakePromoInventory struct {
	repository.PromoCodeRepository
	used       int
	maxUses    int
	increments int
	decrements int
}

func (f *fakePromoInventory) IncrementUsage(id uint) (bool, error) {
	if f.maxUses > 0 && f.used >= f.maxUses {
		return false, nil
	}
	f.used++
	f.increments++
	return true, nil
}

func (f *fakePromoInventory) DecrementUsage(id uint) error {
	f.used--
	f.decrements++
	return nil
}

func uintPtr(v uint) *uint { return &v }

func TestClaimBookingInventory(t *testing.T) {
	t.Run("claims capacity and promo use", func(t *testing.T) {
		events := &fakeEventInventory{capacity: 10}
		promos := &fakePromoInventory{maxUses: 5}

		err := claimBookingInventory(events, promos, 1, 2, uintPtr(7))
		require.NoError(t, err)
		assert.Equal(t, 2, events.sold)
		assert.Equal(t, 1, promos.used)
	})

	t.Run("sold out claims nothing", func(t *testing.T) {
		events := &fakeEventInventory{capacity: 1}
		promos := &fakePromoInventory{maxUses: 5}

		err := claimBookingInventory(events, promos, 1, 2, uintPtr(7))
		require.ErrorIs(t, err, errSoldOut)
		assert.Equal(t, 0, events.sold)
		assert.Equal(t, 0, promos.used, "promo use must not be consumed on sold-out")
	})

	t.Run("exhausted promo releases the capacity claim", func(t *testing.T) {
		events := &fakeEventInventory{capacity: 10}
		promos := &fakePromoInventory{maxUses: 1, used: 1}

		err := claimBookingInventory(events, promos, 1, 2, uintPtr(7))
		require.ErrorIs(t, err, errPromoExhausted)
		assert.Equal(t, 0, events.sold, "capacity must be returned when the promo claim fails")
		assert.Equal(t, 1, events.decrement)
	})

	t.Run("no promo skips promo claim", func(t *testing.T) {
		events := &fakeEventInventory{capacity: 10}
		promos := &fakePromoInventory{}

		err := claimBookingInventory(events, promos, 1, 3, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, events.sold)
		assert.Equal(t, 0, promos.increments)
	})

	t.Run("claim error surfaces", func(t *testing.T) {
		events := &fakeEventInventory{claimErr: errors.New("db down")}
		promos := &fakePromoInventory{}

		err := claimBookingInventory(events, promos, 1, 1, uintPtr(7))
		require.Error(t, err)
		assert.Equal(t, 0, promos.increments)
	})
}

func TestReleaseBookingInventory(t *testing.T) {
	events := &fakeEventInventory{capacity: 10, sold: 3}
	promos := &fakePromoInventory{used: 1}

	releaseBookingInventory(events, promos, 1, 3, uintPtr(7))
	assert.Equal(t, 0, events.sold)
	assert.Equal(t, 0, promos.used)

	// Without a promo only the capacity goes back.
	events = &fakeEventInventory{capacity: 10, sold: 2}
	promos = &fakePromoInventory{used: 1}
	releaseBookingInventory(events, promos, 1, 2, nil)
	assert.Equal(t, 0, events.sold)
	assert.Equal(t, 1, promos.used)
}
