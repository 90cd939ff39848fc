package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemshare/service-booking/pkg/domain"
)

func TestNewBooking(t *testing.T) {
	bookerID := uuid.New()
	itemID := uuid.New()
	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	bk, err := NewBooking(bookerID, itemID, start, end)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.Equal(t, bookerID, bk.BookerID())
	assert.Equal(t, itemID, bk.ItemID())
	assert.Equal(t, StatusWaiting, bk.Status())
	assert.Equal(t, int64(1), bk.Version())
}

func TestNewBookingValidation(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		bookerID uuid.UUID
		itemID   uuid.UUID
		start    time.Time
		end      time.Time
	}{
		{"missing booker", uuid.Nil, uuid.New(), now, now.Add(time.Hour)},
		{"missing item", uuid.New(), uuid.Nil, now, now.Add(time.Hour)},
		{"start equals end", uuid.New(), uuid.New(), now, now},
		{"start after end", uuid.New(), uuid.New(), now.Add(time.Hour), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(tt.bookerID, tt.itemID, tt.start, tt.end)
			require.Error(t, err)

			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestBookingApproveReject(t *testing.T) {
	newWaiting := func(t *testing.T) *Booking {
		t.Helper()
		start := time.Now().UTC().Add(time.Hour)
		bk, err := NewBooking(uuid.New(), uuid.New(), start, start.Add(time.Hour))
		require.NoError(t, err)
		return bk
	}

	t.Run("approve waiting", func(t *testing.T) {
		bk := newWaiting(t)
		require.NoError(t, bk.Approve())
		assert.Equal(t, StatusApproved, bk.Status())
	})

	t.Run("reject waiting", func(t *testing.T) {
		bk := newWaiting(t)
		require.NoError(t, bk.Reject())
		assert.Equal(t, StatusRejected, bk.Status())
	})

	t.Run("reject after approve leaves state unchanged", func(t *testing.T) {
		bk := newWaiting(t)
		require.NoError(t, bk.Approve())

		err := bk.Reject()
		require.Error(t, err)

		var stateErr *domain.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, string(StatusApproved), stateErr.Current)
		assert.Equal(t, StatusApproved, bk.Status())
	})

	t.Run("double approve fails", func(t *testing.T) {
		bk := newWaiting(t)
		require.NoError(t, bk.Approve())
		assert.Error(t, bk.Approve())
		assert.Equal(t, StatusApproved, bk.Status())
	})
}
