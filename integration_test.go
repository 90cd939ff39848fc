//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemshare/service-booking/internal/application"
	"github.com/itemshare/service-booking/internal/events"
)

// TestBookingApprovalFlow runs the full lifecycle against real PostgreSQL
// and Kafka: a booker requests an item, the owner approves, and both
// steps leave a row in the database and an event on booking.events.
func TestBookingApprovalFlow(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	ownerID := registerUser(t, stack, "Anna Owner", "anna@example.com")
	bookerID := registerUser(t, stack, "Ben Booker", "ben@example.com")
	itemID := listItem(t, stack, ownerID, "Cordless drill", "18V cordless drill with two batteries")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(48 * time.Hour)

	created, err := stack.Bookings.Create(ctx, bookerID, application.CreateBookingRequest{
		ItemID: itemID,
		Start:  start,
		End:    end,
	})
	require.NoError(t, err)
	assert.Equal(t, "waiting", created.Status)

	model := waitForBookingStatus(t, infra.DB, created.ID, "waiting", 5*time.Second)
	assert.Equal(t, int64(1), model.Version)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingRequested, 15*time.Second)
	var requested events.BookingRequestedEvent
	require.NoError(t, ce.ParseData(&requested))
	assert.Equal(t, created.ID, requested.BookingID)
	assert.Equal(t, itemID, requested.ItemID)
	assert.Equal(t, ownerID, requested.OwnerID)
	assert.Equal(t, bookerID, requested.BookerID)

	approved, err := stack.Bookings.ChangeStatus(ctx, ownerID, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	model = waitForBookingStatus(t, infra.DB, created.ID, "approved", 5*time.Second)
	assert.Equal(t, int64(2), model.Version)

	ce = consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingApproved, 15*time.Second)
	var approvedEvt events.BookingApprovedEvent
	require.NoError(t, ce.ParseData(&approvedEvt))
	assert.Equal(t, created.ID, approvedEvt.BookingID)

	// The approved upcoming booking becomes the item's next booking for its owner.
	itemView, err := stack.Items.GetItem(ctx, ownerID, itemID)
	require.NoError(t, err)
	require.NotNil(t, itemView.NextBooking)
	assert.Equal(t, created.ID, itemView.NextBooking.ID)
	assert.Equal(t, bookerID, itemView.NextBooking.BookerID)
	assert.Nil(t, itemView.LastBooking)

	// A second decision on the same booking is rejected.
	_, err = stack.Bookings.ChangeStatus(ctx, ownerID, created.ID, false)
	require.Error(t, err)

	// The booker's waiting listing is empty again.
	waiting, err := stack.Bookings.ListByBooker(ctx, bookerID, "WAITING", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, waiting.Items)
}
