package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/itemshare/service-booking/internal/domain/booking"
	itemDomain "github.com/itemshare/service-booking/internal/domain/item"
	userDomain "github.com/itemshare/service-booking/internal/domain/user"
	"github.com/itemshare/service-booking/pkg/domain"
	"github.com/itemshare/service-booking/pkg/kafka"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.users[u.ID()] = u
	return nil
}

// fakeItemRepo is an in-memory ItemRepository.
type fakeItemRepo struct {
	items map[uuid.UUID]*itemDomain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*itemDomain.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return it, nil
}

func (r *fakeItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	var result []*itemDomain.Item
	for _, it := range r.items {
		if it.OwnerID() == ownerID {
			result = append(result, it)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

func (r *fakeItemRepo) Save(_ context.Context, it *itemDomain.Item) error {
	r.items[it.ID()] = it
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, it *itemDomain.Item) error {
	if _, ok := r.items[it.ID()]; !ok {
		return domain.NewNotFoundError("Item", it.ID().String())
	}
	r.items[it.ID()] = it
	return nil
}

// fakeBookingRepo is an in-memory BookingRepository. It records which
// listing query was issued, so tests can assert the single-branch
// dispatch of the search state classifier.
type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	items    *fakeItemRepo

	lastQuery string
	lastPage  int
	lastSize  int
}

func newFakeBookingRepo(items *fakeItemRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		items:    items,
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) ownedBy(ownerID uuid.UUID, bk *bookingDomain.Booking) bool {
	it, ok := r.items.items[bk.ItemID()]
	return ok && it.OwnerID() == ownerID
}

func (r *fakeBookingRepo) query(name string, page, size int, match func(*bookingDomain.Booking) bool) ([]*bookingDomain.Booking, int64, error) {
	r.lastQuery = name
	r.lastPage = page
	r.lastSize = size

	var all []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if match(bk) {
			all = append(all, bk)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Start().After(all[j].Start())
	})

	total := int64(len(all))
	offset := page * size
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeBookingRepo) FindByBooker(_ context.Context, bookerID uuid.UUID, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("booker_all", page, size, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID
	})
}

func (r *fakeBookingRepo) FindByBookerCurrent(_ context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("booker_current", page, size, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID && bk.Start().Before(now) && bk.End().After(now)
	})
}

func (r *fakeBookingRepo) FindByBookerPast(_ context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("booker_past", page, size, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID && bk.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindByBookerFuture(_ context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("booker_future", page, size, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID && bk.Start().After(now)
	})
}

func (r *fakeBookingRepo) FindByBookerAndStatus(_ context.Context, bookerID uuid.UUID, status bookingDomain.Status, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("booker_status_"+string(status), page, size, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID && bk.Status() == status
	})
}

func (r *fakeBookingRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("owner_all", page, size, func(bk *bookingDomain.Booking) bool {
		return r.ownedBy(ownerID, bk)
	})
}

func (r *fakeBookingRepo) FindByOwnerCurrent(_ context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("owner_current", page, size, func(bk *bookingDomain.Booking) bool {
		return r.ownedBy(ownerID, bk) && bk.Start().Before(now) && bk.End().After(now)
	})
}

func (r *fakeBookingRepo) FindByOwnerPast(_ context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("owner_past", page, size, func(bk *bookingDomain.Booking) bool {
		return r.ownedBy(ownerID, bk) && bk.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindByOwnerFuture(_ context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("owner_future", page, size, func(bk *bookingDomain.Booking) bool {
		return r.ownedBy(ownerID, bk) && bk.Start().After(now)
	})
}

func (r *fakeBookingRepo) FindByOwnerAndStatus(_ context.Context, ownerID uuid.UUID, status bookingDomain.Status, page, size int) ([]*bookingDomain.Booking, int64, error) {
	return r.query("owner_status_"+string(status), page, size, func(bk *bookingDomain.Booking) bool {
		return r.ownedBy(ownerID, bk) && bk.Status() == status
	})
}

func (r *fakeBookingRepo) FindLastForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var best *bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ItemID() != itemID || bk.Status() != bookingDomain.StatusApproved || !bk.Start().Before(now) {
			continue
		}
		if best == nil || bk.End().After(best.End()) {
			best = bk
		}
	}
	return best, nil
}

func (r *fakeBookingRepo) FindNextForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var best *bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ItemID() != itemID || bk.Status() != bookingDomain.StatusApproved || !bk.Start().After(now) {
			continue
		}
		if best == nil || bk.Start().Before(best.Start()) {
			best = bk
		}
	}
	return best, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

// capturingPublisher records the event types published during a test.
type capturingPublisher struct {
	events []*kafka.CloudEvent
}

func (p *capturingPublisher) PublishEvent(_ context.Context, _ string, event *kafka.CloudEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
