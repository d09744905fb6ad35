package store

import (
	"context"
	"sort"
	"sync"

	"example.com/fleetcontrol/internal/cache"
	"example.com/fleetcontrol/internal/metrics"
	"example.com/fleetcontrol/internal/models"
	"example.com/fleetcontrol/internal/remote"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// EventLogStore owns the checkout and check-in event collections and is the
// sole producer of TripRecord. Because every event mutation can change a
// trip's derived status, each write is followed by a full re-fetch of both
// collections rather than a local patch.
//
// Caller contract: do not create a check-in for a checkout that already has
// one; pick update vs create from the current trip status. The store does
// not guard this precondition because a client-side check cannot prevent a
// concurrent edit from another client winning the race server-side.
type EventLogStore struct {
	client    *remote.Client
	snapshots *cache.SnapshotCache
	metrics   *metrics.Metrics

	mu        sync.Mutex
	checkouts []models.CheckoutEvent
	checkins  []models.CheckInEvent
	trips     []models.TripRecord
	fetchErr  error
}

// NewEventLogStore creates an event log store. The snapshot cache and
// metrics collector are optional.
func NewEventLogStore(client *remote.Client, snapshots *cache.SnapshotCache, m *metrics.Metrics) *EventLogStore {
	return &EventLogStore{
		client:    client,
		snapshots: snapshots,
		metrics:   m,
	}
}

// List returns a copy of the derived trip records, ordered by checkout id
// descending.
func (s *EventLogStore) List() []models.TripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TripRecord, len(s.trips))
	copy(out, s.trips)
	return out
}

// Checkouts returns a copy of the checkout event collection. Edit forms need
// the underlying resource, not the derived view.
func (s *EventLogStore) Checkouts() []models.CheckoutEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CheckoutEvent, len(s.checkouts))
	copy(out, s.checkouts)
	return out
}

// CheckIns returns a copy of the check-in event collection.
func (s *EventLogStore) CheckIns() []models.CheckInEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CheckInEvent, len(s.checkins))
	copy(out, s.checkins)
	return out
}

// FetchError returns the last fetch failure, cleared by the next successful
// Refresh.
func (s *EventLogStore) FetchError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// Refresh fetches both event collections concurrently and re-derives the
// trip records. A failure in either fetch aborts the merge and preserves the
// previous collections; status is always recomputed from scratch, never
// cached apart from its sources.
func (s *EventLogStore) Refresh(ctx context.Context) error {
	var (
		checkouts []models.CheckoutEvent
		checkins  []models.CheckInEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.client.List(gctx, remote.ResourceCheckouts, &checkouts)
	})
	g.Go(func() error {
		return s.client.List(gctx, remote.ResourceCheckIns, &checkins)
	})

	if err := g.Wait(); err != nil {
		s.recordRefresh(err)
		s.mu.Lock()
		s.fetchErr = err
		s.mu.Unlock()
		return err
	}
	s.recordRefresh(nil)

	trips := deriveTrips(checkouts, checkins)

	s.mu.Lock()
	s.checkouts = checkouts
	s.checkins = checkins
	s.trips = trips
	s.fetchErr = nil
	s.mu.Unlock()

	s.saveSnapshots(ctx, checkouts, checkins)
	return nil
}

// Hydrate warm-starts empty collections from the snapshot cache and derives
// trips from them. Best-effort only.
func (s *EventLogStore) Hydrate(ctx context.Context) {
	if !s.snapshots.Enabled() {
		return
	}

	s.mu.Lock()
	empty := len(s.checkouts) == 0 && len(s.checkins) == 0
	s.mu.Unlock()
	if !empty {
		return
	}

	var (
		checkouts []models.CheckoutEvent
		checkins  []models.CheckInEvent
	)
	if err := s.snapshots.Load(ctx, cache.CheckoutsKey(), &checkouts); err != nil {
		log.Debug().Err(err).Msg("No checkout snapshot available for warm start")
		return
	}
	if err := s.snapshots.Load(ctx, cache.CheckInsKey(), &checkins); err != nil {
		log.Debug().Err(err).Msg("No check-in snapshot available for warm start")
		return
	}

	trips := deriveTrips(checkouts, checkins)

	s.mu.Lock()
	if len(s.checkouts) == 0 && len(s.checkins) == 0 {
		s.checkouts = checkouts
		s.checkins = checkins
		s.trips = trips
	}
	s.mu.Unlock()
}

// CreateCheckout opens a new trip.
func (s *EventLogStore) CreateCheckout(ctx context.Context, input models.CheckoutInput) error {
	return s.mutate(ctx, func() error {
		return s.client.Create(ctx, remote.ResourceCheckouts, input)
	})
}

// UpdateCheckout edits an existing checkout event. Re-fetch rather than a
// local patch: reassigning the vehicle or the dates can affect the merged
// view in ways a patch would not capture consistently.
func (s *EventLogStore) UpdateCheckout(ctx context.Context, id int64, input models.CheckoutInput) error {
	return s.mutate(ctx, func() error {
		return s.client.Update(ctx, remote.ResourceCheckouts, id, input)
	})
}

// DeleteCheckout removes a checkout event.
func (s *EventLogStore) DeleteCheckout(ctx context.Context, id int64) error {
	return s.mutate(ctx, func() error {
		return s.client.Delete(ctx, remote.ResourceCheckouts, id)
	})
}

// CreateCheckIn closes a trip.
func (s *EventLogStore) CreateCheckIn(ctx context.Context, input models.CheckInInput) error {
	return s.mutate(ctx, func() error {
		return s.client.Create(ctx, remote.ResourceCheckIns, input)
	})
}

// UpdateCheckIn edits an existing check-in event.
func (s *EventLogStore) UpdateCheckIn(ctx context.Context, id int64, input models.CheckInInput) error {
	return s.mutate(ctx, func() error {
		return s.client.Update(ctx, remote.ResourceCheckIns, id, input)
	})
}

// DeleteCheckIn removes a check-in event, reopening its trip.
func (s *EventLogStore) DeleteCheckIn(ctx context.Context, id int64) error {
	return s.mutate(ctx, func() error {
		return s.client.Delete(ctx, remote.ResourceCheckIns, id)
	})
}

// mutate runs a remote write and re-derives on success. Write failures
// propagate without touching local state.
func (s *EventLogStore) mutate(ctx context.Context, write func() error) error {
	if err := write(); err != nil {
		s.recordWrite(err)
		return err
	}
	s.recordWrite(nil)
	return s.Refresh(ctx)
}

// deriveTrips is the pure reducer over the two source snapshots: one
// TripRecord per checkout, Completed iff a matching check-in exists.
func deriveTrips(checkouts []models.CheckoutEvent, checkins []models.CheckInEvent) []models.TripRecord {
	byCheckout := make(map[int64]models.CheckInEvent, len(checkins))
	for _, in := range checkins {
		byCheckout[in.CheckoutEventID] = in
	}

	trips := make([]models.TripRecord, 0, len(checkouts))
	for _, out := range checkouts {
		trip := models.TripRecord{
			ID:                out.ID,
			DriverName:        out.DriverName,
			VehicleModel:      out.VehicleModel,
			DepartureDate:     out.DepartureDate,
			DepartureTime:     out.DepartureTime,
			DepartureOdometer: out.DepartureOdometer,
			Status:            models.StatusPending,
		}
		if in, ok := byCheckout[out.ID]; ok {
			arrivalDate, arrivalTime := in.ArrivalDate, in.ArrivalTime
			trip.ArrivalDate = &arrivalDate
			trip.ArrivalTime = &arrivalTime
			trip.ArrivalOdometer = in.ArrivalOdometer
			trip.Status = models.StatusCompleted
		}
		trips = append(trips, trip)
	}

	sort.Slice(trips, func(i, j int) bool { return trips[i].ID > trips[j].ID })
	return trips
}

func (s *EventLogStore) saveSnapshots(ctx context.Context, checkouts []models.CheckoutEvent, checkins []models.CheckInEvent) {
	if !s.snapshots.Enabled() {
		return
	}
	if err := s.snapshots.Save(ctx, cache.CheckoutsKey(), checkouts); err != nil {
		log.Warn().Err(err).Msg("Failed to store checkout snapshot")
	}
	if err := s.snapshots.Save(ctx, cache.CheckInsKey(), checkins); err != nil {
		log.Warn().Err(err).Msg("Failed to store check-in snapshot")
	}
}

func (s *EventLogStore) recordRefresh(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(metrics.CounterRefreshes)
	if err != nil {
		s.metrics.IncrementCounter(metrics.CounterRefreshErrors)
	}
	s.metrics.SetHealth(metrics.HealthUpstream, err == nil)
}

func (s *EventLogStore) recordWrite(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(metrics.CounterWrites)
	if err != nil {
		s.metrics.IncrementCounter(metrics.CounterWriteErrors)
	}
}
