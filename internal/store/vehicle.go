// Package store owns the client-side collections and reconciles them with
// the upstream fleet API. Each store is the sole mutator of its collection;
// readers always get copied snapshots, never live internals.
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
)

// VehicleStore owns the in-memory vehicle collection. All remote-write
// failures propagate to the caller and never leave the cache in a state
// inconsistent with the last known-good server response.
type VehicleStore struct {
	client    *remote.Client
	snapshots *cache.SnapshotCache
	metrics   *metrics.Metrics

	mu       sync.Mutex
	vehicles []models.Vehicle
	fetchErr error
}

// NewVehicleStore creates a vehicle store. The snapshot cache and metrics
// collector are optional.
func NewVehicleStore(client *remote.Client, snapshots *cache.SnapshotCache, m *metrics.Metrics) *VehicleStore {
	return &VehicleStore{
		client:    client,
		snapshots: snapshots,
		metrics:   m,
	}
}

// List returns a copy of the cached collection, ordered id-descending.
func (s *VehicleStore) List() []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// FetchError returns the last fetch failure. It stays set until the next
// successful Refresh so the view layer can show a persistent error state.
func (s *VehicleStore) FetchError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// Refresh replaces the cached collection with the server's. On failure the
// last known-good collection is kept and the error is recorded and returned.
func (s *VehicleStore) Refresh(ctx context.Context) error {
	var fetched []models.Vehicle
	if err := s.client.List(ctx, remote.ResourceVehicles, &fetched); err != nil {
		s.recordRefresh(err)
		s.mu.Lock()
		s.fetchErr = err
		s.mu.Unlock()
		return err
	}
	s.recordRefresh(nil)

	sort.Slice(fetched, func(i, j int) bool { return fetched[i].ID > fetched[j].ID })

	s.mu.Lock()
	s.vehicles = fetched
	s.fetchErr = nil
	s.mu.Unlock()

	s.saveSnapshot(ctx, fetched)
	return nil
}

// Hydrate warm-starts an empty collection from the snapshot cache. It is
// best-effort: any failure just means the first Refresh starts cold.
func (s *VehicleStore) Hydrate(ctx context.Context) {
	if !s.snapshots.Enabled() {
		return
	}

	s.mu.Lock()
	empty := len(s.vehicles) == 0
	s.mu.Unlock()
	if !empty {
		return
	}

	var stored []models.Vehicle
	if err := s.snapshots.Load(ctx, cache.VehiclesKey(), &stored); err != nil {
		log.Debug().Err(err).Msg("No vehicle snapshot available for warm start")
		return
	}

	s.mu.Lock()
	if len(s.vehicles) == 0 {
		s.vehicles = stored
	}
	s.mu.Unlock()
}

// Create submits a new vehicle, then re-fetches the collection to pick up
// the server-assigned id and timestamps. A failed write leaves local state
// untouched.
func (s *VehicleStore) Create(ctx context.Context, input models.VehicleInput) error {
	if err := s.client.Create(ctx, remote.ResourceVehicles, input); err != nil {
		s.recordWrite(err)
		return err
	}
	s.recordWrite(nil)
	return s.Refresh(ctx)
}

// Update submits a partial update, then patches the cached record in place.
// The local patch skips a re-fetch for the common attribute-only case; the
// cached record may briefly diverge from server truth if the server derives
// changes not present in the patch.
func (s *VehicleStore) Update(ctx context.Context, id int64, patch models.VehiclePatch) error {
	if err := s.client.Update(ctx, remote.ResourceVehicles, id, patch); err != nil {
		s.recordWrite(err)
		return err
	}
	s.recordWrite(nil)

	s.mu.Lock()
	for i := range s.vehicles {
		if s.vehicles[i].ID == id {
			patch.Apply(&s.vehicles[i])
			break
		}
	}
	snapshot := make([]models.Vehicle, len(s.vehicles))
	copy(snapshot, s.vehicles)
	s.mu.Unlock()

	s.saveSnapshot(ctx, snapshot)
	return nil
}

// ToggleStatus enables or disables one vehicle. Exposed separately from
// Update because the view triggers it by direct interaction rather than by
// form submission.
func (s *VehicleStore) ToggleStatus(ctx context.Context, id int64, enabled bool) error {
	return s.Update(ctx, id, models.VehiclePatch{Enabled: &enabled})
}

// Delete removes a vehicle remotely, drops it from the cache immediately and
// then re-fetches; the immediate removal could race with a concurrent list
// refresh, so the second reconciliation settles the collection.
func (s *VehicleStore) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, remote.ResourceVehicles, id); err != nil {
		s.recordWrite(err)
		return err
	}
	s.recordWrite(nil)

	s.mu.Lock()
	kept := s.vehicles[:0]
	for _, v := range s.vehicles {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	s.vehicles = kept
	s.mu.Unlock()

	return s.Refresh(ctx)
}

func (s *VehicleStore) saveSnapshot(ctx context.Context, vehicles []models.Vehicle) {
	if !s.snapshots.Enabled() {
		return
	}
	if err := s.snapshots.Save(ctx, cache.VehiclesKey(), vehicles); err != nil {
		log.Warn().Err(err).Msg("Failed to store vehicle snapshot")
	}
}

func (s *VehicleStore) recordRefresh(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(metrics.CounterRefreshes)
	if err != nil {
		s.metrics.IncrementCounter(metrics.CounterRefreshErrors)
	}
	s.metrics.SetHealth(metrics.HealthUpstream, err == nil)
}

func (s *VehicleStore) recordWrite(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(metrics.CounterWrites)
	if err != nil {
		s.metrics.IncrementCounter(metrics.CounterWriteErrors)
	}
}
