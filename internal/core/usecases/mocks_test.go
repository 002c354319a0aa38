package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// --- Mock PartnerRepository ---

type mockPartnerRepo struct {
	mu       sync.Mutex
	partners map[string]*domain.Partner
	updates  []string

	upsertBatchFn func(ctx context.Context, partners []domain.Partner) error
	updateFn      func(ctx context.Context, id string, upd domain.LocationUpdate) error
	findWithinFn  func(ctx context.Context, center domain.GeoPoint, b domain.Bounds, limit int) ([]domain.Partner, error)
	listLocatedFn func(ctx context.Context, limit int) ([]domain.Partner, error)
}

func newPartnerRepo(ps ...domain.Partner) *mockPartnerRepo {
	m := &mockPartnerRepo{partners: map[string]*domain.Partner{}}
	for i := range ps {
		p := ps[i]
		m.partners[p.ID] = &p
	}
	return m
}

func (m *mockPartnerRepo) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockPartnerRepo) UpsertBatch(ctx context.Context, partners []domain.Partner) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, partners)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range partners {
		p := partners[i]
		m.partners[p.ID] = &p
	}
	return nil
}

func (m *mockPartnerRepo) UpdateLocation(ctx context.Context, id string, upd domain.LocationUpdate) error {
	if m.updateFn != nil {
		if err := m.updateFn(ctx, id, upd); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Latitude, p.Longitude = upd.Latitude, upd.Longitude
	p.DateLocalization = upd.DateLocalization
	p.Location = upd.Location
	m.updates = append(m.updates, id)
	return nil
}

func (m *mockPartnerRepo) FindWithin(ctx context.Context, center domain.GeoPoint, b domain.Bounds, limit int) ([]domain.Partner, error) {
	if m.findWithinFn != nil {
		return m.findWithinFn(ctx, center, b, limit)
	}
	return nil, nil
}

func (m *mockPartnerRepo) ListLocated(ctx context.Context, limit int) ([]domain.Partner, error) {
	if m.listLocatedFn != nil {
		return m.listLocatedFn(ctx, limit)
	}
	return nil, nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	searchFn func(ctx context.Context, addr domain.Address) ([]domain.GeocodeResult, error)
	calls    []domain.Address
}

func (m *mockGeocoder) Search(ctx context.Context, addr domain.Address) ([]domain.GeocodeResult, error) {
	m.calls = append(m.calls, addr)
	if m.searchFn != nil {
		return m.searchFn(ctx, addr)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	located  []*domain.PartnerLocated
	requests [][]string
}

func (m *mockPublisher) PublishPartnerLocated(ctx context.Context, ev *domain.PartnerLocated) error {
	m.located = append(m.located, ev)
	return nil
}

func (m *mockPublisher) PublishGeolocalizeRequest(ctx context.Context, ids []string) error {
	m.requests = append(m.requests, ids)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock ParameterRepository ---

type mockParams map[string]string

func (m mockParams) Get(ctx context.Context, key string) (string, error) { return m[key], nil }

func (m mockParams) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

// --- Mock LayerRepository ---

type mockLayerRepo struct {
	raster []domain.RasterLayer
	vector map[string]*domain.VectorLayer
}

func (m *mockLayerRepo) ListRaster(ctx context.Context, view string) ([]domain.RasterLayer, error) {
	return m.raster, nil
}

func (m *mockLayerRepo) ListVector(ctx context.Context, view string) ([]domain.VectorLayer, error) {
	var out []domain.VectorLayer
	for _, l := range m.vector {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLayerRepo) GetVector(ctx context.Context, id string) (*domain.VectorLayer, error) {
	l, ok := m.vector[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (m *mockLayerRepo) UpsertRaster(ctx context.Context, l *domain.RasterLayer) error {
	m.raster = append(m.raster, *l)
	return nil
}

func (m *mockLayerRepo) UpsertVector(ctx context.Context, l *domain.VectorLayer) error {
	if m.vector == nil {
		m.vector = map[string]*domain.VectorLayer{}
	}
	m.vector[l.ID] = l
	return nil
}
