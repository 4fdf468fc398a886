package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"skycast/config"
	"skycast/internal/domain/apperr"
	"skycast/internal/domain/entity"
	"skycast/internal/domain/repository"
	"skycast/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakePlaceRepo struct {
	mu     sync.Mutex
	places map[uuid.UUID]*entity.Place
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{places: make(map[uuid.UUID]*entity.Place)}
}

func (r *fakePlaceRepo) CreatePlace(_ context.Context, place *entity.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *place
	clone.POIs = append([]*entity.PointOfInterest(nil), place.POIs...)
	r.places[place.ID] = &clone

	return nil
}

func (r *fakePlaceRepo) AppendPOIs(_ context.Context, placeID uuid.UUID, pois []*entity.PointOfInterest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	place, ok := r.places[placeID]
	if !ok {
		return repository.ErrPlaceNotFound
	}
	place.POIs = append(place.POIs, pois...)

	return nil
}

func (r *fakePlaceRepo) UpdateLastUsed(_ context.Context, placeID uuid.UUID, lastUsedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	place, ok := r.places[placeID]
	if !ok {
		return repository.ErrPlaceNotFound
	}
	place.LastUsedAt = lastUsedAt

	return nil
}

func (r *fakePlaceRepo) DeletePlace(_ context.Context, placeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.places[placeID]; !ok {
		return repository.ErrPlaceNotFound
	}
	delete(r.places, placeID)

	return nil
}

func (r *fakePlaceRepo) FindAllByRecency(_ context.Context) ([]*entity.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Place, 0, len(r.places))
	for _, p := range r.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUsedAt.After(out[j].LastUsedAt)
	})

	return out, nil
}

func (r *fakePlaceRepo) CountPlaces(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.places)), nil
}

func (r *fakePlaceRepo) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.places))
	for _, p := range r.places {
		out = append(out, p.Name)
	}
	sort.Strings(out)

	return out
}

type fakeSnapshotStore struct {
	mu     sync.Mutex
	data   []entity.PlaceSnapshot
	writes int
}

func (s *fakeSnapshotStore) Read(_ context.Context) ([]entity.PlaceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.PlaceSnapshot(nil), s.data...), nil
}

func (s *fakeSnapshotStore) Write(_ context.Context, places []entity.PlaceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]entity.PlaceSnapshot(nil), places...)
	s.writes++

	return nil
}

func (s *fakeSnapshotStore) snapshotNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.data))
	for _, snap := range s.data {
		out = append(out, snap.Name)
	}

	return out
}

type fakeWeather struct {
	calls int
	fetch func(lat, lon float64) (*entity.WeatherReport, error)
}

func (w *fakeWeather) Fetch(_ context.Context, lat, lon float64) (*entity.WeatherReport, error) {
	w.calls++
	if w.fetch != nil {
		return w.fetch(lat, lon)
	}

	return &entity.WeatherReport{
		Current: entity.CurrentConditions{Temperature: 18.5, Summary: "clear sky"},
		Forecast: []entity.DailyForecast{
			{MinTemp: 12, MaxTemp: 21, Summary: "clear sky"},
		},
	}, nil
}

type fakeGeocoder struct {
	calls   int
	resolve func(query string) (*service.ResolvedLocation, error)
}

func (g *fakeGeocoder) Resolve(_ context.Context, query string) (*service.ResolvedLocation, error) {
	g.calls++
	if g.resolve != nil {
		return g.resolve(query)
	}

	return nil, apperr.GeocodingFailed(query, nil)
}

type fakePOI struct {
	calls    int
	discover func(lat, lon float64, limit int) ([]*entity.PointOfInterest, error)
}

func (p *fakePOI) Discover(_ context.Context, lat, lon float64, limit int) ([]*entity.PointOfInterest, error) {
	p.calls++
	if p.discover != nil {
		return p.discover(lat, lon, limit)
	}

	return []*entity.PointOfInterest{
		{ID: uuid.New(), Name: "Old Town Square", Latitude: lat, Longitude: lon},
	}, nil
}

type testDeps struct {
	repo     *fakePlaceRepo
	snaps    *fakeSnapshotStore
	weather  *fakeWeather
	geocoder *fakeGeocoder
	pois     *fakePOI
}

func newTestService(t *testing.T) (*dashboardService, *testDeps) {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	deps := &testDeps{
		repo:     newFakePlaceRepo(),
		snaps:    &fakeSnapshotStore{},
		weather:  &fakeWeather{},
		geocoder: &fakeGeocoder{},
		pois:     &fakePOI{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := newDashboardService(cfg, logger, deps.repo, deps.snaps, deps.weather, deps.geocoder, deps.pois)

	return svc, deps
}

func geocoderFromTable(table map[string]service.ResolvedLocation) func(string) (*service.ResolvedLocation, error) {
	return func(query string) (*service.ResolvedLocation, error) {
		if loc, ok := table[query]; ok {
			return &loc, nil
		}

		return nil, apperr.GeocodingFailed(query, nil)
	}
}

// --- Tests ---

func TestSubmitQuery_LoadsResolvedPlace(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	})

	svc.SubmitQuery(context.Background(), "paris")

	state := svc.State()
	assert.Equal(t, "Paris", state.ActivePlace)
	assert.Equal(t, "", state.Query)
	assert.False(t, state.Loading)
	require.NotNil(t, state.Current)
	assert.InDelta(t, 18.5, state.Current.Temperature, 0.001)
	require.Len(t, state.POIs, 1)
	assert.InDelta(t, 48.8566, state.Region.CenterLatitude, 0.0001)

	require.NotNil(t, state.Notice)
	assert.True(t, state.Notice.Info)

	assert.Equal(t, []string{"Paris"}, deps.repo.names())
	assert.Equal(t, []string{"Paris"}, deps.snaps.snapshotNames())
}

func TestSubmitQuery_RecencyOrdering(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		"oslo":  {Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522},
	})
	ctx := context.Background()

	svc.SubmitQuery(ctx, "paris")
	svc.SubmitQuery(ctx, "oslo")
	svc.SubmitQuery(ctx, "paris")

	visited := svc.VisitedPlaces()
	require.Len(t, visited, 2)
	assert.Equal(t, "Paris", visited[0].Name)
	assert.Equal(t, "Oslo", visited[1].Name)
	assert.Equal(t, []string{"Oslo", "Paris"}, deps.repo.names())
}

func TestSubmitQuery_CaseInsensitiveHitSkipsGeocoding(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"Paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	})
	ctx := context.Background()

	svc.SubmitQuery(ctx, "Paris")
	require.Equal(t, 1, deps.geocoder.calls)

	svc.SubmitQuery(ctx, "PARIS")

	assert.Equal(t, 1, deps.geocoder.calls, "cache hit must not geocode again")
	assert.Len(t, svc.VisitedPlaces(), 1, "case variant must not create a duplicate")
	assert.Equal(t, 2, deps.weather.calls, "weather is always re-fetched")
	assert.Equal(t, 1, deps.pois.calls, "existing POIs are reused")
}

func TestSubmitQuery_GeocodingFailureFallsBackToDefault(t *testing.T) {
	svc, deps := newTestService(t)

	svc.SubmitQuery(context.Background(), "Qwxyzzz123")

	state := svc.State()
	assert.Equal(t, "London", state.ActivePlace, "default location must be loaded")
	require.NotNil(t, state.Notice)
	assert.Equal(t, apperr.KindGeocodingFailed.String(), state.Notice.Kind)
	assert.False(t, state.Notice.Info)
	assert.Equal(t, []string{"London"}, deps.repo.names())
}

func TestSubmitQuery_WeatherFailureFallsBackAndPersistsNothing(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	})
	deps.weather.fetch = func(lat, _ float64) (*entity.WeatherReport, error) {
		if lat > 48 && lat < 49 {
			return nil, apperr.InvalidResponse(503)
		}

		return &entity.WeatherReport{Current: entity.CurrentConditions{Summary: "clear sky"}}, nil
	}

	svc.SubmitQuery(context.Background(), "paris")

	state := svc.State()
	assert.Equal(t, "London", state.ActivePlace)
	require.NotNil(t, state.Notice)
	assert.Equal(t, apperr.KindInvalidResponse.String(), state.Notice.Kind)
	assert.Equal(t, []string{"London"}, deps.repo.names(), "failed load must not persist the place")
}

func TestSubmitQuery_BlankPublishesInfoAndLoadsDefault(t *testing.T) {
	svc, _ := newTestService(t)

	svc.SubmitQuery(context.Background(), "   ")

	state := svc.State()
	assert.Equal(t, "London", state.ActivePlace)
	assert.Equal(t, "", state.Query)
	require.NotNil(t, state.Notice)
	assert.True(t, state.Notice.Info)
	assert.Equal(t, apperr.KindInfo.String(), state.Notice.Kind)
}

func TestLoadDefault_ReusesExistingPlace(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	svc.LoadDefault(ctx)
	require.Equal(t, []string{"London"}, deps.repo.names())
	require.Equal(t, 1, deps.pois.calls)

	svc.LoadDefault(ctx)

	assert.Len(t, svc.VisitedPlaces(), 1)
	assert.Equal(t, 1, deps.pois.calls, "reload reuses persisted POIs")
	assert.Equal(t, 2, deps.weather.calls)
	assert.Equal(t, 0, deps.geocoder.calls, "default location never geocodes")
}

func TestLoadPlace_FailureDoesNotFallBack(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	})
	ctx := context.Background()

	svc.SubmitQuery(ctx, "paris")
	placeID := svc.VisitedPlaces()[0].ID

	deps.weather.fetch = func(_, _ float64) (*entity.WeatherReport, error) {
		return nil, apperr.Network(assert.AnError)
	}

	require.NoError(t, svc.LoadPlace(ctx, placeID))

	state := svc.State()
	require.NotNil(t, state.Notice)
	assert.Equal(t, apperr.KindNetwork.String(), state.Notice.Kind)
	assert.Equal(t, "Paris", state.ActivePlace, "published place is unchanged")
	assert.False(t, state.Loading)
	assert.NotContains(t, deps.repo.names(), "London", "reload failure must not trigger the default fallback")
}

func TestLoadPlace_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.LoadPlace(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrPlaceNotFound)
}

func TestLoadPlace_DiscoversPOIsWhenEmpty(t *testing.T) {
	svc, deps := newTestService(t)
	deps.pois.discover = func(_, _ float64, _ int) ([]*entity.PointOfInterest, error) {
		return nil, nil
	}
	ctx := context.Background()

	svc.LoadDefault(ctx)
	require.Empty(t, svc.State().POIs)
	placeID := svc.VisitedPlaces()[0].ID

	deps.pois.discover = func(lat, lon float64, _ int) ([]*entity.PointOfInterest, error) {
		return []*entity.PointOfInterest{{ID: uuid.New(), Name: "Tower Bridge", Latitude: lat, Longitude: lon}}, nil
	}

	require.NoError(t, svc.LoadPlace(ctx, placeID))

	state := svc.State()
	require.Len(t, state.POIs, 1)
	assert.Equal(t, "Tower Bridge", state.POIs[0].Name)
	assert.Equal(t, 2, deps.pois.calls)
}

func TestDeletePlace_RemovesFromBothStores(t *testing.T) {
	svc, deps := newTestService(t)
	deps.geocoder.resolve = geocoderFromTable(map[string]service.ResolvedLocation{
		"paris": {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		"oslo":  {Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522},
	})
	ctx := context.Background()

	svc.SubmitQuery(ctx, "paris")
	svc.SubmitQuery(ctx, "oslo")
	parisID := svc.VisitedPlaces()[1].ID

	require.NoError(t, svc.DeletePlace(ctx, parisID))

	assert.Equal(t, []string{"Oslo"}, deps.repo.names())
	assert.Equal(t, []string{"Oslo"}, deps.snaps.snapshotNames())
	visited := svc.VisitedPlaces()
	require.Len(t, visited, 1)
	assert.Equal(t, "Oslo", visited[0].Name)
}

func TestDeletePlace_Unknown(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeletePlace(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrPlaceNotFound)
}

func TestBootstrap_SeedsFromSnapshotWhenStoreEmpty(t *testing.T) {
	svc, deps := newTestService(t)
	deps.snaps.data = []entity.PlaceSnapshot{
		{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	}

	require.NoError(t, svc.Bootstrap(context.Background()))

	visited := svc.VisitedPlaces()
	require.Len(t, visited, 1)
	assert.Equal(t, "Paris", visited[0].Name)
	assert.Zero(t, visited[0].POICount)
	assert.Equal(t, []string{"Paris"}, deps.repo.names())
}

func TestBootstrap_SnapshotOrderIsPreserved(t *testing.T) {
	svc, deps := newTestService(t)
	deps.snaps.data = []entity.PlaceSnapshot{
		{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		{Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522},
		{Name: "Lisbon", Latitude: 38.7223, Longitude: -9.1393},
	}

	require.NoError(t, svc.Bootstrap(context.Background()))

	visited := svc.VisitedPlaces()
	require.Len(t, visited, 3)
	assert.Equal(t, "Paris", visited[0].Name)
	assert.Equal(t, "Oslo", visited[1].Name)
	assert.Equal(t, "Lisbon", visited[2].Name)
}

func TestBootstrap_IgnoresSnapshotWhenStorePopulated(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	svc.LoadDefault(ctx)
	deps.snaps.data = []entity.PlaceSnapshot{
		{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	}

	require.NoError(t, svc.Bootstrap(ctx))

	visited := svc.VisitedPlaces()
	require.Len(t, visited, 1)
	assert.Equal(t, "London", visited[0].Name)
}

func TestFocus_RecentersWithoutReload(t *testing.T) {
	svc, deps := newTestService(t)

	svc.Focus(35.6762, 139.6503, 0.2)

	state := svc.State()
	assert.InDelta(t, 35.6762, state.Region.CenterLatitude, 0.0001)
	assert.InDelta(t, 139.6503, state.Region.CenterLongitude, 0.0001)
	assert.InDelta(t, 0.2, state.Region.LatitudeSpan, 0.0001)
	assert.Zero(t, deps.weather.calls)
	assert.Zero(t, deps.pois.calls)
}

func TestFocus_NonPositiveSpanUsesDefault(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Focus(35.6762, 139.6503, 0)

	assert.InDelta(t, 0.05, svc.State().Region.LatitudeSpan, 0.0001)
}
