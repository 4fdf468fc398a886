// Package impl contains the usecase implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"skycast/config"
	"skycast/internal/domain/apperr"
	"skycast/internal/domain/entity"
	"skycast/internal/domain/repository"
	"skycast/internal/domain/service"
	"skycast/internal/errors"
	"skycast/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Places    repository.PlaceRepository
	Snapshots repository.SnapshotStore
	Weather   service.WeatherProvider
	Geocoder  service.Geocoder
	POIs      service.POIProvider
}

// dashboardService is the orchestration state machine. Mutating entry points
// are serialized on mu so overlapping submissions cannot interleave their
// store writes; the published state has its own lock so reads never block on
// an in-flight load.
type dashboardService struct {
	cfg       *config.Config
	logger    *slog.Logger
	places    repository.PlaceRepository
	snapshots repository.SnapshotStore
	weather   service.WeatherProvider
	geocoder  service.Geocoder
	pois      service.POIProvider

	mu      sync.Mutex
	visited *entity.VisitedList

	stateMu sync.RWMutex
	state   usecase.DashboardState

	now func() time.Time
}

// New is the constructor for the dashboard usecase.
func New(params Params) usecase.DashboardUsecase {
	return newDashboardService(
		params.Config,
		params.Logger,
		params.Places,
		params.Snapshots,
		params.Weather,
		params.Geocoder,
		params.POIs,
	)
}

func newDashboardService(
	cfg *config.Config,
	logger *slog.Logger,
	places repository.PlaceRepository,
	snapshots repository.SnapshotStore,
	weather service.WeatherProvider,
	geocoder service.Geocoder,
	pois service.POIProvider,
) *dashboardService {
	svc := &dashboardService{
		cfg:       cfg,
		logger:    logger,
		places:    places,
		snapshots: snapshots,
		weather:   weather,
		geocoder:  geocoder,
		pois:      pois,
		visited:   entity.NewVisitedList(nil),
		now:       time.Now,
	}
	svc.state = usecase.DashboardState{
		Region:    regionFor(cfg.Dashboard.DefaultLatitude, cfg.Dashboard.DefaultLongitude, cfg.Dashboard.DefaultSpan),
		Forecast:  []entity.DailyForecast{},
		POIs:      []entity.PointOfInterest{},
		Visited:   []usecase.PlaceSummary{},
		ActiveTab: usecase.TabDashboard,
	}

	return svc
}

var _ usecase.DashboardUsecase = (*dashboardService)(nil)

// Bootstrap loads the visited list from the structured store. When the
// structured store is empty the flat snapshot, if any, is replayed into it
// first; the snapshot entries carry no timestamps, so decreasing synthetic
// ones preserve the recorded ordering.
func (s *dashboardService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.places.CountPlaces(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count places during bootstrap")
	}

	if count == 0 {
		snaps, err := s.snapshots.Read(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read bootstrap snapshot")
		}

		base := s.now()
		for i, snap := range snaps {
			place := entity.NewPlace(snap.Name, snap.Latitude, snap.Longitude, base.Add(-time.Duration(i)*time.Second), nil)
			if err := s.places.CreatePlace(ctx, place); err != nil {
				return errors.Wrapf(err, "failed to bootstrap place %q", snap.Name)
			}
		}

		if len(snaps) > 0 {
			s.logger.Info("bootstrapped structured store from snapshot", slog.Int("places", len(snaps)))
		}
	}

	all, err := s.places.FindAllByRecency(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load visited places")
	}

	s.visited = entity.NewVisitedList(all)
	s.publish(func(st *usecase.DashboardState) {
		st.Visited = s.summaries()
	})

	return nil
}

// SubmitQuery runs a search. The query field is cleared whether the load
// succeeds or fails.
func (s *dashboardService) SubmitQuery(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	defer s.publish(func(st *usecase.DashboardState) {
		st.Query = ""
	})

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.publishNotice(apperr.Info("enter a place name to search"))
		s.loadDefault(ctx, true)

		return
	}

	s.loadByName(ctx, trimmed)
}

// LoadDefault loads the fixed fallback location.
func (s *dashboardService) LoadDefault(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	s.loadDefault(ctx, false)
}

// LoadPlace reloads a saved place by identity.
func (s *dashboardService) LoadPlace(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	place := s.visited.FindByID(id)
	if place == nil {
		return repository.ErrPlaceNotFound
	}

	s.setLoading(true)
	defer s.setLoading(false)

	s.loadFromPlace(ctx, place)

	return nil
}

// DeletePlace removes a place from the structured store, the visited list,
// and the flat snapshot.
func (s *dashboardService) DeletePlace(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.places.DeletePlace(ctx, id); err != nil {
		return err
	}

	s.visited.Remove(id)
	s.syncSnapshot(ctx)
	s.publish(func(st *usecase.DashboardState) {
		st.Visited = s.summaries()
	})

	return nil
}

// Focus recenters the map region without reloading anything.
func (s *dashboardService) Focus(lat, lon, span float64) {
	if span <= 0 {
		span = s.cfg.Dashboard.DefaultSpan
	}

	s.publish(func(st *usecase.DashboardState) {
		st.Region = regionFor(lat, lon, span)
	})
}

// State returns a copy of the published state.
func (s *dashboardService) State() usecase.DashboardState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	out := s.state
	out.Forecast = append([]entity.DailyForecast(nil), s.state.Forecast...)
	out.POIs = append([]entity.PointOfInterest(nil), s.state.POIs...)
	out.Visited = append([]usecase.PlaceSummary(nil), s.state.Visited...)

	return out
}

// VisitedPlaces returns the published recency ordering.
func (s *dashboardService) VisitedPlaces() []usecase.PlaceSummary {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return append([]usecase.PlaceSummary(nil), s.state.Visited...)
}

// loadByName resolves a free-text name and loads the result. A visited-list
// hit skips geocoding entirely. Any failure on the fresh path publishes the
// error and falls back to the default location; the fallback load is quiet so
// the published error is not overwritten by a success notice.
func (s *dashboardService) loadByName(ctx context.Context, name string) {
	if hit := s.visited.FindByName(name); hit != nil {
		s.loadFromPlace(ctx, hit)

		return
	}

	resolved, err := s.geocoder.Resolve(ctx, name)
	if err != nil {
		s.failAndFallBack(ctx, name, err)

		return
	}

	if err := s.loadByCoordinates(ctx, resolved.Name, resolved.Latitude, resolved.Longitude, false); err != nil {
		s.failAndFallBack(ctx, resolved.Name, err)
	}
}

func (s *dashboardService) failAndFallBack(ctx context.Context, name string, err error) {
	s.logger.Warn("load by name failed, falling back to default location",
		slog.String("name", name),
		slog.String("error", err.Error()),
	)

	s.publishNotice(err)
	s.publish(func(st *usecase.DashboardState) {
		st.ActiveTab = usecase.TabDashboard
	})
	s.loadDefault(ctx, true)
}

// loadDefault loads the hardcoded fallback location. It never touches the
// geocoder. quiet suppresses the success notice so a preceding error or
// informational notice stays visible.
func (s *dashboardService) loadDefault(ctx context.Context, quiet bool) {
	d := s.cfg.Dashboard

	if hit := s.visited.FindByName(d.DefaultName); hit != nil {
		s.loadFromPlace(ctx, hit)

		return
	}

	if err := s.loadByCoordinates(ctx, d.DefaultName, d.DefaultLatitude, d.DefaultLongitude, quiet); err != nil {
		s.logger.Error("default location load failed",
			slog.String("name", d.DefaultName),
			slog.String("error", err.Error()),
		)
		s.publishNotice(err)
	}
}

// loadByCoordinates creates and loads a fresh place. Nothing is persisted and
// no state is published unless every fetch succeeds.
func (s *dashboardService) loadByCoordinates(ctx context.Context, name string, lat, lon float64, quiet bool) error {
	// The canonical name may already be saved even when the raw query was not.
	if hit := s.visited.FindByName(name); hit != nil {
		s.loadFromPlace(ctx, hit)

		return nil
	}

	report, err := s.weather.Fetch(ctx, lat, lon)
	if err != nil {
		return err
	}

	discovered, err := s.pois.Discover(ctx, lat, lon, s.cfg.POI.Limit)
	if err != nil {
		return err
	}

	place := entity.NewPlace(name, lat, lon, s.now(), discovered)
	if err := s.places.CreatePlace(ctx, place); err != nil {
		return errors.Wrapf(err, "failed to persist place %q", name)
	}

	s.visited.PushFront(place)
	s.publishLoaded(place, report)
	s.syncSnapshot(ctx)

	if !quiet {
		s.publishNotice(apperr.Info(fmt.Sprintf("loaded %s", place.Name)))
	}

	return nil
}

// loadFromPlace reloads an already-saved place. Weather is always re-fetched;
// POIs are reused unless the place has none yet. Failures are published
// locally and never cascade into the default-location fallback.
func (s *dashboardService) loadFromPlace(ctx context.Context, place *entity.Place) {
	report, err := s.weather.Fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		s.logger.Warn("reload failed",
			slog.String("name", place.Name),
			slog.String("error", err.Error()),
		)
		s.publishNotice(err)

		return
	}

	if len(place.POIs) == 0 {
		discovered, err := s.pois.Discover(ctx, place.Latitude, place.Longitude, s.cfg.POI.Limit)
		if err != nil {
			s.publishNotice(err)

			return
		}

		for _, poi := range discovered {
			poi.PlaceID = place.ID
		}
		if err := s.places.AppendPOIs(ctx, place.ID, discovered); err != nil {
			s.publishNotice(errors.Wrapf(err, "failed to persist points of interest for %q", place.Name))

			return
		}

		place.POIs = discovered
	}

	place.LastUsedAt = s.now()
	if err := s.places.UpdateLastUsed(ctx, place.ID, place.LastUsedAt); err != nil {
		s.publishNotice(errors.Wrapf(err, "failed to update recency for %q", place.Name))

		return
	}

	s.visited.PushFront(place)
	s.publishLoaded(place, report)
	s.syncSnapshot(ctx)
}

// syncSnapshot writes the current ordering behind the structured store. The
// snapshot is a bootstrap cache, so a failed write is logged and swallowed
// rather than failing the load that triggered it.
func (s *dashboardService) syncSnapshot(ctx context.Context) {
	if err := s.snapshots.Write(ctx, s.visited.Snapshot()); err != nil {
		s.logger.Warn("snapshot sync failed", slog.String("error", err.Error()))
	}
}

// publishLoaded publishes the complete result of a successful load. The
// notice slot is left untouched; notices are most-recent-wins and only
// overwritten by publishNotice.
func (s *dashboardService) publishLoaded(place *entity.Place, report *entity.WeatherReport) {
	current := report.Current
	pois := make([]entity.PointOfInterest, 0, len(place.POIs))
	for _, poi := range place.POIs {
		pois = append(pois, *poi)
	}
	summaries := s.summaries()

	s.publish(func(st *usecase.DashboardState) {
		st.Current = &current
		st.Forecast = append([]entity.DailyForecast(nil), report.Forecast...)
		st.POIs = pois
		st.ActivePlace = place.Name
		st.Region = regionFor(place.Latitude, place.Longitude, s.cfg.Dashboard.DefaultSpan)
		st.Visited = summaries
		st.ActiveTab = usecase.TabDashboard
	})
}

func (s *dashboardService) publishNotice(err error) {
	notice := apperr.NoticeFrom(err)
	s.publish(func(st *usecase.DashboardState) {
		st.Notice = notice
	})
}

func (s *dashboardService) setLoading(loading bool) {
	s.publish(func(st *usecase.DashboardState) {
		st.Loading = loading
	})
}

func (s *dashboardService) publish(mutate func(st *usecase.DashboardState)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	mutate(&s.state)
}

func (s *dashboardService) summaries() []usecase.PlaceSummary {
	places := s.visited.Places()
	out := make([]usecase.PlaceSummary, 0, len(places))
	for _, p := range places {
		out = append(out, usecase.PlaceSummary{
			ID:         p.ID,
			Name:       p.Name,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			LastUsedAt: p.LastUsedAt,
			POICount:   len(p.POIs),
		})
	}

	return out
}

func regionFor(lat, lon, span float64) usecase.MapRegion {
	region := entity.NewMapRegion(lat, lon, span)

	return usecase.MapRegion{
		CenterLatitude:  region.Center.Lat(),
		CenterLongitude: region.Center.Lon(),
		LatitudeSpan:    region.LatSpan,
		LongitudeSpan:   region.LonSpan,
	}
}

