package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/core/ports"
	"github.com/samirrijal/mapnav/internal/pkg/geospatial"
)

const (
	// DetailZoom is the zoom level used when centering on a single place.
	DetailZoom = 15

	newMarkerLabel = "New Location"
	savedType      = domain.TypeLandmark
)

type opKind int

const (
	opSearch opKind = iota
	opRoute
	opResync
)

func (k opKind) String() string {
	switch k {
	case opSearch:
		return "search"
	case opRoute:
		return "route"
	default:
		return "resync"
	}
}

// routeOverlay is the rendered result of the last successful route.
type routeOverlay struct {
	start  Marker
	end    Marker
	lineID string
	info   RouteInfo
	result domain.RouteResult
}

// Controller keeps markers, the route overlay and the saved-locations list consistent with
// the results of asynchronous store and geocoder calls.
//
// All state is owned by the goroutine running Run. Network calls execute on worker goroutines
// and hand their results back to Run as completion closures. Each search, route and resync
// carries a sequence number; a completion that is not the latest of its kind is dropped.
type Controller struct {
	store    ports.LocationStore
	routes   ports.RouteCalculator
	geocoder ports.Geocoder
	widget   MapWidget
	log      *slog.Logger

	completions chan func()
	wg          sync.WaitGroup

	state     State
	markers   map[string]*Marker
	saving    map[string]bool
	overlay   *routeOverlay
	locations []domain.Location
	seq       map[opKind]uint64
}

// New creates a Controller. It does nothing until Run is called.
func New(store ports.LocationStore, routes ports.RouteCalculator, geocoder ports.Geocoder, widget MapWidget) *Controller {
	return &Controller{
		store:       store,
		routes:      routes,
		geocoder:    geocoder,
		widget:      widget,
		log:         slog.Default().With("component", "navigator"),
		completions: make(chan func()),
		markers:     make(map[string]*Marker),
		saving:      make(map[string]bool),
		seq:         make(map[opKind]uint64),
	}
}

// Run loads the saved list and then processes events until ctx is cancelled or events is
// closed. In-flight calls are cancelled and awaited before Run returns.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.wg.Wait()
	}()

	c.resync(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handle(ctx, ev)
		case done := <-c.completions:
			done()
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case MapClicked:
		c.mapClicked(e.Position)
	case SaveMarker:
		c.saveMarker(ctx, e.MarkerID)
	case SearchSubmitted:
		c.search(ctx, e.Query)
	case PlanRouteSubmitted:
		c.planRoute(ctx, e.From, e.To)
	case SavedLocationSelected:
		c.selectLocation(e.LocationID)
	case LocationsChanged:
		c.resync(ctx)
	default:
		c.log.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
}

// spawn runs work on a worker goroutine and posts the closure it returns back to Run.
func (c *Controller) spawn(ctx context.Context, work func(ctx context.Context) func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		done := work(ctx)
		select {
		case c.completions <- done:
		case <-ctx.Done():
		}
	}()
}

// begin issues the next sequence number for kind.
func (c *Controller) begin(kind opKind) uint64 {
	c.seq[kind]++
	return c.seq[kind]
}

// current reports whether seq is still the latest of its kind, logging the drop otherwise.
func (c *Controller) current(kind opKind, seq uint64) bool {
	if c.seq[kind] == seq {
		return true
	}
	c.log.Debug("discarding stale completion", "op", kind.String(), "seq", seq, "latest", c.seq[kind])
	return false
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.widget.ShowState(s)
}

// settle returns to Idle if the state still belongs to the finished operation.
func (c *Controller) settle(pending State) {
	if c.state == pending {
		c.setState(Idle)
	}
}

func (c *Controller) fail(msg string, err error) {
	c.log.Warn(msg, "error", err)
	c.widget.Notify(fmt.Sprintf("%s: %v", msg, err))
}

func (c *Controller) addMarker(pos domain.LatLng, label string, persisted bool, locationID string) *Marker {
	m := &Marker{
		ID:         uuid.NewString(),
		Position:   pos,
		Label:      label,
		Persisted:  persisted,
		LocationID: locationID,
	}
	c.markers[m.ID] = m
	c.widget.AddMarker(*m)
	return m
}

func (c *Controller) mapClicked(pos domain.LatLng) {
	c.setState(Idle)
	c.addMarker(pos, newMarkerLabel, false, "")
}

func (c *Controller) saveMarker(ctx context.Context, id string) {
	m, ok := c.markers[id]
	switch {
	case !ok:
		c.widget.Notify(fmt.Sprintf("no marker %q", id))
		return
	case m.Persisted:
		c.widget.Notify(fmt.Sprintf("%s is already saved", m.Label))
		return
	case c.saving[id]:
		c.widget.Notify(fmt.Sprintf("%s is being saved", m.Label))
		return
	}

	c.saving[id] = true
	lat, lng := m.Position.Lat, m.Position.Lng
	in := domain.LocationInput{Name: m.Label, Latitude: &lat, Longitude: &lng, Type: savedType}

	c.spawn(ctx, func(ctx context.Context) func() {
		loc, err := c.store.CreateLocation(ctx, in)
		return func() {
			delete(c.saving, id)
			m, ok := c.markers[id]
			if err != nil {
				c.fail("could not save location", err)
				return
			}
			if ok {
				m.Persisted = true
				m.LocationID = loc.ID
				c.widget.UpdateMarker(*m)
			}
			c.widget.Notify(fmt.Sprintf("saved %s", loc.Name))
			c.resync(ctx)
		}
	})
}

// resync replaces the displayed list with the store's full collection.
func (c *Controller) resync(ctx context.Context) {
	seq := c.begin(opResync)
	c.spawn(ctx, func(ctx context.Context) func() {
		locs, err := c.store.ListLocations(ctx)
		return func() {
			if !c.current(opResync, seq) {
				return
			}
			if err != nil {
				c.fail("could not load saved locations", err)
				return
			}
			c.locations = locs
			c.widget.ShowLocations(locs)
		}
	})
}

func (c *Controller) search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.widget.Notify("enter a place to search for")
		return
	}

	seq := c.begin(opSearch)
	c.setState(SearchPending)

	c.spawn(ctx, func(ctx context.Context) func() {
		places, err := c.geocoder.Resolve(ctx, query)
		return func() {
			if !c.current(opSearch, seq) {
				return
			}
			c.settle(SearchPending)
			if err != nil {
				c.fail("search failed", err)
				return
			}
			if len(places) == 0 {
				c.widget.Notify((&domain.NotFoundError{Query: query}).Error())
				return
			}
			first := places[0]
			c.widget.SetView(first.Position, DetailZoom)
			c.addMarker(first.Position, first.DisplayName, false, "")
		}
	})
}

type resolvedRoute struct {
	start  domain.Place
	end    domain.Place
	result domain.RouteResult
}

func (c *Controller) planRoute(ctx context.Context, from, to string) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		c.widget.Notify("enter both a start and an end location")
		return
	}

	seq := c.begin(opRoute)
	c.setState(RoutePending)

	c.spawn(ctx, func(ctx context.Context) func() {
		r, err := c.resolveRoute(ctx, from, to)
		return func() {
			if !c.current(opRoute, seq) {
				return
			}
			c.settle(RoutePending)
			if err != nil {
				var nf *domain.NotFoundError
				if errors.As(err, &nf) {
					c.log.Info("route endpoint not found", "side", nf.Side, "query", nf.Query)
					c.widget.Notify(nf.Error())
					return
				}
				c.fail("route failed", err)
				return
			}
			c.replaceOverlay(r)
		}
	})
}

// resolveRoute geocodes both endpoints concurrently and fails as soon as either side does.
func (c *Controller) resolveRoute(ctx context.Context, from, to string) (resolvedRoute, error) {
	var r resolvedRoute

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.resolveSide(gctx, "start", from)
		r.start = p
		return err
	})
	g.Go(func() error {
		p, err := c.resolveSide(gctx, "end", to)
		r.end = p
		return err
	})
	if err := g.Wait(); err != nil {
		return resolvedRoute{}, err
	}

	result, err := c.routes.BuildRoute(ctx, r.start.Position, r.end.Position)
	if err != nil {
		return resolvedRoute{}, err
	}
	r.result = result
	return r, nil
}

func (c *Controller) resolveSide(ctx context.Context, side, query string) (domain.Place, error) {
	places, err := c.geocoder.Resolve(ctx, query)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s location: %w", side, err)
	}
	if len(places) == 0 {
		return domain.Place{}, &domain.NotFoundError{Query: query, Side: side}
	}
	return places[0], nil
}

// replaceOverlay removes the previous overlay from the widget before drawing the new one.
func (c *Controller) replaceOverlay(r resolvedRoute) {
	if old := c.overlay; old != nil {
		c.widget.RemoveMarker(old.start.ID)
		c.widget.RemoveMarker(old.end.ID)
		c.widget.RemovePolyline(old.lineID)
		c.overlay = nil
	}

	ov := &routeOverlay{
		start:  Marker{ID: uuid.NewString(), Position: r.start.Position, Label: r.start.DisplayName},
		end:    Marker{ID: uuid.NewString(), Position: r.end.Position, Label: r.end.DisplayName},
		lineID: uuid.NewString(),
		info: RouteInfo{
			Distance: r.result.FormattedDistance(),
			From:     r.start.DisplayName,
			To:       r.end.DisplayName,
		},
		result: r.result,
	}

	c.widget.AddMarker(ov.start)
	c.widget.AddMarker(ov.end)
	c.widget.AddPolyline(ov.lineID, []domain.LatLng{ov.start.Position, ov.end.Position})
	c.widget.FitBounds(geospatial.BoundsOf(ov.start.Position, ov.end.Position))
	c.widget.ShowRouteInfo(ov.info)
	c.overlay = ov
}

func (c *Controller) selectLocation(id string) {
	for _, loc := range c.locations {
		if loc.ID != id {
			continue
		}
		c.widget.SetView(loc.Position(), DetailZoom)
		for _, m := range c.markers {
			if m.LocationID == id {
				return
			}
		}
		c.addMarker(loc.Position(), loc.Name, true, loc.ID)
		return
	}
	c.widget.Notify(fmt.Sprintf("no saved location %q", id))
}
