package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/navigator"
)

// Widget renders the map as lines of text. Markers and saved locations get short numbers
// so commands can refer to them.
type Widget struct {
	mu  sync.Mutex
	out io.Writer

	markerNums map[string]int
	markerIDs  map[int]string
	nextMarker int
	locations  []domain.Location
}

// NewWidget creates a Widget writing to out.
func NewWidget(out io.Writer) *Widget {
	return &Widget{
		out:        out,
		markerNums: make(map[string]int),
		markerIDs:  make(map[int]string),
		nextMarker: 1,
	}
}

func (w *Widget) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

func formatPos(p domain.LatLng) string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

func (w *Widget) SetView(center domain.LatLng, zoom int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("view: %s (zoom %d)", formatPos(center), zoom)
}

func (w *Widget) FitBounds(b domain.Bounds) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("view: fit [%s] - [%s]",
		formatPos(domain.LatLng{Lat: b.MinLat, Lng: b.MinLng}),
		formatPos(domain.LatLng{Lat: b.MaxLat, Lng: b.MaxLng}))
}

func (w *Widget) AddMarker(m navigator.Marker) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.nextMarker
	w.nextMarker++
	w.markerNums[m.ID] = n
	w.markerIDs[n] = m.ID

	status := "unsaved, 'save " + fmt.Sprint(n) + "' to keep it"
	if m.Persisted {
		status = "saved"
	}
	w.printf("marker [%d] %s at %s (%s)", n, m.Label, formatPos(m.Position), status)
}

func (w *Widget) UpdateMarker(m navigator.Marker) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := "unsaved"
	if m.Persisted {
		state = "saved"
	}
	w.printf("marker [%d] %s %s", w.markerNums[m.ID], m.Label, state)
}

func (w *Widget) RemoveMarker(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.markerNums[id]
	if !ok {
		return
	}
	delete(w.markerNums, id)
	delete(w.markerIDs, n)
	w.printf("marker [%d] removed", n)
}

func (w *Widget) AddPolyline(id string, points []domain.LatLng) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(points) < 2 {
		return
	}
	w.printf("line: %s -> %s", formatPos(points[0]), formatPos(points[len(points)-1]))
}

func (w *Widget) RemovePolyline(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("line removed")
}

func (w *Widget) ShowLocations(locs []domain.Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locations = append([]domain.Location(nil), locs...)
	w.printLocations()
}

func (w *Widget) printLocations() {
	w.printf("saved locations (%d):", len(w.locations))
	for i, l := range w.locations {
		w.printf("  %d. %s [%s] %s", i+1, l.Name, l.Type, formatPos(l.Position()))
	}
}

func (w *Widget) ShowRouteInfo(info navigator.RouteInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("route: %s -> %s: %s km", info.From, info.To, info.Distance)
}

func (w *Widget) ShowState(s navigator.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch s {
	case navigator.SearchPending:
		w.printf("searching...")
	case navigator.RoutePending:
		w.printf("planning route...")
	}
}

func (w *Widget) Notify(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("! %s", msg)
}

// PrintLocations writes the last list shown.
func (w *Widget) PrintLocations() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printLocations()
}

// PrintHelp writes the command summary.
func (w *Widget) PrintHelp() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprint(w.out, helpText)
}

// markerID maps a displayed marker number to its id.
func (w *Widget) markerID(n int) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.markerIDs[n]
	return id, ok
}

// locationID maps a 1-based position in the displayed list to a location id.
func (w *Widget) locationID(n int) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n < 1 || n > len(w.locations) {
		return "", false
	}
	return w.locations[n-1].ID, true
}
