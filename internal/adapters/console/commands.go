package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/navigator"
)

const helpText = `commands:
  click <lat> <lng>        drop a marker
  save <marker>            save a dropped marker
  search <place>           find a place and center on it
  route <from> to <to>     straight-line route between two places (or <from> | <to>)
  select <n>               center on saved location n
  list                     show saved locations
  help                     show this text
  quit                     exit
`

// ErrQuit is returned by Parse for the quit command.
var ErrQuit = errors.New("quit")

// errHandled marks commands the reader answers itself.
var errHandled = errors.New("handled locally")

// Parse turns one input line into a controller event.
func (w *Widget) Parse(line string) (navigator.Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, errHandled
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "click":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil, errors.New("usage: click <lat> <lng>")
		}
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude %q", fields[0])
		}
		lng, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude %q", fields[1])
		}
		return navigator.MapClicked{Position: domain.LatLng{Lat: lat, Lng: lng}}, nil

	case "save":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, errors.New("usage: save <marker number>")
		}
		id, ok := w.markerID(n)
		if !ok {
			return nil, fmt.Errorf("no marker [%d]", n)
		}
		return navigator.SaveMarker{MarkerID: id}, nil

	case "search":
		return navigator.SearchSubmitted{Query: rest}, nil

	case "route":
		from, to, ok := splitRoute(rest)
		if !ok {
			return nil, errors.New("usage: route <from> to <to>")
		}
		return navigator.PlanRouteSubmitted{From: from, To: to}, nil

	case "select":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, errors.New("usage: select <n>")
		}
		id, ok := w.locationID(n)
		if !ok {
			return nil, fmt.Errorf("no saved location %d", n)
		}
		return navigator.SavedLocationSelected{LocationID: id}, nil

	case "list":
		w.PrintLocations()
		return nil, errHandled

	case "help", "?":
		w.PrintHelp()
		return nil, errHandled

	case "quit", "exit":
		return nil, ErrQuit
	}
	return nil, fmt.Errorf("unknown command %q, try 'help'", cmd)
}

// splitRoute separates "<from> | <to>" or "<from> to <to>". Either side may be blank;
// the controller reports that.
func splitRoute(s string) (string, string, bool) {
	if from, to, ok := strings.Cut(s, "|"); ok {
		return strings.TrimSpace(from), strings.TrimSpace(to), true
	}
	if from, to, ok := strings.Cut(s, " to "); ok {
		return strings.TrimSpace(from), strings.TrimSpace(to), true
	}
	return "", "", false
}

// ReadCommands parses lines from r and sends the resulting events until r is exhausted,
// quit is entered or ctx is cancelled. events is closed on return.
func (w *Widget) ReadCommands(ctx context.Context, r io.Reader, events chan<- navigator.Event) error {
	defer close(events)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ev, err := w.Parse(sc.Text())
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case errors.Is(err, errHandled):
			continue
		case err != nil:
			w.Notify(err.Error())
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}

// Merge forwards events from input and remote to out until input is closed or ctx is
// cancelled, then closes out. remote may be nil.
func Merge(ctx context.Context, input, remote <-chan navigator.Event, out chan<- navigator.Event) {
	defer close(out)
	for {
		var ev navigator.Event
		select {
		case in, ok := <-input:
			if !ok {
				return
			}
			ev = in
		case ev = <-remote:
		case <-ctx.Done():
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}
