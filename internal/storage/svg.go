package storage

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
)

var trackColors = []string{"#00ff00", "#00bfff", "#ff8c00", "#ff00ff", "#ffff00", "#ff4040"}

// ExportSVG draws the in-plane (x, y) track of every spacecraft around a
// central body of radius bodyRadius, with a marker at each event. Both axes
// share one scale so orbits keep their shape.
func ExportSVG(w io.Writer, samples map[string][]dynamo.Sample, evs []propagator.Event, bodyRadius float64, size int) error {
	ids := sortedIDs(samples)
	if len(ids) == 0 {
		return fmt.Errorf("no tracks to draw")
	}

	extent := bodyRadius
	for _, id := range ids {
		for _, s := range samples[id] {
			extent = math.Max(extent, math.Max(math.Abs(s.State[0]), math.Abs(s.State[1])))
		}
	}
	extent *= 1.1
	half := float64(size) / 2
	scale := half / extent
	project := func(x, y float64) (float64, float64) {
		return half + x*scale, half - y*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#1e3a5f"/>
`, size, size, size, size, half, half, bodyRadius*scale))

	for i, id := range ids {
		track := samples[id]
		if len(track) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-spacecraft="%s" d="M`, trackColors[i%len(trackColors)], id))
		for j, s := range track {
			x, y := project(s.State[0], s.State[1])
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, ev := range evs {
		s, ok := nearest(samples[ev.Spacecraft], ev.Time)
		if !ok {
			continue
		}
		x, y := project(s.State[0], s.State[1])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#ffffff"><title>%s %s t=%.3f</title></circle>
`, x, y, ev.Spacecraft, ev.Detector, ev.Time))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// nearest returns the sample closest in time to t.
func nearest(track []dynamo.Sample, t float64) (dynamo.Sample, bool) {
	if len(track) == 0 {
		return dynamo.Sample{}, false
	}
	best := track[0]
	for _, s := range track[1:] {
		if math.Abs(s.T-t) < math.Abs(best.T-t) {
			best = s
		}
	}
	return best, true
}
