package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestEnvelopeOfTwoPoints(t *testing.T) {
	got := Envelope([]orb.Point{{12.0, 50.0}, {15.0, 51.0}})
	want := orb.Bound{Min: orb.Point{12.0, 50.0}, Max: orb.Point{15.0, 51.0}}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEnvelopeFallsBackToDefault(t *testing.T) {
	for _, points := range [][]orb.Point{nil, {{13.4, 50.7}}} {
		if got := Envelope(points); got != DefaultBounds {
			t.Fatalf("expected default bounds for %v, got %v", points, got)
		}
	}
	corners := Corners(DefaultBounds)
	if corners[0] != [2]float64{12.1898, 49.9664} || corners[1] != [2]float64{15.5079, 51.4444} {
		t.Fatalf("unexpected default corners %v", corners)
	}
}

func TestParseBBox(t *testing.T) {
	bound, err := ParseBBox("12.0, 50.0,15.0,51.0")
	if err != nil {
		t.Fatalf("parse bbox: %v", err)
	}
	if !bound.Contains(orb.Point{12.0, 50.0}) || !bound.Contains(orb.Point{15.0, 51.0}) {
		t.Fatalf("expected corners to be inclusive")
	}
	if bound.Contains(orb.Point{15.1, 50.5}) {
		t.Fatalf("expected point outside bbox")
	}

	for _, raw := range []string{"", "1,2,3", "a,b,c,d", "15,50,12,51", "12,50,200,51"} {
		if _, err := ParseBBox(raw); !errors.Is(err, ErrInvalidBBox) {
			t.Fatalf("expected ErrInvalidBBox for %q, got %v", raw, err)
		}
	}
}

func TestParsePointAndDistance(t *testing.T) {
	point, err := ParsePoint("14.42,50.08")
	if err != nil || point != (orb.Point{14.42, 50.08}) {
		t.Fatalf("unexpected point %v (%v)", point, err)
	}
	if _, err := ParsePoint("14.42"); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint, got %v", err)
	}

	dist, err := ParseDistance("")
	if err != nil || dist != DefaultDistance {
		t.Fatalf("expected default distance, got %v (%v)", dist, err)
	}
	if _, err := ParseDistance("-5"); !errors.Is(err, ErrInvalidDistance) {
		t.Fatalf("expected ErrInvalidDistance, got %v", err)
	}
}

func TestDistanceToDegrees(t *testing.T) {
	atEquator := DistanceToDegrees(1000, 0)
	want := 1000 / EarthRadius * 180 / math.Pi
	if math.Abs(atEquator-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, atEquator)
	}
	if DistanceToDegrees(1000, 50) <= atEquator {
		t.Fatalf("expected wider radius at higher latitude")
	}
}

func TestRadiusBound(t *testing.T) {
	center := orb.Point{14.0, 50.0}
	radius := DistanceToDegrees(1000, 50)
	if RadiusBound(center, radius).Contains(orb.Point{14.1, 50.0}) {
		t.Fatalf("expected distant point outside the prefilter bound")
	}
	if !RadiusBound(center, radius).Contains(orb.Point{14.001, 50.001}) {
		t.Fatalf("expected prefilter bound to contain nearby point")
	}
}
