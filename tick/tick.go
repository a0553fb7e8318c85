// Quantization of timestamps onto the fixed sampling grid.
//
// The grid is defined within the minute: a width of w seconds (w must divide 60) partitions every
// minute into 60/w buckets [0,w), [w,2w), ..., and the grid points are the bucket boundaries.  A
// timestamp is aligned if its seconds-of-minute is a multiple of w and it has no sub-second part.
//
// Because w divides 60 and minutes are always 60 seconds here (Unix time has no leap seconds),
// grid points are also the multiples of w in Unix time, which is what makes Tick a plain integral
// index.

package tick

import (
	"fmt"
	"time"
)

type Direction int

const (
	Ceil Direction = iota
	Floor
)

func (d Direction) String() string {
	switch d {
	case Ceil:
		return "ceil"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Tick is the index of a grid point: Unix seconds divided by the grid width.
type Tick int64

// Grid is a validated tick width.  The zero Grid is not valid; use NewGrid.
type Grid struct {
	width int64
}

const DefaultWidth = 20

func NewGrid(tickSeconds int) (Grid, error) {
	if tickSeconds <= 0 || 60%tickSeconds != 0 {
		return Grid{}, fmt.Errorf("Tick width %d does not divide 60", tickSeconds)
	}
	return Grid{width: int64(tickSeconds)}, nil
}

// Like NewGrid but panics on a bad width.
func MustGrid(tickSeconds int) Grid {
	g, err := NewGrid(tickSeconds)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Grid) Seconds() int {
	return int(g.width)
}

func (g Grid) Duration() time.Duration {
	return time.Duration(g.width) * time.Second
}

// The grid is anchored at the Unix epoch, so alignment is judged on UTC seconds; a zone whose
// offset is not whole minutes would otherwise shift it.

func (g Grid) Aligned(t time.Time) bool {
	t = t.UTC()
	return t.Nanosecond() == 0 && int64(t.Second())%g.width == 0
}

// Floor and Ceil return UTC times.

func (g Grid) Floor(t time.Time) time.Time {
	t = t.UTC()
	if g.Aligned(t) {
		return t
	}
	s := int64(t.Second())
	lower := s - s%g.width
	return t.Add(-time.Duration(s-lower)*time.Second - time.Duration(t.Nanosecond()))
}

func (g Grid) Ceil(t time.Time) time.Time {
	if g.Aligned(t) {
		return t
	}
	return g.Floor(t).Add(g.Duration())
}

func (g Grid) Quantize(t time.Time, d Direction) time.Time {
	if d == Floor {
		return g.Floor(t)
	}
	return g.Ceil(t)
}

// The index of the grid point at or below t.
func (g Grid) Index(t time.Time) Tick {
	return Tick(g.Floor(t).Unix() / g.width)
}

func (g Grid) Time(k Tick) time.Time {
	return time.Unix(int64(k)*g.width, 0).UTC()
}

// Span returns the first and last ticks fully inside [start, end], that is, the ticks from
// Ceil(start) to Floor(end) inclusive.  ok is false if there are none.
func (g Grid) Span(start, end time.Time) (first, last Tick, ok bool) {
	first = Tick(g.Ceil(start).Unix() / g.width)
	last = Tick(g.Floor(end).Unix() / g.width)
	return first, last, first <= last
}

// Quantize rounds t onto the grid of width tickSeconds.  It panics if tickSeconds does not divide
// 60; use NewGrid to validate a width that comes from configuration.
func Quantize(t time.Time, tickSeconds int, d Direction) time.Time {
	return MustGrid(tickSeconds).Quantize(t, d)
}
