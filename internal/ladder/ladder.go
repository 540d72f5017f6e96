// Package ladder holds the ladder program model and the synthesizer that
// turns parsed statements into rungs.
package ladder

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/stladder/internal/device"
)

// Kind is the element type as shown to clients.
type Kind string

const (
	Contact Kind = "contact"
	Coil    Kind = "coil"
)

// Position is a layout hint. Column is the series position of an element,
// Row its parallel branch. X and Y are derived from them by a Layout.
type Position struct {
	X      int
	Y      int
	Column int
	Row    int
}

// Element is a contact or a coil. NormallyOpen is only meaningful for
// contacts; Description is the guard operand for contacts and the
// "<target> := <value>" label for coils.
type Element struct {
	Kind           Kind
	Address        device.Address
	SourceVariable string
	Description    string
	NormallyOpen   bool
	Position       Position
}

// Rung is zero or more contacts followed by exactly one coil.
type Rung struct {
	Number   int // 1-based, in program order
	Line     int // source line of the assignment
	Elements []Element
}

// Contacts returns the leading contacts of the rung.
func (r Rung) Contacts() []Element {
	if len(r.Elements) == 0 {
		return nil
	}
	return r.Elements[:len(r.Elements)-1]
}

// Coil returns the trailing coil of the rung.
func (r Rung) Coil() (Element, bool) {
	if len(r.Elements) == 0 {
		return Element{}, false
	}
	last := r.Elements[len(r.Elements)-1]
	return last, last.Kind == Coil
}

var (
	ErrNoCoil        = errors.New("rung has no trailing coil")
	ErrMisplacedCoil = errors.New("coil before the end of the rung")
)

// Validate checks the rung shape.
func (r Rung) Validate() error {
	if _, ok := r.Coil(); !ok {
		return fmt.Errorf("rung %d: %w", r.Number, ErrNoCoil)
	}
	for i, e := range r.Contacts() {
		if e.Kind != Contact {
			return fmt.Errorf("rung %d element %d: %w", r.Number, i, ErrMisplacedCoil)
		}
	}
	return nil
}

// Metadata describes a generated program.
type Metadata struct {
	TargetPLCFamily string
	GeneratedAt     time.Time
}

// Program is the translated ladder program.
type Program struct {
	Rungs    []Rung
	Metadata Metadata
}

// Stats counts program elements.
type Stats struct {
	Rungs            int
	Contacts         int
	NormallyClosed   int
	Coils            int
	ParallelBranches int
}

// Stats summarizes the program.
func (p Program) Stats() Stats {
	s := Stats{Rungs: len(p.Rungs)}
	for _, r := range p.Rungs {
		for _, e := range r.Elements {
			switch e.Kind {
			case Coil:
				s.Coils++
			case Contact:
				s.Contacts++
				if !e.NormallyOpen {
					s.NormallyClosed++
				}
				if e.Position.Row > 0 {
					s.ParallelBranches++
				}
			}
		}
	}
	return s
}

// Layout places elements on the drawing grid.
type Layout struct {
	OriginX    int
	Spacing    int
	RowY       int
	RowSpacing int
}

// DefaultLayout is x = 40 + column*80, y = 30 + row*60.
func DefaultLayout() Layout {
	return Layout{OriginX: 40, Spacing: 80, RowY: 30, RowSpacing: 60}
}

// Place returns the position of the element at column and row.
func (l Layout) Place(column, row int) Position {
	return Position{
		X:      l.OriginX + column*l.Spacing,
		Y:      l.RowY + row*l.RowSpacing,
		Column: column,
		Row:    row,
	}
}
