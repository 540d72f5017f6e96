// Package device owns PLC device addressing: the device classes, the ordered
// classification rules and the per-translation symbol table that hands out
// addresses.
//
// A Table is created for exactly one translation. It is not safe for
// concurrent use and is never shared; concurrent translations each build
// their own.
package device

import (
	"fmt"
	"strings"
)

// Class is a PLC device family.
type Class int

const (
	Input Class = iota
	Output
	Internal
	DataRegister
	Timer
	Counter

	numClasses
)

// Classes lists every class in presentation order.
var Classes = []Class{Input, Output, Internal, DataRegister, Timer, Counter}

var classInfo = [numClasses]struct {
	letter string
	key    string
	label  string
}{
	Input:        {"X", "inputs", "input"},
	Output:       {"Y", "outputs", "output"},
	Internal:     {"M", "internals", "internal"},
	DataRegister: {"D", "data_registers", "data register"},
	Timer:        {"T", "timers", "timer"},
	Counter:      {"C", "counters", "counter"},
}

func (c Class) valid() bool {
	return c >= 0 && c < numClasses
}

// Letter is the device prefix used in addresses, e.g. "X".
func (c Class) Letter() string {
	if !c.valid() {
		return "?"
	}
	return classInfo[c].letter
}

// Key is the stable identifier used in serialized device maps, e.g. "inputs".
func (c Class) Key() string {
	if !c.valid() {
		return "unknown"
	}
	return classInfo[c].key
}

// String returns a human readable name, e.g. "data register".
func (c Class) String() string {
	if !c.valid() {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classInfo[c].label
}

// ParseClass accepts a class letter ("X"), key ("inputs") or label ("input"),
// case-insensitively.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	for _, c := range Classes {
		info := classInfo[c]
		if strings.EqualFold(s, info.letter) || strings.EqualFold(s, info.key) ||
			strings.EqualFold(s, info.label) || strings.EqualFold(s, strings.ReplaceAll(info.label, " ", "_")) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown device class %q", s)
}

// Address identifies one device, e.g. Y3.
type Address struct {
	Class Class
	Index int
}

func (a Address) String() string {
	return fmt.Sprintf("%s%d", a.Class.Letter(), a.Index)
}

// Context tells the allocator where an undeclared variable was first seen.
type Context int

const (
	// InCondition marks a variable read inside a guard expression.
	InCondition Context = iota
	// AsTarget marks a variable written by an assignment.
	AsTarget
)

func (c Context) String() string {
	if c == AsTarget {
		return "target"
	}
	return "condition"
}
