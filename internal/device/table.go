package device

import "strings"

// Symbol is one variable known to the table.
type Symbol struct {
	Name    string
	Type    string // declared type; empty when never declared
	Address Address
	Line    int // line of the first reference
}

// Table is the per-translation symbol table and address allocator. Every
// name maps to exactly one address; indices within a class start at 0 and are
// never reused.
type Table struct {
	classifier Classifier
	symbols    map[string]*Symbol
	order      []*Symbol
	next       [numClasses]int
}

// NewTable returns an empty table. A nil classifier selects DefaultRules.
func NewTable(c Classifier) *Table {
	if c == nil {
		c = DefaultRules()
	}
	return &Table{
		classifier: c,
		symbols:    make(map[string]*Symbol),
	}
}

// Declare registers a declared variable and reports whether it was new.
// Declaring a known name never moves its address; it only records the type
// when the first reference was an undeclared use.
func (t *Table) Declare(name, typ string, line int) (*Symbol, bool) {
	name = BaseName(name)
	if s, ok := t.symbols[name]; ok {
		if s.Type == "" {
			s.Type = typ
		}
		return s, false
	}
	class := t.classifier.Classify(name, typ, AsTarget)
	return t.insert(name, typ, class, line), true
}

// Resolve returns the address of name, allocating one on first use. Member
// access and indexing resolve through the base variable, so "T1.Q" shares the
// address of "T1". Resolve never fails.
func (t *Table) Resolve(name string, hint Context, line int) Address {
	name = BaseName(name)
	if s, ok := t.symbols[name]; ok {
		return s.Address
	}
	class := t.classifier.Classify(name, "", hint)
	return t.insert(name, "", class, line).Address
}

// Lookup returns the symbol for name without allocating.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[BaseName(name)]
	return s, ok
}

// Len is the number of known symbols.
func (t *Table) Len() int {
	return len(t.order)
}

// Symbols returns every symbol in allocation order.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, len(t.order))
	for i, s := range t.order {
		out[i] = *s
	}
	return out
}

// Map projects the table into a device map grouped by class.
func (t *Table) Map() Map {
	m := make(Map, len(Classes))
	for _, c := range Classes {
		m[c] = []Entry{}
	}
	// Allocation order within a class is index order.
	for _, s := range t.order {
		m[s.Address.Class] = append(m[s.Address.Class], Entry{Address: s.Address, Variable: s.Name, Type: s.Type})
	}
	return m
}

func (t *Table) insert(name, typ string, class Class, line int) *Symbol {
	s := &Symbol{
		Name:    name,
		Type:    typ,
		Address: Address{Class: class, Index: t.next[class]},
		Line:    line,
	}
	t.next[class]++
	t.symbols[name] = s
	t.order = append(t.order, s)
	return s
}

// BaseName strips member access and indexing: "T1.Q" and "Arr[2]" resolve to
// "T1" and "Arr".
func BaseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".["); i > 0 {
		return name[:i]
	}
	return name
}

// Entry is one row of a device map.
type Entry struct {
	Address  Address
	Variable string
	Type     string
}

// Map is a presentation-only projection of a Table, keyed by class, each
// class listed in address order. Every class is present, possibly empty.
type Map map[Class][]Entry

// Addresses returns the address → variable view of one class.
func (m Map) Addresses(c Class) map[string]string {
	out := make(map[string]string, len(m[c]))
	for _, e := range m[c] {
		out[e.Address.String()] = e.Variable
	}
	return out
}

// Len counts entries across all classes.
func (m Map) Len() int {
	n := 0
	for _, entries := range m {
		n += len(entries)
	}
	return n
}
