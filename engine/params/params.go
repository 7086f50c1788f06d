// Package params holds the per-subsystem parameter stores. A Store is a flat mapping of
// option name to value seeded from fixed default literals. Every setter stores the value
// and fires the change hooks registered for that name, which is how subsystems trigger
// shader rebuilds or uniform pushes. Bounded parameters are clamped on write.
//
// Stores are not safe for concurrent use. They are mutated only from the frame thread.
package params

import (
	"log"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
)

// Kind identifies the value shape of a parameter.
type Kind int

const (
	// KindFloat is a float32 parameter, optionally clamped.
	KindFloat Kind = iota

	// KindBool is an on/off toggle.
	KindBool

	// KindColor is a linear RGB color.
	KindColor

	// KindEnum is a string restricted to a fixed option list.
	KindEnum
)

// Definition describes one parameter: its name, shape, default literal and bounds.
type Definition struct {
	Name    string
	Kind    Kind
	Default any

	// Min and Max are only honored when Clamped is set.
	Min, Max float32
	Clamped  bool

	// Options lists the accepted values of an enum parameter.
	Options []string
}

// Float defines an unbounded float parameter.
func Float(name string, def float32) Definition {
	return Definition{Name: name, Kind: KindFloat, Default: def}
}

// ClampedFloat defines a float parameter whose writes are clamped to [lo, hi].
//
// Parameters:
//   - name: the parameter name
//   - def: the default literal
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - Definition: the parameter definition
func ClampedFloat(name string, def, lo, hi float32) Definition {
	return Definition{Name: name, Kind: KindFloat, Default: def, Min: lo, Max: hi, Clamped: true}
}

// Bool defines a toggle parameter.
func Bool(name string, def bool) Definition {
	return Definition{Name: name, Kind: KindBool, Default: def}
}

// Color defines an RGB color parameter.
func Color(name string, def mgl32.Vec3) Definition {
	return Definition{Name: name, Kind: KindColor, Default: def}
}

// Vec3 defines a vector parameter such as a direction. It is read and written with
// Color and SetColor.
func Vec3(name string, def mgl32.Vec3) Definition {
	return Definition{Name: name, Kind: KindColor, Default: def}
}

// Enum defines a parameter restricted to options. Writing a value outside options stores
// the default instead.
//
// Parameters:
//   - name: the parameter name
//   - def: the default option, must be one of options
//   - options: the accepted values
//
// Returns:
//   - Definition: the parameter definition
func Enum(name string, def string, options ...string) Definition {
	return Definition{Name: name, Kind: KindEnum, Default: def, Options: options}
}

// Snapshot is a copy of every parameter value keyed by name.
type Snapshot map[string]any

// Hook is called after a parameter changes.
type Hook func(name string)

// Store is the flat parameter mapping for one subsystem.
type Store struct {
	defs   map[string]Definition
	order  []string
	values map[string]any
	hooks  map[string][]Hook
}

// NewStore creates a store seeded with the default of every definition.
//
// Parameters:
//   - defs: the parameter definitions
//
// Returns:
//   - *Store: the seeded store
func NewStore(defs ...Definition) *Store {
	s := &Store{
		defs:   make(map[string]Definition, len(defs)),
		order:  make([]string, 0, len(defs)),
		values: make(map[string]any, len(defs)),
		hooks:  make(map[string][]Hook),
	}
	for _, d := range defs {
		s.defs[d.Name] = d
		s.order = append(s.order, d.Name)
		s.values[d.Name] = d.Default
	}
	return s
}

// OnChange registers fn for every name in names. Hooks run in registration order after the
// value is stored.
//
// Parameters:
//   - fn: the hook to run
//   - names: the parameters it depends on
func (s *Store) OnChange(fn Hook, names ...string) {
	for _, n := range names {
		s.hooks[n] = append(s.hooks[n], fn)
	}
}

// SetFloat stores v, clamping it if the parameter is bounded.
//
// Parameters:
//   - name: the parameter name
//   - v: the new value
//
// Returns:
//   - float32: the value actually stored
func (s *Store) SetFloat(name string, v float32) float32 {
	d, ok := s.lookup(name, KindFloat)
	if !ok {
		return 0
	}
	if d.Clamped {
		v = common.Clamp(v, d.Min, d.Max)
	}
	s.store(name, v)
	return v
}

// SetBool stores v.
func (s *Store) SetBool(name string, v bool) {
	if _, ok := s.lookup(name, KindBool); !ok {
		return
	}
	s.store(name, v)
}

// SetColor stores v.
func (s *Store) SetColor(name string, v mgl32.Vec3) {
	if _, ok := s.lookup(name, KindColor); !ok {
		return
	}
	s.store(name, v)
}

// SetEnum stores v when it is one of the parameter's options and the default otherwise.
//
// Parameters:
//   - name: the parameter name
//   - v: the requested option
//
// Returns:
//   - string: the option actually stored
func (s *Store) SetEnum(name string, v string) string {
	d, ok := s.lookup(name, KindEnum)
	if !ok {
		return ""
	}
	if !slices.Contains(d.Options, v) {
		log.Printf("[Params] unknown value %q for %s, using %q", v, name, d.Default)
		v = d.Default.(string)
	}
	s.store(name, v)
	return v
}

// Float returns the stored float, or 0 for unknown names.
func (s *Store) Float(name string) float32 {
	v, _ := s.values[name].(float32)
	return v
}

// Bool returns the stored toggle, or false for unknown names.
func (s *Store) Bool(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

// Color returns the stored color, or black for unknown names.
func (s *Store) Color(name string) mgl32.Vec3 {
	v, _ := s.values[name].(mgl32.Vec3)
	return v
}

// Enum returns the stored option, or "" for unknown names.
func (s *Store) Enum(name string) string {
	v, _ := s.values[name].(string)
	return v
}

// Reset restores every default literal. Hooks fire once per parameter whose value changed.
func (s *Store) Reset() {
	for _, name := range s.order {
		d := s.defs[name]
		if s.values[name] == d.Default {
			continue
		}
		s.store(name, d.Default)
	}
}

// Snapshot copies every value into a new map for state display.
//
// Returns:
//   - Snapshot: the copied values
func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in definition order.
func (s *Store) Names() []string {
	return slices.Clone(s.order)
}

func (s *Store) lookup(name string, kind Kind) (Definition, bool) {
	d, ok := s.defs[name]
	if !ok || d.Kind != kind {
		log.Printf("[Params] ignoring write to unknown parameter %s", name)
		return Definition{}, false
	}
	return d, true
}

func (s *Store) store(name string, v any) {
	s.values[name] = v
	for _, h := range s.hooks[name] {
		h(name)
	}
}
