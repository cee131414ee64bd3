// Package variant describes the AVR parts the simulator can be built for.
//
// A variant fixes the sizes of the two memory banks. Built-in variants cover
// common parts; more can be loaded from a JSON file:
//
//	[
//	  {"name": "attiny45", "data_size": 512, "program_size": 4096}
//	]
package variant

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Default is the name of the reference part.
const Default = "attiny85"

// MaxMemorySize is the largest bank a 16-bit address can cover.
const MaxMemorySize = 0x10000

// ErrUnknownVariant is returned when no variant has the requested name.
var ErrUnknownVariant = errors.New("unknown variant")

// ErrInvalidVariant is returned when a variant has unusable memory sizes.
var ErrInvalidVariant = errors.New("invalid variant")

// Variant holds the memory geometry of one AVR part.
type Variant struct {
	// Name identifies the part, e.g. "attiny85".
	Name string `json:"name"`

	// DataSize is the size of data memory in bytes, covering the I/O space
	// and SRAM. Must be a power of two.
	DataSize int `json:"data_size"`

	// ProgramSize is the size of flash in bytes. Must be a power of two.
	ProgramSize int `json:"program_size"`
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Validate checks that both memory sizes are powers of two within the
// 16-bit address space.
func (v Variant) Validate() error {
	if v.Name == "" {
		return errors.Wrap(ErrInvalidVariant, "name must not be empty")
	}
	if !IsPowerOfTwo(v.DataSize) || v.DataSize > MaxMemorySize {
		return errors.Wrapf(ErrInvalidVariant,
			"%s: data_size %d must be a power of two <= %d", v.Name, v.DataSize, MaxMemorySize)
	}
	if !IsPowerOfTwo(v.ProgramSize) || v.ProgramSize > MaxMemorySize {
		return errors.Wrapf(ErrInvalidVariant,
			"%s: program_size %d must be a power of two <= %d", v.Name, v.ProgramSize, MaxMemorySize)
	}
	return nil
}

// Builtin returns the variants known without any configuration.
func Builtin() []Variant {
	return []Variant{
		{Name: "attiny13", DataSize: 256, ProgramSize: 1024},
		{Name: "attiny85", DataSize: 512, ProgramSize: 8 * 1024},
		{Name: "atmega8", DataSize: 2 * 1024, ProgramSize: 8 * 1024},
		{Name: "atmega328p", DataSize: 4 * 1024, ProgramSize: 32 * 1024},
	}
}

// Registry maps variant names to variants.
type Registry struct {
	variants map[string]Variant
}

// NewRegistry creates a registry holding the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{variants: make(map[string]Variant)}
	for _, v := range Builtin() {
		r.variants[v.Name] = v
	}
	return r
}

// Add validates v and registers it, replacing any variant of the same name.
func (r *Registry) Add(v Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.variants[v.Name] = v
	return nil
}

// Lookup returns the variant with the given name.
func (r *Registry) Lookup(name string) (Variant, error) {
	v, ok := r.variants[name]
	if !ok {
		return Variant{}, errors.Wrapf(ErrUnknownVariant, "%q", name)
	}
	return v, nil
}

// Names returns the registered variant names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variants returns the registered variants sorted by name.
func (r *Registry) Variants() []Variant {
	out := make([]Variant, 0, len(r.variants))
	for _, name := range r.Names() {
		out = append(out, r.variants[name])
	}
	return out
}

// Lookup returns a built-in variant by name.
func Lookup(name string) (Variant, error) {
	return NewRegistry().Lookup(name)
}

// LoadConfig reads a JSON array of variants from path and returns a
// registry holding the built-ins plus the loaded variants. A loaded variant
// replaces a built-in of the same name.
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read variant config file")
	}

	var variants []Variant
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, errors.Wrapf(err, "failed to parse variant config %s", path)
	}

	r := NewRegistry()
	for _, v := range variants {
		if err := r.Add(v); err != nil {
			return nil, errors.Wrapf(err, "variant config %s", path)
		}
	}

	return r, nil
}

// SaveConfig writes every registered variant to path as JSON.
func (r *Registry) SaveConfig(path string) error {
	data, err := json.MarshalIndent(r.Variants(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize variant config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write variant config file")
	}

	return nil
}
