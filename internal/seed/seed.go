// Package seed provides the initial state of every known board.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gmllt/prepboard/internal/board"
)

//go:embed boards.yaml
var builtin []byte

// Catalogue maps a board identifier to its initial state.
type Catalogue map[string]board.Board

type file struct {
	Boards []board.Board `yaml:"boards"`
}

// Builtin returns the catalogue compiled into the binary.
func Builtin() (Catalogue, error) {
	return Parse(builtin)
}

// Load reads a catalogue from path, or the builtin one when path is empty.
func Load(path string) (Catalogue, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte) (Catalogue, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	cat := make(Catalogue, len(f.Boards))
	for _, b := range f.Boards {
		if b.Kind == "" {
			b.Kind = board.KindKanban
		}
		if err := board.Validate(b); err != nil {
			return nil, fmt.Errorf("seed board %q: %w", b.Name, err)
		}
		if _, dup := cat[b.Name]; dup {
			return nil, fmt.Errorf("seed board %q defined twice", b.Name)
		}
		cat[b.Name] = b
	}
	return cat, nil
}

// Lookup returns a private copy of the named board.
func (c Catalogue) Lookup(name string) (board.Board, bool) {
	b, ok := c[name]
	if !ok {
		return board.Board{}, false
	}
	return board.Clone(b), true
}

// Names returns the board identifiers in sorted order.
func (c Catalogue) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
