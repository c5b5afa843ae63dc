package symbols

import (
	"fmt"
	"strings"
	"sync"
)

// Table manages a cached symbol table with concurrent access. Lookup keys
// are case-folded to lower case on both insert and query: TwinCAT symbol
// names are case-insensitive, and ADS servers are not consistent about the
// case they echo back in upload data versus what a caller typed.
type Table struct {
	symbols map[string]*Symbol
	mu      sync.RWMutex
	loaded  bool
	version uint32
}

// NewTable creates a new empty symbol table.
func NewTable() *Table {
	return &Table{
		symbols: make(map[string]*Symbol),
	}
}

// Load parses and loads symbols from raw upload data, replacing whatever
// was previously cached and bumping the cache version.
func (t *Table) Load(data []byte) error {
	symbols, err := ParseSymbolTable(data)
	if err != nil {
		return fmt.Errorf("parse symbol table: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.symbols = make(map[string]*Symbol, len(symbols))

	for i := range symbols {
		sym := &symbols[i]
		t.symbols[strings.ToLower(sym.Name)] = sym
	}

	t.loaded = true
	t.version++
	return nil
}

// Get retrieves a symbol by name, case-insensitively.
func (t *Table) Get(name string) (*Symbol, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.loaded {
		return nil, fmt.Errorf("symbol table not loaded")
	}

	sym, exists := t.symbols[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("symbol %q not found", name)
	}

	return sym, nil
}

// List returns all symbols in the table.
func (t *Table) List() ([]*Symbol, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.loaded {
		return nil, fmt.Errorf("symbol table not loaded")
	}

	symbols := make([]*Symbol, 0, len(t.symbols))
	for _, sym := range t.symbols {
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// IsLoaded returns true if the symbol table has been loaded.
func (t *Table) IsLoaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Version returns the current cache generation, incremented on every Load
// or Invalidate. It is a local counter, unrelated to the PLC's own symbol
// version.
func (t *Table) Version() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Invalidate drops the cached table without loading a replacement, forcing
// the next Get/List/Find to fail until Load is called again. Called by the
// state monitor when its symbol-version poll sees a change.
func (t *Table) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols = make(map[string]*Symbol)
	t.loaded = false
	t.version++
}

// Find searches for symbols by name substring, case-insensitively.
func (t *Table) Find(pattern string) ([]*Symbol, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.loaded {
		return nil, fmt.Errorf("symbol table not loaded")
	}

	pattern = strings.ToLower(pattern)
	var matches []*Symbol

	for name, sym := range t.symbols {
		if strings.Contains(name, pattern) {
			matches = append(matches, sym)
		}
	}

	return matches, nil
}
