package ps

import (
	"strings"
)

// renamer holds the variable rename table of one minification. Keys are lower cased since
// PowerShell variable names are case-insensitive.
type renamer struct {
	table    map[string]string
	order    []string            // assignment targets in order of first assignment
	declared map[string]struct{}
	counter  []byte              // next short name
	reserved map[string]struct{} // names that must not be generated
	pinned   map[string]struct{} // names that are never renamed
}

func newRenamer(first string) *renamer {
	if first == "" {
		first = "a"
	}
	return &renamer{
		table:    map[string]string{},
		declared: map[string]struct{}{},
		counter:  []byte(first),
		reserved: map[string]struct{}{},
		pinned:   map[string]struct{}{},
	}
}

// declare records a simple assignment target. Targets are assigned short names in declaration order
// by allocate.
func (r *renamer) declare(name string) {
	key := strings.ToLower(name)
	if _, ok := r.declared[key]; !ok {
		r.declared[key] = struct{}{}
		r.order = append(r.order, key)
	}
}

// pin marks a variable name to be kept as is.
func (r *renamer) pin(name string) {
	r.pinned[strings.ToLower(name)] = struct{}{}
}

// reserve marks a name that must not be generated.
func (r *renamer) reserve(name string) {
	r.reserved[strings.ToLower(name)] = struct{}{}
}

func (r *renamer) isPinned(name string) bool {
	_, ok := r.pinned[strings.ToLower(name)]
	return ok
}

func (r *renamer) isReserved(name string) bool {
	_, ok := r.reserved[name]
	return ok
}

// allocate assigns a short name to every declared target that is not pinned.
func (r *renamer) allocate() {
	for _, key := range r.order {
		if _, ok := r.pinned[key]; !ok {
			r.assign(key)
		}
	}
}

// assign registers name in the table if absent and returns its short name. The counter advances once
// per new name, and further past any reserved names.
func (r *renamer) assign(name string) string {
	key := strings.ToLower(name)
	if short, ok := r.table[key]; ok {
		return short
	}
	for r.isReserved(strings.ToLower(string(r.counter))) {
		r.counter = next(r.counter)
	}
	short := string(r.counter)
	r.table[key] = short
	r.counter = next(r.counter)
	return short
}

// lookup returns the short name of a variable, if it has one.
func (r *renamer) lookup(name string) (string, bool) {
	short, ok := r.table[strings.ToLower(name)]
	return short, ok
}

// next increments name as a base-26 numeral with digits a-z: a, b, ..., z, aa, ab, ... Upper case
// letters and digits roll over within their own range. Any other character is reset to 'a' with a
// carry. When every position carries, an 'a' is appended.
func next(name []byte) []byte {
	i := len(name) - 1
	for ; 0 <= i; i-- {
		c := name[i]
		if 'a' <= c && c < 'z' || 'A' <= c && c < 'Z' || '0' <= c && c < '9' {
			name[i]++
			break
		} else if c == 'Z' {
			name[i] = 'A'
		} else if c == '9' {
			name[i] = '0'
		} else {
			name[i] = 'a'
		}
	}
	if i < 0 {
		name = append(name, 'a')
	}
	return name
}
