// Package atom interns short-lived strings (identifiers, property names,
// template-literal text spans) into compact, comparable handles.
package atom

import "sync"

// Atom is an opaque handle for an interned string. Two atoms compare equal
// iff the strings they were interned from compare equal.
type Atom uint32

// Invalid is the zero value; no real atom is ever assigned it.
const Invalid Atom = 0

// Interner deduplicates strings across a compilation. The zero value is not
// ready for use; call New.
type Interner struct {
	mu      sync.Mutex
	byText  map[string]Atom
	byAtom  []string // index 0 is the unused Invalid slot
}

// New returns a ready-to-use Interner.
func New() *Interner {
	return &Interner{
		byText: make(map[string]Atom),
		byAtom: []string{""},
	}
}

// Intern returns the atom for s, minting one if s has not been seen before.
// Safe for concurrent use; the lock is held only long enough to check/insert.
func (in *Interner) Intern(s string) Atom {
	in.mu.Lock()
	defer in.mu.Unlock()
	if a, ok := in.byText[s]; ok {
		return a
	}
	a := Atom(len(in.byAtom))
	in.byAtom = append(in.byAtom, s)
	in.byText[s] = a
	return a
}

// Text reconstructs the string an atom was interned from. Panics on an atom
// not produced by this interner (including Invalid).
func (in *Interner) Text(a Atom) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if a == Invalid || int(a) >= len(in.byAtom) {
		panic("atom: Text called with a handle not owned by this interner")
	}
	return in.byAtom[a]
}

// Len reports how many distinct strings have been interned.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.byAtom) - 1
}
