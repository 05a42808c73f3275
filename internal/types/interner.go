package types

import "sync"

// Interner is the single source of truth for type identity (spec 4.1): the
// hash-consed type graph plus the out-of-line shape tables. The zero value
// is not ready for use; call New.
//
// Concurrency (spec 5): interning is lock-scoped and short. Once a TypeId
// has been handed back from Intern, its Data is immutable, so Lookup never
// needs to take the lock to return a value that could be torn by a
// concurrent writer — it only needs the lock to safely index the backing
// slice while another goroutine might be appending to it.
type Interner struct {
	mu sync.RWMutex

	data []Data // index 0 unused (Invalid)
	byKey map[string]TypeId

	objectShapes   []*ObjectShape
	functionShapes []*FunctionShape
	callableShapes []*CallableShape

	objectShapeByKey   map[string]ObjectShapeId
	functionShapeByKey map[string]FunctionShapeId
	callableShapeByKey map[string]CallableShapeId

	lists *typeListInterner
}

// New returns an Interner with the fourteen well-known TypeIds pre-allocated
// at the fixed values spec 3.2 requires.
func New() *Interner {
	in := &Interner{
		data:               make([]Data, 1, 64),
		byKey:              make(map[string]TypeId, 64),
		objectShapeByKey:   make(map[string]ObjectShapeId),
		functionShapeByKey: make(map[string]FunctionShapeId),
		callableShapeByKey: make(map[string]CallableShapeId),
		lists:              newTypeListInterner(),
	}
	in.bootstrapWellKnown()
	return in
}

func (in *Interner) bootstrapWellKnown() {
	order := []TypeId{Any, Unknown, Never, Void, Null, Undefined, String, Number, Boolean, BigInt, Symbol, NonPrimitive, Error, PromiseBase}
	for _, id := range order {
		tag := wellKnownTag[id]
		got := in.internNoCanon(Primitive{Tag: tag})
		if got != id {
			panic("types: well-known TypeId bootstrap order does not match ids.go constants")
		}
	}
}

// Lookup returns the Data stored for id, or (nil, false) if id is unknown to
// this interner.
func (in *Interner) Lookup(id TypeId) (Data, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == Invalid || int(id) >= len(in.data) {
		return nil, false
	}
	return in.data[id], true
}

// MustLookup panics if id is not known; used internally once a TypeId has
// already been validated by the caller (e.g. it came from Intern).
func (in *Interner) MustLookup(id TypeId) Data {
	d, ok := in.Lookup(id)
	if !ok {
		panic("types: MustLookup on an unknown TypeId")
	}
	return d
}

func (in *Interner) ObjectShape(id ObjectShapeId) *ObjectShape {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.objectShapes[id]
}

func (in *Interner) FunctionShape(id FunctionShapeId) *FunctionShape {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.functionShapes[id]
}

func (in *Interner) CallableShape(id CallableShapeId) *CallableShape {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.callableShapes[id]
}

func (in *Interner) TypeList(id TypeListId) []TypeId {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lists.get(id)
}

// addObjectShape hash-conses s against the object-shape table so that two
// structurally identical shapes (same properties, same index signatures,
// same nested signature ids) share one ObjectShapeId -- required for
// Object() to, in turn, hash-cons to one TypeId (spec: testable property 1).
func (in *Interner) addObjectShape(s ObjectShape, withIndex bool) ObjectShapeId {
	in.mu.Lock()
	defer in.mu.Unlock()
	key := objectShapeKey(s, withIndex)
	if id, ok := in.objectShapeByKey[key]; ok {
		return id
	}
	in.objectShapes = append(in.objectShapes, &s)
	id := ObjectShapeId(len(in.objectShapes) - 1)
	in.objectShapeByKey[key] = id
	return id
}

func (in *Interner) addFunctionShape(s FunctionShape) FunctionShapeId {
	in.mu.Lock()
	defer in.mu.Unlock()
	key := functionShapeKey(s)
	if id, ok := in.functionShapeByKey[key]; ok {
		return id
	}
	in.functionShapes = append(in.functionShapes, &s)
	id := FunctionShapeId(len(in.functionShapes) - 1)
	in.functionShapeByKey[key] = id
	return id
}

func (in *Interner) addCallableShape(s CallableShape) CallableShapeId {
	in.mu.Lock()
	defer in.mu.Unlock()
	key := callableShapeKey(s)
	if id, ok := in.callableShapeByKey[key]; ok {
		return id
	}
	in.callableShapes = append(in.callableShapes, &s)
	id := CallableShapeId(len(in.callableShapes) - 1)
	in.callableShapeByKey[key] = id
	return id
}

func (in *Interner) internList(ids []TypeId) TypeListId {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lists.internRaw(ids)
}

// InternTypeList exposes internList to other packages (internal/solver
// builds Application argument lists directly when expanding generics).
func (in *Interner) InternTypeList(ids []TypeId) TypeListId {
	return in.internList(ids)
}

// internNoCanon inserts data verbatim, bypassing Intern's canonicalization
// pass. Only the bootstrap path and canonicalization helpers that have
// already normalized their input should call this.
func (in *Interner) internNoCanon(d Data) TypeId {
	in.mu.Lock()
	defer in.mu.Unlock()
	key := canonicalKey(d)
	if id, ok := in.byKey[key]; ok {
		return id
	}
	id := TypeId(len(in.data))
	in.data = append(in.data, d)
	in.byKey[key] = id
	return id
}
