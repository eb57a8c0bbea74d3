package interp

// Env is one runtime scope. Children point at their parent; nothing
// points the other way, so an Env is released with the frame that made it.
type Env struct {
	parent *Env
	slots  map[string]Value
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, slots: map[string]Value{}}
}

func (e *Env) Define(name string, v Value) {
	e.slots[name] = v
}

// Has reports whether name is bound in this scope itself.
func (e *Env) Has(name string) bool {
	_, ok := e.slots[name]
	return ok
}

// ancestor walks hops scopes outward.
func (e *Env) ancestor(hops int) *Env {
	cur := e
	for i := 0; i < hops && cur != nil; i++ {
		cur = cur.parent
	}
	return cur
}

func (e *Env) get(name string, hops int) (Value, bool) {
	scope := e.ancestor(hops)
	if scope == nil {
		return nil, false
	}
	v, ok := scope.slots[name]
	return v, ok
}

// set overwrites an existing slot. It never creates one.
func (e *Env) set(name string, hops int, v Value) bool {
	scope := e.ancestor(hops)
	if scope == nil {
		return false
	}
	if _, ok := scope.slots[name]; !ok {
		return false
	}
	scope.slots[name] = v
	return true
}

// Names lists the bindings of this scope only.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.slots))
	for name := range e.slots {
		names = append(names, name)
	}
	return names
}
