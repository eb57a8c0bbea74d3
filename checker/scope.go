package checker

type scope struct {
	parent *scope
	names  map[string]Type
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]Type{}}
}

// lookup returns the binding for name and how many scopes outward it lives.
func (s *scope) lookup(name string) (Type, int, bool) {
	hops := 0
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.names[name]; ok {
			return t, hops, true
		}
		hops++
	}
	return nil, 0, false
}

func (s *scope) define(name string, t Type) bool {
	if _, exists := s.names[name]; exists {
		return false
	}
	s.names[name] = t
	return true
}

func (s *scope) snapshot() map[string]Type {
	saved := make(map[string]Type, len(s.names))
	for k, v := range s.names {
		saved[k] = v
	}
	return saved
}
