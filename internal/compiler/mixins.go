package compiler

type mixinRecord struct {
	used        bool
	definitions int
}

// MixinRegistry tracks mixin definitions and calls during a single
// compilation and removes definitions that are never called.
type MixinRegistry struct {
	records map[string]*mixinRecord
	order   []string
	dynamic bool
}

// NewMixinRegistry creates an empty registry.
func NewMixinRegistry() *MixinRegistry {
	return &MixinRegistry{records: make(map[string]*mixinRecord)}
}

func (r *MixinRegistry) record(key string) *mixinRecord {
	rec, ok := r.records[key]
	if !ok {
		rec = &mixinRecord{}
		r.records[key] = rec
		r.order = append(r.order, key)
	}
	return rec
}

// Define records a definition of the mixin with the given key.
func (r *MixinRegistry) Define(key string) {
	r.record(key).definitions++
}

// Use records a call of the mixin with the given key.
func (r *MixinRegistry) Use(key string) {
	r.record(key).used = true
}

// MarkDynamic records a call through a computed name. Any mixin may be
// reached that way, so elimination is disabled for the compilation.
func (r *MixinRegistry) MarkDynamic() {
	r.dynamic = true
}

// Dynamic reports whether a dynamic call was seen.
func (r *MixinRegistry) Dynamic() bool {
	return r.dynamic
}

// Unused returns the keys of defined mixins that were never called, in
// first-seen order. It is empty when a dynamic call was seen.
func (r *MixinRegistry) Unused() []string {
	if r.dynamic {
		return nil
	}
	var unused []string
	for _, key := range r.order {
		rec := r.records[key]
		if rec.definitions > 0 && !rec.used {
			unused = append(unused, key)
		}
	}
	return unused
}

// Eliminate drops every line owned by an unused mixin definition and
// returns the number of lines removed.
func (r *MixinRegistry) Eliminate(p *Program) int {
	unused := r.Unused()
	if len(unused) == 0 {
		return 0
	}
	dead := make(map[string]bool, len(unused))
	for _, key := range unused {
		dead[key] = true
	}
	return p.Filter(func(l Line) bool {
		for _, owner := range l.Owners {
			if dead[owner] {
				return true
			}
		}
		return false
	})
}
