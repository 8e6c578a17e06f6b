package framework

import "sync"

// Resource guards state shared between tasks of different priorities.
//
// The tasks allowed to touch the resource are declared up front; the
// highest of them is the ceiling. Lock runs a short critical section that
// excludes every other declared user, which is what raising to the
// ceiling achieves on a single core. Locking from an undeclared priority
// is a wiring defect and panics.
type Resource struct {
	name    string
	users   uint32
	ceiling Priority
	lock    sync.Mutex
}

// NewResource declares a resource and the priorities of its users.
func NewResource(name string, users ...Priority) *Resource {
	r := &Resource{name: name}
	for _, p := range users {
		if !p.IsValid() || p == PrIdle {
			Violate("resource %q: invalid user priority %d", name, p)
		}
		r.users |= 1 << uint(p)
		if p > r.ceiling {
			r.ceiling = p
		}
	}
	return r
}

// Name implements Named.
func (r *Resource) Name() string { return r.name }

// Ceiling returns the highest priority among users.
func (r *Resource) Ceiling() Priority { return r.ceiling }

// IsUser checks whether tasks of priority p may lock the resource.
func (r *Resource) IsUser(p Priority) bool {
	return p.IsValid() && r.users&(1<<uint(p)) != 0
}

// Lock runs fn inside the critical section of the resource.
func (r *Resource) Lock(t *Task, fn func()) {
	if !r.IsUser(t.priority) {
		Violate("task %q (%v) locks undeclared resource %q", t.name, t.priority, r.name)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	fn()
}
