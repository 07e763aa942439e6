package motion

// Window keeps the most recently finalized trajectories, newest first.
// Once capacity is exceeded the oldest entries are evicted.
type Window struct {
	items    []*Trajectory
	capacity int
}

func NewWindow(capacity int) *Window {
	return &Window{
		items:    make([]*Trajectory, 0, capacity+1),
		capacity: capacity,
	}
}

// Push inserts trajectory at the front and evicts from the back down to capacity
func (w *Window) Push(traj *Trajectory) {
	w.items = append(w.items, nil)
	copy(w.items[1:], w.items)
	w.items[0] = traj
	for len(w.items) > w.capacity {
		w.items[len(w.items)-1] = nil
		w.items = w.items[:len(w.items)-1]
	}
}

// Full returns true if window holds exactly capacity trajectories
func (w *Window) Full() bool {
	return len(w.items) == w.capacity
}

func (w *Window) Len() int {
	return len(w.items)
}

func (w *Window) Cap() int {
	return w.capacity
}

// Front returns the most recently finalized trajectory or nil
func (w *Window) Front() *Trajectory {
	if len(w.items) == 0 {
		return nil
	}
	return w.items[0]
}

// Items returns copy of window's content, newest first
func (w *Window) Items() []*Trajectory {
	out := make([]*Trajectory, len(w.items))
	copy(out, w.items)
	return out
}

// Clear drops every trajectory
func (w *Window) Clear() {
	clear(w.items)
	w.items = w.items[:0]
}
