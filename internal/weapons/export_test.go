package weapons

// DropHandle removes the handle at index i without touching its projectile.
func (m *Manager) DropHandle(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles = append(m.handles[:i], m.handles[i+1:]...)
}

// HandleCount is the length of the handle list.
func (m *Manager) HandleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

// HandleAt exposes the handle paired with projectile i.
func (m *Manager) HandleAt(i int) Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handles[i]
}
