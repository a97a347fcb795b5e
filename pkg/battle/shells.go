package battle

// moveShells runs one shell sub-phase: every live shell advances one cell
// in storage order and resolves what it runs into.
func (m *match) moveShells() {
	for _, s := range m.shells {
		if s.dead {
			continue
		}

		if s.pointBlank {
			s.pointBlank = false
			if victim := m.tankAt(s.x, s.y, nil); victim != nil {
				victim.alive = false
				s.dead = true
				continue
			}
		}

		x, y := m.next(s.x, s.y, s.dir)
		i := m.idx(x, y)
		s.aboveMine = false

		if m.opposingShellAt(x, y, s) {
			for _, o := range m.shells {
				if !o.dead && o.x == x && o.y == y {
					o.dead = true
				}
			}
			s.dead = true
			continue
		}

		switch m.ground[i] {
		case groundWall:
			m.ground[i] = groundWeakWall
			s.dead = true
			continue
		case groundWeakWall:
			m.ground[i] = groundEmpty
			s.dead = true
			continue
		case groundEmpty, groundMine:
		}

		if victim := m.tankAt(x, y, nil); victim != nil {
			victim.alive = false
			s.dead = true
			continue
		}

		// Another shell may already be here travelling in a different
		// direction; both keep moving independently.
		s.x, s.y = x, y
		s.aboveMine = m.ground[i] == groundMine
	}
	m.compactShells()
}

func (m *match) opposingShellAt(x, y int, s *shell) bool {
	for _, o := range m.shells {
		if o != s && !o.dead && o.x == x && o.y == y && o.dir.IsOpposite(s.dir) {
			return true
		}
	}
	return false
}

// destroyColocatedShells removes every shell that shares its cell with
// another shell once both sub-phases are done.
func (m *match) destroyColocatedShells() {
	count := make(map[int]int, len(m.shells))
	for _, s := range m.shells {
		if !s.dead {
			count[m.idx(s.x, s.y)]++
		}
	}
	for _, s := range m.shells {
		if count[m.idx(s.x, s.y)] > 1 {
			s.dead = true
		}
	}
	m.compactShells()
}

func (m *match) compactShells() {
	live := m.shells[:0]
	for _, s := range m.shells {
		if !s.dead {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(m.shells); i++ {
		m.shells[i] = nil
	}
	m.shells = live
}
