package machine

// Legacy ISA IRQ lines.
const (
	IRQTimer    uint8 = 0
	IRQKeyboard uint8 = 1
)

// Vectors the kernel routes the legacy IRQs to: the first slots after the
// 32 CPU exception vectors.
const (
	VectorTimer    uint8 = 32
	VectorKeyboard uint8 = 33
)

type redirection struct {
	vector uint8
	masked bool
}

// Route points irq at vector and unmasks it.
func (m *Machine) Route(irq, vector uint8) {
	m.mu.Lock()
	m.redirect[irq] = redirection{vector: vector}
	m.mu.Unlock()
}

// Mask stops irq from reaching the CPU. Unrouted IRQs are always masked.
func (m *Machine) Mask(irq uint8, masked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.redirect[irq]; ok {
		r.masked = masked
		m.redirect[irq] = r
	}
}

// IRQ asserts a legacy interrupt line.
func (m *Machine) IRQ(irq uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irqLocked(irq)
}

func (m *Machine) irqLocked(irq uint8) {
	r, ok := m.redirect[irq]
	if !ok || r.masked {
		m.masked.Add(1)
		return
	}
	m.pending[r.vector] = true
	m.dispatchLocked()
}
