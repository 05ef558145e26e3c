package machine

// 8042 keyboard controller ports.
const (
	PortKeyboardData   uint16 = 0x60
	PortKeyboardStatus uint16 = 0x64
)

// status register bits
const statusOutputFull = 0x01

// DeviceBufferSize bounds the bytes a keyboard can queue behind the
// controller before it starts losing them.
const DeviceBufferSize = 1024

type keyboardController struct {
	buf   []byte
	last  byte
	limit int
}

// ReadPort performs an inb. Reading the data port takes the latched byte and
// raises IRQ1 again if the device has more.
func (m *Machine) ReadPort(port uint16) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch port {
	case PortKeyboardData:
		if len(m.kbd.buf) == 0 {
			return m.kbd.last
		}
		m.kbd.last = m.kbd.buf[0]
		m.kbd.buf = m.kbd.buf[1:]
		if len(m.kbd.buf) > 0 {
			m.irqLocked(IRQKeyboard)
		}
		return m.kbd.last
	case PortKeyboardStatus:
		if len(m.kbd.buf) > 0 {
			return statusOutputFull
		}
		return 0
	}
	return 0xFF
}

// Inject has the keyboard send scancodes. The controller latches one byte
// per IRQ1. It returns how many bytes were accepted.
func (m *Machine) Inject(scancodes ...byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	wasEmpty := len(m.kbd.buf) == 0
	n := 0
	for _, b := range scancodes {
		if len(m.kbd.buf) >= m.kbd.limit {
			m.dropped.Add(1)
			continue
		}
		m.kbd.buf = append(m.kbd.buf, b)
		n++
	}
	if wasEmpty && n > 0 {
		m.irqLocked(IRQKeyboard)
	}
	return n
}

// DeviceBuffered reports bytes the keyboard has sent that the kernel has not
// read from the data port yet.
func (m *Machine) DeviceBuffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.kbd.buf)
}
