package keyboard

const (
	extendedPrefix = 0xE0
	breakBit       = 0x80
)

// set 1 make codes; index = scancode
var set1 = [...]KeyCode{
	0x01: KeyEscape,
	0x02: Key1, 0x03: Key2, 0x04: Key3, 0x05: Key4, 0x06: Key5,
	0x07: Key6, 0x08: Key7, 0x09: Key8, 0x0A: Key9, 0x0B: Key0,
	0x0C: KeyMinus, 0x0D: KeyEquals, 0x0E: KeyBackspace, 0x0F: KeyTab,
	0x10: KeyQ, 0x11: KeyW, 0x12: KeyE, 0x13: KeyR, 0x14: KeyT,
	0x15: KeyY, 0x16: KeyU, 0x17: KeyI, 0x18: KeyO, 0x19: KeyP,
	0x1A: KeyBracketLeft, 0x1B: KeyBracketRight, 0x1C: KeyEnter, 0x1D: KeyLControl,
	0x1E: KeyA, 0x1F: KeyS, 0x20: KeyD, 0x21: KeyF, 0x22: KeyG,
	0x23: KeyH, 0x24: KeyJ, 0x25: KeyK, 0x26: KeyL,
	0x27: KeySemicolon, 0x28: KeyQuote, 0x29: KeyBacktick, 0x2A: KeyLShift,
	0x2B: KeyBackslash,
	0x2C: KeyZ, 0x2D: KeyX, 0x2E: KeyC, 0x2F: KeyV, 0x30: KeyB, 0x31: KeyN, 0x32: KeyM,
	0x33: KeyComma, 0x34: KeyPeriod, 0x35: KeySlash, 0x36: KeyRShift,
	0x37: KeyNumpadMultiply, 0x38: KeyLAlt, 0x39: KeySpace, 0x3A: KeyCapsLock,
	0x3B: KeyF1, 0x3C: KeyF2, 0x3D: KeyF3, 0x3E: KeyF4, 0x3F: KeyF5,
	0x40: KeyF6, 0x41: KeyF7, 0x42: KeyF8, 0x43: KeyF9, 0x44: KeyF10,
	0x45: KeyNumLock, 0x46: KeyScrollLock,
	0x47: KeyNumpad7, 0x48: KeyNumpad8, 0x49: KeyNumpad9, 0x4A: KeyNumpadSubtract,
	0x4B: KeyNumpad4, 0x4C: KeyNumpad5, 0x4D: KeyNumpad6, 0x4E: KeyNumpadAdd,
	0x4F: KeyNumpad1, 0x50: KeyNumpad2, 0x51: KeyNumpad3,
	0x52: KeyNumpad0, 0x53: KeyNumpadPeriod,
	0x57: KeyF11, 0x58: KeyF12,
}

// set 1 make codes following 0xE0
var set1Extended = map[byte]KeyCode{
	0x1C: KeyNumpadEnter, 0x1D: KeyRControl, 0x35: KeyNumpadDivide, 0x38: KeyRAltGr,
	0x47: KeyHome, 0x48: KeyArrowUp, 0x49: KeyPageUp, 0x4B: KeyArrowLeft,
	0x4D: KeyArrowRight, 0x4F: KeyEnd, 0x50: KeyArrowDown, 0x51: KeyPageDown,
	0x52: KeyInsert, 0x53: KeyDelete, 0x5B: KeyLWin, 0x5C: KeyRWin, 0x5D: KeyApps,
}

// Decoder turns a scancode set 1 byte stream into key events.
type Decoder struct {
	extended bool
}

// Add feeds one byte. ok is false for prefix bytes and unknown codes.
func (d *Decoder) Add(b byte) (ev KeyEvent, ok bool) {
	if b == extendedPrefix {
		d.extended = true
		return KeyEvent{}, false
	}
	ext := d.extended
	d.extended = false

	state := KeyDown
	if b&breakBit != 0 {
		state = KeyUp
		b &^= breakBit
	}

	var code KeyCode
	if ext {
		code = set1Extended[b]
	} else if int(b) < len(set1) {
		code = set1[b]
	}
	if code == KeyNone {
		return KeyEvent{}, false
	}
	return KeyEvent{Code: code, State: state}, true
}

// MakeCode returns the set 1 bytes sent when code is pressed.
func MakeCode(code KeyCode) []byte {
	for b, c := range set1Extended {
		if c == code {
			return []byte{extendedPrefix, b}
		}
	}
	for b, c := range set1 {
		if c == code && code != KeyNone {
			return []byte{byte(b)} //nolint:gosec // set1 has fewer than 256 entries
		}
	}
	return nil
}

// BreakCode returns the set 1 bytes sent when code is released.
func BreakCode(code KeyCode) []byte {
	mk := MakeCode(code)
	if len(mk) == 0 {
		return nil
	}
	mk[len(mk)-1] |= breakBit
	return mk
}
