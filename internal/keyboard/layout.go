package keyboard

// DecodedKey is what a key press means under the layout: either a character
// or a key with no character (arrows, function keys, ...).
type DecodedKey struct {
	Rune  rune
	Raw   KeyCode
	IsRaw bool
}

func unicode(r rune) DecodedKey    { return DecodedKey{Rune: r} }
func rawKey(k KeyCode) DecodedKey { return DecodedKey{Raw: k, IsRaw: true} }

type keyChars struct {
	plain, shifted rune
	letter         bool // caps lock inverts shift
}

// us104 maps printable keys to their unshifted and shifted characters.
var us104 = map[KeyCode]keyChars{
	KeyBacktick: {'`', '~', false},
	Key1:        {'1', '!', false}, Key2: {'2', '@', false}, Key3: {'3', '#', false},
	Key4: {'4', '$', false}, Key5: {'5', '%', false}, Key6: {'6', '^', false},
	Key7: {'7', '&', false}, Key8: {'8', '*', false}, Key9: {'9', '(', false},
	Key0: {'0', ')', false}, KeyMinus: {'-', '_', false}, KeyEquals: {'=', '+', false},
	KeyQ: {'q', 'Q', true}, KeyW: {'w', 'W', true}, KeyE: {'e', 'E', true},
	KeyR: {'r', 'R', true}, KeyT: {'t', 'T', true}, KeyY: {'y', 'Y', true},
	KeyU: {'u', 'U', true}, KeyI: {'i', 'I', true}, KeyO: {'o', 'O', true},
	KeyP: {'p', 'P', true}, KeyBracketLeft: {'[', '{', false},
	KeyBracketRight: {']', '}', false}, KeyBackslash: {'\\', '|', false},
	KeyA: {'a', 'A', true}, KeyS: {'s', 'S', true}, KeyD: {'d', 'D', true},
	KeyF: {'f', 'F', true}, KeyG: {'g', 'G', true}, KeyH: {'h', 'H', true},
	KeyJ: {'j', 'J', true}, KeyK: {'k', 'K', true}, KeyL: {'l', 'L', true},
	KeySemicolon: {';', ':', false}, KeyQuote: {'\'', '"', false},
	KeyZ: {'z', 'Z', true}, KeyX: {'x', 'X', true}, KeyC: {'c', 'C', true},
	KeyV: {'v', 'V', true}, KeyB: {'b', 'B', true}, KeyN: {'n', 'N', true},
	KeyM: {'m', 'M', true}, KeyComma: {',', '<', false}, KeyPeriod: {'.', '>', false},
	KeySlash: {'/', '?', false}, KeySpace: {' ', ' ', false},
	KeyTab: {'\t', '\t', false}, KeyEnter: {'\n', '\n', false},
	KeyNumpadEnter: {'\n', '\n', false}, KeyBackspace: {'\b', '\b', false},
	KeyEscape: {0x1B, 0x1B, false}, KeyDelete: {0x7F, 0x7F, false},
	KeyNumpadMultiply: {'*', '*', false}, KeyNumpadSubtract: {'-', '-', false},
	KeyNumpadAdd: {'+', '+', false}, KeyNumpadDivide: {'/', '/', false},
}

// numpad keys produce digits only while num lock is on
var numpad = map[KeyCode]rune{
	KeyNumpad0: '0', KeyNumpad1: '1', KeyNumpad2: '2', KeyNumpad3: '3',
	KeyNumpad4: '4', KeyNumpad5: '5', KeyNumpad6: '6', KeyNumpad7: '7',
	KeyNumpad8: '8', KeyNumpad9: '9', KeyNumpadPeriod: '.',
}

// Modifiers is the latched modifier state of a Keyboard.
type Modifiers struct {
	LShift, RShift     bool
	LControl, RControl bool
	Alt                bool
	CapsLock           bool
	NumLock            bool
}

func (m Modifiers) shifted() bool { return m.LShift || m.RShift }

// Keyboard decodes scancodes and applies the US 104-key layout. Control
// combinations are ignored: Ctrl+C yields 'c'.
type Keyboard struct {
	dec  Decoder
	mods Modifiers
}

// NewKeyboard returns a keyboard with num lock on.
func NewKeyboard() *Keyboard {
	return &Keyboard{mods: Modifiers{NumLock: true}}
}

// AddByte feeds one scancode byte.
func (k *Keyboard) AddByte(b byte) (KeyEvent, bool) {
	return k.dec.Add(b)
}

// Modifiers returns the current modifier state.
func (k *Keyboard) Modifiers() Modifiers { return k.mods }

// Process updates modifier state and decodes key presses. Releases
// and modifier keys yield ok == false.
func (k *Keyboard) Process(ev KeyEvent) (DecodedKey, bool) {
	down := ev.State == KeyDown
	switch ev.Code {
	case KeyLShift:
		k.mods.LShift = down
		return DecodedKey{}, false
	case KeyRShift:
		k.mods.RShift = down
		return DecodedKey{}, false
	case KeyLControl:
		k.mods.LControl = down
		return DecodedKey{}, false
	case KeyRControl:
		k.mods.RControl = down
		return DecodedKey{}, false
	case KeyLAlt, KeyRAltGr:
		k.mods.Alt = down
		return DecodedKey{}, false
	case KeyCapsLock:
		if down {
			k.mods.CapsLock = !k.mods.CapsLock
		}
		return DecodedKey{}, false
	case KeyNumLock:
		if down {
			k.mods.NumLock = !k.mods.NumLock
		}
		return DecodedKey{}, false
	}
	if !down {
		return DecodedKey{}, false
	}

	if r, ok := numpad[ev.Code]; ok {
		if k.mods.NumLock {
			return unicode(r), true
		}
		return rawKey(ev.Code), true
	}
	chars, ok := us104[ev.Code]
	if !ok {
		return rawKey(ev.Code), true
	}
	upper := k.mods.shifted()
	if chars.letter && k.mods.CapsLock {
		upper = !upper
	}
	if upper {
		return unicode(chars.shifted), true
	}
	return unicode(chars.plain), true
}

// Stroke is how to type one character: press Code, holding Shift if set.
type Stroke struct {
	Code  KeyCode
	Shift bool
}

// StrokeFor returns the key press that types r with caps lock off. Main
// block keys win over their numpad duplicates.
func StrokeFor(r rune) (Stroke, bool) {
	var fallback *Stroke
	for code := KeyNone; code < keyCodeCount; code++ {
		chars, ok := us104[code]
		if !ok {
			continue
		}
		if isNumpad(code) {
			if chars.plain == r && fallback == nil {
				fallback = &Stroke{Code: code}
			}
			continue
		}
		if chars.plain == r {
			return Stroke{Code: code}, true
		}
		if chars.shifted == r {
			return Stroke{Code: code, Shift: true}, true
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Stroke{}, false
}

func isNumpad(k KeyCode) bool {
	switch k {
	case KeyNumpadMultiply, KeyNumpadSubtract, KeyNumpadAdd, KeyNumpadDivide, KeyNumpadEnter:
		return true
	}
	return false
}

// Scancodes returns the set 1 byte sequence that types r.
func (s Stroke) Scancodes() []byte {
	var out []byte
	if s.Shift {
		out = append(out, MakeCode(KeyLShift)...)
	}
	out = append(out, MakeCode(s.Code)...)
	out = append(out, BreakCode(s.Code)...)
	if s.Shift {
		out = append(out, BreakCode(KeyLShift)...)
	}
	return out
}
