package keyboard

// KeyCode names a physical key, independent of layout.
type KeyCode uint8

const (
	KeyNone KeyCode = iota
	KeyEscape
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyMinus
	KeyEquals
	KeyBackspace
	KeyTab
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyBracketLeft
	KeyBracketRight
	KeyEnter
	KeyLControl
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySemicolon
	KeyQuote
	KeyBacktick
	KeyLShift
	KeyBackslash
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyComma
	KeyPeriod
	KeySlash
	KeyRShift
	KeyNumpadMultiply
	KeyLAlt
	KeySpace
	KeyCapsLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyNumLock
	KeyScrollLock
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadSubtract
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpadAdd
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad0
	KeyNumpadPeriod
	KeyF11
	KeyF12
	// extended (0xE0-prefixed) keys
	KeyNumpadEnter
	KeyRControl
	KeyNumpadDivide
	KeyRAltGr
	KeyHome
	KeyArrowUp
	KeyPageUp
	KeyArrowLeft
	KeyArrowRight
	KeyEnd
	KeyArrowDown
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyLWin
	KeyRWin
	KeyApps
	keyCodeCount
)

var keyNames = [keyCodeCount]string{
	KeyNone: "None", KeyEscape: "Escape",
	Key1: "Key1", Key2: "Key2", Key3: "Key3", Key4: "Key4", Key5: "Key5",
	Key6: "Key6", Key7: "Key7", Key8: "Key8", Key9: "Key9", Key0: "Key0",
	KeyMinus: "Minus", KeyEquals: "Equals", KeyBackspace: "Backspace", KeyTab: "Tab",
	KeyQ: "Q", KeyW: "W", KeyE: "E", KeyR: "R", KeyT: "T", KeyY: "Y", KeyU: "U",
	KeyI: "I", KeyO: "O", KeyP: "P",
	KeyBracketLeft: "BracketLeft", KeyBracketRight: "BracketRight", KeyEnter: "Enter",
	KeyLControl: "LControl",
	KeyA: "A", KeyS: "S", KeyD: "D", KeyF: "F", KeyG: "G", KeyH: "H", KeyJ: "J",
	KeyK: "K", KeyL: "L",
	KeySemicolon: "Semicolon", KeyQuote: "Quote", KeyBacktick: "Backtick",
	KeyLShift: "LShift", KeyBackslash: "Backslash",
	KeyZ: "Z", KeyX: "X", KeyC: "C", KeyV: "V", KeyB: "B", KeyN: "N", KeyM: "M",
	KeyComma: "Comma", KeyPeriod: "Period", KeySlash: "Slash", KeyRShift: "RShift",
	KeyNumpadMultiply: "NumpadMultiply", KeyLAlt: "LAlt", KeySpace: "Space",
	KeyCapsLock: "CapsLock",
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",
	KeyNumLock: "NumLock", KeyScrollLock: "ScrollLock",
	KeyNumpad7: "Numpad7", KeyNumpad8: "Numpad8", KeyNumpad9: "Numpad9",
	KeyNumpadSubtract: "NumpadSubtract",
	KeyNumpad4: "Numpad4", KeyNumpad5: "Numpad5", KeyNumpad6: "Numpad6",
	KeyNumpadAdd: "NumpadAdd",
	KeyNumpad1: "Numpad1", KeyNumpad2: "Numpad2", KeyNumpad3: "Numpad3",
	KeyNumpad0: "Numpad0", KeyNumpadPeriod: "NumpadPeriod",
	KeyNumpadEnter: "NumpadEnter", KeyRControl: "RControl", KeyNumpadDivide: "NumpadDivide",
	KeyRAltGr: "RAltGr", KeyHome: "Home", KeyArrowUp: "ArrowUp", KeyPageUp: "PageUp",
	KeyArrowLeft: "ArrowLeft", KeyArrowRight: "ArrowRight", KeyEnd: "End",
	KeyArrowDown: "ArrowDown", KeyPageDown: "PageDown", KeyInsert: "Insert",
	KeyDelete: "Delete", KeyLWin: "LWin", KeyRWin: "RWin", KeyApps: "Apps",
}

func (k KeyCode) String() string {
	if k < keyCodeCount {
		return keyNames[k]
	}
	return "Unknown"
}

// ParseKeyCode looks a key up by its String name, case-sensitively.
func ParseKeyCode(name string) (KeyCode, bool) {
	for i, n := range keyNames {
		if n == name && n != "" {
			return KeyCode(i), true //nolint:gosec // i < keyCodeCount
		}
	}
	return KeyNone, false
}

// KeyState is the direction of a key transition.
type KeyState uint8

const (
	KeyUp KeyState = iota
	KeyDown
)

func (s KeyState) String() string {
	if s == KeyDown {
		return "Down"
	}
	return "Up"
}

// KeyEvent is one decoded key transition.
type KeyEvent struct {
	Code  KeyCode
	State KeyState
}
