package format

// CharClass restricts which printable keystrokes a mask accepts.
type CharClass int

const (
	// AnyChar accepts every keystroke.
	AnyChar CharClass = iota
	// DigitsOnly accepts 0-9.
	DigitsOnly
	// Alphanumeric accepts a-z, A-Z and 0-9.
	Alphanumeric
)

// Key describes a keydown event as delivered by the UI layer.
type Key struct {
	// Name is the key name ("a", "5", "Backspace", "ArrowLeft", ...).
	Name  string
	Ctrl  bool
	Meta  bool
	Alt   bool
	Shift bool
}

var editingKeys = map[string]struct{}{
	"Backspace":  {},
	"Delete":     {},
	"ArrowLeft":  {},
	"ArrowRight": {},
	"ArrowUp":    {},
	"ArrowDown":  {},
	"Tab":        {},
	"Home":       {},
	"End":        {},
	"Enter":      {},
	"Escape":     {},
}

// ClassOf reports the keystroke restriction of a formatter.
func ClassOf(id ID) CharClass {
	switch id {
	case NationalID, TaxID, Phone, CreditCard, Date:
		return DigitsOnly
	case IBAN, Plate:
		return Alphanumeric
	default:
		return AnyChar
	}
}

// Allow reports whether key may reach a field restricted to class. Editing and
// navigation keys and modifier combinations (copy, paste, ...) always pass.
func (class CharClass) Allow(key Key) bool {
	if class == AnyChar {
		return true
	}
	if key.Ctrl || key.Meta || key.Alt {
		return true
	}
	if _, ok := editingKeys[key.Name]; ok {
		return true
	}
	if len(key.Name) != 1 {
		return false
	}
	c := key.Name[0]
	switch class {
	case DigitsOnly:
		return isDigit(c)
	case Alphanumeric:
		return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}
	return true
}
