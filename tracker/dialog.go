package tracker

type (
	// Dialog asks the user for input before a structural edit. Prompt returns
	// the string the user typed, starting from initial; ok is false if the
	// user cancelled. Confirm returns true only if the user accepted. A
	// cancelled dialog never mutates the track.
	Dialog interface {
		Prompt(title, initial string) (value string, ok bool)
		Confirm(message string) bool
	}

	// NullDialog cancels every prompt and confirmation.
	NullDialog struct{}

	// FixedDialog answers every prompt with Value and every confirmation with
	// Accept. Hosts without a modal use it to script edits, e.g. from the
	// command line.
	FixedDialog struct {
		Value  string
		Accept bool
	}
)

func (NullDialog) Prompt(title, initial string) (string, bool) { return "", false }
func (NullDialog) Confirm(message string) bool                 { return false }

func (d FixedDialog) Prompt(title, initial string) (string, bool) { return d.Value, d.Accept }
func (d FixedDialog) Confirm(message string) bool                 { return d.Accept }
