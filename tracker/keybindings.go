package tracker

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// KeyEvent is a key press with its modifiers. Shortcut is the platform
	// shortcut modifier (Ctrl, or Command on macOS).
	KeyEvent struct {
		Name            Key
		Shortcut, Shift bool
	}

	KeyBinding struct {
		Key             string
		Shortcut, Shift bool
		Action          string
	}
)

var keyBindingMap = map[KeyEvent]string{}

//go:embed keybindings.yml
var defaultKeyBindings []byte

func init() {
	var keyBindings, userKeyBindings []KeyBinding
	dec := yaml.NewDecoder(bytes.NewReader(defaultKeyBindings))
	dec.KnownFields(true)
	if err := dec.Decode(&keyBindings); err != nil {
		panic(fmt.Errorf("failed to unmarshal default keybindings: %w", err))
	}
	if exists, err := ReadCustomConfigYml("keybindings.yml", &userKeyBindings); exists && err == nil {
		keyBindings = append(keyBindings, userKeyBindings...)
	}
	for _, kb := range keyBindings {
		e := KeyEvent{Name: Key(kb.Key), Shortcut: kb.Shortcut, Shift: kb.Shift}
		if kb.Action == "" { // unbind
			delete(keyBindingMap, e)
		} else {
			keyBindingMap[e] = kb.Action
		}
	}
}

// KeyEvent handles a key press: bound keys run their action, other keys
// without modifiers go to the in-place editor. Returns false if the key was
// not used. Copy puts the copied data to clipboard; Paste reads it.
func (m *Model) KeyEvent(e KeyEvent, clipboard *[]byte) bool {
	action, ok := keyBindingMap[normalizeKeyEvent(e)]
	if !ok {
		if e.Shortcut {
			return false
		}
		return m.Editor().Key(e.Name)
	}
	c := m.d.Cursor
	switch action {
	case "Undo":
		m.History().Undo().Do()
	case "Redo":
		m.History().Redo().Do()
	case "Save":
		m.Save().Do()
	case "Copy":
		if data, ok := m.Editor().CopyColumn(c.Col, c.Row, c.Row); ok && clipboard != nil {
			*clipboard = data
		}
	case "Paste":
		if clipboard != nil {
			m.Editor().Paste(*clipboard)
		}
	case "CloneRow":
		m.Arrangement().CloneRow(m.d.PlaylistRow).Do()
	case "DeleteRow":
		m.Arrangement().DeleteRow(m.d.PlaylistRow).Do()
	case "AddSection":
		m.Arrangement().AddSection().Do()
	case "AddLane":
		m.Grid().AddLane().Do()
	case "TogglePlay":
		m.Playing().Bool().Toggle()
	case "PlaySong":
		m.Play().Song().Do()
	case "Stop":
		m.Play().Stop().Do()
	case "ToggleFollow":
		m.Follow().Bool().Toggle()
	case "TogglePatternMode":
		m.IsPatternMode().Bool().Toggle()
	case "PreviousRow":
		m.Grid().SetRow(m.d.PlaylistRow - 1)
	case "NextRow":
		m.Grid().SetRow(m.d.PlaylistRow + 1)
	default:
		return false
	}
	return true
}

// normalizeKeyEvent names the keys the way the bindings do: letters upper
// case and the space bar "Space".
func normalizeKeyEvent(e KeyEvent) KeyEvent {
	switch {
	case e.Name == " ":
		e.Name = "Space"
	case len(e.Name) == 1 && e.Name[0] >= 'a' && e.Name[0] <= 'z':
		e.Name = Key(strings.ToUpper(string(e.Name)))
	}
	return e
}
