package tracker

import (
	"fmt"

	"github.com/chroniclehub/ligature"
)

// Model implements the mutable state of the tracker and arrangement editors.
//
// The model is owned by the GUI goroutine. The player and the clocks run in
// their own goroutines and communicate with the model only through the
// channels of the Broker.
type (
	// modelData is the part of the model that gets saved to the recovery file
	modelData struct {
		Text                 string
		FilePath             string
		ChangedSinceSave     bool
		RecoveryFilePath     string
		ChangedSinceRecovery bool
		Mode                 ViewMode
		PlaylistRow          int
		PatternID            string
		Cursor               Cursor
	}

	Model struct {
		d modelData

		// track is the last successfully parsed track. It is replaced, never
		// modified in place.
		track       *ligature.ParsedTrack
		diagnostics []ligature.Diagnostic
		parseErr    error
		qualities   ligature.Qualities

		derived derivedModelData

		// scratch is the copy of the track that actions mutate between a call
		// to change and the call of the func it returns.
		scratch      *ligature.ParsedTrack
		changeLevel  int
		changeCancel bool

		prevUndoKind    string
		undoSkipCounter int
		undoStack       []string
		redoStack       []string

		inputBuffer string
		follow      bool

		playing         bool
		playingSong     bool
		trackerStep     int
		arrangementStep int

		alerts []Alert

		broker *Broker
		dialog Dialog
		player Player
		prefs  Preferences
	}
)

const maxUndo = 64

// NewModel returns a model editing the default track. If a recovery file
// exists at recoveryFilePath, the model is restored from it.
func NewModel(broker *Broker, dialog Dialog, player Player, prefs Preferences, recoveryFilePath string) *Model {
	if dialog == nil {
		dialog = NullDialog{}
	}
	if player == nil {
		player = NullPlayer{}
	}
	ret := &Model{broker: broker, dialog: dialog, player: player, prefs: prefs}
	ret.track = &ligature.ParsedTrack{Config: ligature.DefaultConfig()}
	ret.d.Mode = ContextMode
	ret.d.RecoveryFilePath = recoveryFilePath
	ret.setText(defaultTrack)
	ret.d.ChangedSinceSave = false
	ret.History().loadRecovery()
	ret.d.ChangedSinceRecovery = false
	if prefs.YmlError != nil {
		ret.Alerts().Add(fmt.Sprintf("Error loading preferences: %v", prefs.YmlError), Warning)
	}
	return ret
}

func (m *Model) restore(data modelData) {
	changed := data.ChangedSinceSave
	m.d = data
	m.setText(data.Text)
	m.d.ChangedSinceSave = changed
	m.d.ChangedSinceRecovery = false
	m.undoStack, m.redoStack = nil, nil
	m.prevUndoKind = ""
}

// Preferences returns the preferences the model was created with.
func (m *Model) Preferences() Preferences { return m.prefs }

// Text returns the current text buffer.
func (m *Model) Text() string { return m.d.Text }

// Track returns the last successfully parsed track. The returned track must
// not be modified.
func (m *Model) Track() *ligature.ParsedTrack { return m.track }

// Diagnostics returns the lint diagnostics of the current text buffer.
func (m *Model) Diagnostics() []ligature.Diagnostic { return m.diagnostics }

// ParseError returns the error of parsing the current text buffer, or nil if
// the buffer was parsed successfully.
func (m *Model) ParseError() error { return m.parseErr }

// Qualities returns the context used to resolve quality references.
func (m *Model) Qualities() ligature.Qualities { return m.qualities }

// SetQualities changes the context used to resolve quality references and
// parses the text buffer again.
func (m *Model) SetQualities(q ligature.Qualities) {
	m.qualities = q
	m.setText(m.d.Text)
}

// SetText replaces the text buffer, e.g. after the user typed in the text
// editor. Consecutive calls are coalesced into one undo step.
func (m *Model) SetText(text string) {
	if text == m.d.Text {
		return
	}
	m.saveUndo("SetText", 10)
	m.setText(text)
}

func (m *Model) setText(text string) {
	m.d.Text = text
	m.d.ChangedSinceSave = true
	m.d.ChangedSinceRecovery = true
	m.diagnostics = ligature.Lint(text)
	t, err := ligature.Parse(text, m.qualities)
	if err != nil {
		m.parseErr = err
		m.Alerts().AddNamed("ParseError", err.Error(), Warning)
	} else {
		m.parseErr = nil
		m.Alerts().ClearNamed("ParseError")
		m.track = t
	}
	m.updateDerived()
}

// editable tells if structural edits are allowed, i.e. the text buffer
// parses.
func (m *Model) editable() bool { return m.parseErr == nil }

// change starts a structural edit of kind. The edit is made to m.scratch and
// is committed when the returned func is called, usually deferred:
//
//	defer m.change("CloneRow")()
//
// Setting m.changeCancel cancels the edit. Nested changes are committed once,
// when the outermost one returns.
func (m *Model) change(kind string) func() {
	if m.changeLevel == 0 {
		m.scratch = m.track.Copy()
		m.changeCancel = false
		if !m.editable() {
			m.changeCancel = true
			m.Alerts().Add("Fix the errors in the text before editing", Warning)
		}
	}
	m.changeLevel++
	return func() {
		m.changeLevel--
		if m.changeLevel > 0 {
			return
		}
		t := m.scratch
		m.scratch = nil
		if m.changeCancel {
			return
		}
		text := ligature.Serialize(t)
		if text == m.d.Text {
			return
		}
		// the buffer is only replaced by text that parses back
		if _, err := ligature.Parse(text, m.qualities); err != nil {
			m.Alerts().Add(fmt.Sprintf("%v refused: %v", kind, err), Error)
			return
		}
		m.saveUndo(kind, 0)
		m.setText(text)
	}
}

func (m *Model) saveUndo(kind string, skip int) {
	if m.prevUndoKind == kind && m.undoSkipCounter < skip {
		m.undoSkipCounter++
		return
	}
	m.prevUndoKind = kind
	m.undoSkipCounter = 0
	m.undoStack = append(m.undoStack, m.d.Text)
	if len(m.undoStack) > maxUndo {
		copy(m.undoStack, m.undoStack[len(m.undoStack)-maxUndo:])
		m.undoStack = m.undoStack[:maxUndo]
	}
	m.redoStack = m.redoStack[:0]
}

func (m *Model) FilePath() String { return MakeString((*filePath)(m)) }

type filePath Model

func (v *filePath) Value() string              { return v.d.FilePath }
func (v *filePath) SetValue(value string) bool { v.d.FilePath = value; return true }

func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }

// ResetTrack replaces the text buffer with the default track.
func (m *Model) ResetTrack() {
	if m.d.Text != defaultTrack {
		m.saveUndo("ResetTrack", 0)
		m.setText(defaultTrack)
	}
	m.d.FilePath = ""
	m.d.ChangedSinceSave = false
}

// Save returns an Action to hand the current text to the host, through the
// save channel of the broker.
func (m *Model) Save() Action { return MakeAction((*save)(m)) }

type save Model

func (m *save) Enabled() bool { return m.broker != nil && m.broker.Save != nil }
func (m *save) Do() {
	if !TrySend(m.broker.Save, m.d.Text) {
		(*Model)(m).Alerts().Add("Saving is already in progress", Warning)
		return
	}
	m.d.ChangedSinceSave = false
}

// Update processes all the messages waiting in the broker channels without
// blocking. The GUI calls it once per frame.
func (m *Model) Update() {
	if m.broker == nil {
		return
	}
	for {
		select {
		case msg := <-m.broker.ToModel:
			m.ProcessMsg(msg)
		case tick := <-m.broker.TrackerClock:
			if step, ok := m.tickStep(tick); ok {
				m.trackerStep = step
				m.followPlayhead()
			}
		case tick := <-m.broker.ArrangementClock:
			if step, ok := m.tickStep(tick); ok {
				m.arrangementStep = step
			}
		default:
			return
		}
	}
}

// ProcessMsg handles a message sent to the model by the player.
func (m *Model) ProcessMsg(msg MsgToModel) {
	if msg.HasPlaying {
		m.playing = msg.Playing
		if !msg.Playing {
			m.trackerStep, m.arrangementStep = 0, 0
		}
	}
	switch e := msg.Data.(type) {
	case error:
		m.Alerts().Add(e.Error(), Error)
	case Alert:
		m.Alerts().AddAlert(e)
	}
}

// tickStep converts the elapsed time of a clock tick to a step, using the
// timing of the current track.
func (m *Model) tickStep(tick ClockTick) (int, bool) {
	if !tick.Running {
		return 0, false
	}
	return m.track.Config.Timing().DurationToStep(tick.Elapsed), true
}

func (m *Model) followPlayhead() {
	if !m.follow {
		return
	}
	if row, ok := m.Grid().ActiveRow(); ok {
		m.d.Cursor.Row = row
	}
}
