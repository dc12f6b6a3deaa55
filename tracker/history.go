package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// History returns the History view of the model, containing methods to
// manipulate the undo/redo history and saving recovery files. The history is
// kept as snapshots of the text buffer, so typed text and structural edits
// share the same history.
func (m *Model) History() *HistoryModel { return (*HistoryModel)(m) }

type HistoryModel Model

// Undo returns an Action to undo the last change.
func (m *HistoryModel) Undo() Action { return MakeAction((*historyUndo)(m)) }

type historyUndo HistoryModel

func (m *historyUndo) Enabled() bool { return len(m.undoStack) > 0 }
func (m *historyUndo) Do() {
	m.redoStack = pushSnapshot(m.redoStack, m.d.Text)
	text := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.prevUndoKind = ""
	(*Model)(m).setText(text)
}

// Redo returns an Action to redo the last undone change.
func (m *HistoryModel) Redo() Action { return MakeAction((*historyRedo)(m)) }

type historyRedo HistoryModel

func (m *historyRedo) Enabled() bool { return len(m.redoStack) > 0 }
func (m *historyRedo) Do() {
	m.undoStack = pushSnapshot(m.undoStack, m.d.Text)
	text := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.prevUndoKind = ""
	(*Model)(m).setText(text)
}

func pushSnapshot(stack []string, text string) []string {
	stack = append(stack, text)
	if len(stack) > maxUndo {
		copy(stack, stack[len(stack)-maxUndo:])
		stack = stack[:maxUndo]
	}
	return stack
}

// SaveRecovery saves the current model data to the recovery file on disk if
// there are unsaved changes.
func (m *HistoryModel) SaveRecovery() error {
	if !m.d.ChangedSinceRecovery {
		return nil
	}
	if m.d.RecoveryFilePath == "" {
		return errors.New("no backup file path")
	}
	out, err := json.Marshal(m.d)
	if err != nil {
		return fmt.Errorf("could not marshal recovery data: %w", err)
	}
	dir := filepath.Dir(m.d.RecoveryFilePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.MkdirAll(dir, os.ModePerm)
	}
	if err := os.WriteFile(m.d.RecoveryFilePath, out, 0644); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	m.d.ChangedSinceRecovery = false
	return nil
}

// loadRecovery restores the model from the recovery file, if there is one
// and it can be read.
func (m *HistoryModel) loadRecovery() bool {
	if m.d.RecoveryFilePath == "" {
		return false
	}
	bytes, err := os.ReadFile(m.d.RecoveryFilePath)
	if err != nil {
		return false
	}
	var data modelData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return false
	}
	data.RecoveryFilePath = m.d.RecoveryFilePath
	(*Model)(m).restore(data)
	return true
}
