package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chroniclehub/ligature"
)

// ReadTrack reads a track from r. Ligature text is taken as is; .json and
// .yml dumps of a parsed track are serialized to Ligature text first.
func (m *Model) ReadTrack(r io.ReadCloser) {
	b, err := io.ReadAll(r)
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error reading a track file: %v", err), Error)
		return
	}
	if err = r.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing a track file: %v", err), Error)
		return
	}
	text := string(b)
	var path string
	if f, ok := r.(*os.File); ok {
		path = f.Name()
	}
	if dump := dumpFormat(path); dump != "" {
		var t ligature.ParsedTrack
		if dump == ".json" {
			err = json.Unmarshal(b, &t)
		} else {
			err = yaml.Unmarshal(b, &t)
		}
		if err != nil {
			m.Alerts().Add(fmt.Sprintf("Error unmarshaling a track file: %v", err), Error)
			return
		}
		text = ligature.Serialize(&t)
	}
	m.SetText(text)
	if path != "" {
		m.d.FilePath = path
		// the text comes from a file, so it is persisted already
		m.d.ChangedSinceSave = false
	}
}

// WriteTrack writes the text of the track to w, or a dump of the parsed
// track if w is a .json or .yml file.
func (m *Model) WriteTrack(w io.WriteCloser) {
	var path string
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	if dumpFormat(path) != "" && m.parseErr != nil {
		m.Alerts().Add("Fix the errors in the text before exporting a dump", Warning)
		w.Close()
		return
	}
	contents := []byte(m.d.Text)
	var err error
	switch dumpFormat(path) {
	case ".json":
		contents, err = json.MarshalIndent(m.track, "", "  ")
	case ".yml":
		contents, err = yaml.Marshal(m.track)
	}
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error marshaling a track file: %v", err), Error)
		return
	}
	if _, err := w.Write(contents); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error writing to file: %v", err), Error)
		return
	}
	if err := w.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing file: %v", err), Error)
		return
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
}

func dumpFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ".json"
	case ".yml", ".yaml":
		return ".yml"
	}
	return ""
}
