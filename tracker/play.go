package tracker

import (
	"errors"
	"fmt"

	"github.com/chroniclehub/ligature"
)

type (
	// Player is the playback entry point. Play starts playing the track in
	// text, stopping whatever was playing before; there is no queueing.
	Player interface {
		Play(text string, instruments []ligature.Instrument, qualities ligature.Qualities) error
		Stop()
	}

	// NullPlayer refuses to play.
	NullPlayer struct{}

	Play Model
)

var (
	errNoPlayer   = errors.New("no player available")
	errPlayerBusy = errors.New("player is busy")
)

func (NullPlayer) Play(string, []ligature.Instrument, ligature.Qualities) error { return errNoPlayer }
func (NullPlayer) Stop()                                                      {}

func (m *Model) Play() *Play { return (*Play)(m) }

// IsPlaying tells if the player reported playing.
func (m *Play) IsPlaying() bool { return m.playing }

// Audition returns an Action that plays what the tracker grid shows: the
// focused playlist row in context mode, the selected pattern once in pattern
// mode. The throwaway track is built from the last parsed track and handed to
// the player as text.
func (m *Play) Audition() Action { return MakeAction((*audition)(m)) }

type audition Play

func (m *audition) Enabled() bool { return m.auditionTrack() != nil }
func (m *audition) Do() {
	t := m.auditionTrack()
	if t == nil {
		return
	}
	(*Play)(m).start(t, false)
}

func (m *audition) auditionTrack() *ligature.ParsedTrack {
	if m.track == nil {
		return nil
	}
	switch m.d.Mode {
	case PatternMode:
		if _, ok := m.track.Pattern(m.d.PatternID); !ok {
			return nil
		}
		t := m.track.Copy()
		t.Playlist = []ligature.PlaylistItem{ligature.NewPatternItem(m.d.PatternID)}
		return t
	default:
		row := m.d.PlaylistRow
		if row < 0 || row >= len(m.track.Playlist) || m.track.Playlist[row].Type != ligature.PatternItem {
			return nil
		}
		t := m.track.Copy()
		t.Playlist = []ligature.PlaylistItem{t.Playlist[row]}
		return t
	}
}

// Song returns an Action that plays the whole playlist.
func (m *Play) Song() Action { return MakeAction((*playSong)(m)) }

type playSong Play

func (m *playSong) Enabled() bool { return m.track != nil && len(m.track.Playlist) > 0 }
func (m *playSong) Do()           { (*Play)(m).start(m.track.Copy(), true) }

// start hands t to the player. song tells if t is the whole playlist, so the
// clocks count from its first row, or an auditioned excerpt.
func (m *Play) start(t *ligature.ParsedTrack, song bool) {
	text := ligature.Serialize(t)
	if err := m.player.Play(text, t.Instruments, m.qualities); err != nil {
		(*Model)(m).Alerts().AddNamed("PlayError", fmt.Sprintf("Could not start playback: %v", err), Error)
		return
	}
	m.playing = true
	m.playingSong = song
	m.trackerStep, m.arrangementStep = 0, 0
}

// Stop returns an Action to stop the playback.
func (m *Play) Stop() Action { return MakeAction((*stopPlay)(m)) }

type stopPlay Play

func (m *stopPlay) Do() {
	m.player.Stop()
	m.playing = false
	m.trackerStep, m.arrangementStep = 0, 0
}
