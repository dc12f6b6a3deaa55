package gomidi

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/chroniclehub/ligature"
	"github.com/chroniclehub/ligature/tracker"
)

type (
	// Sender sends raw MIDI bytes, e.g. a drivers.Out.
	Sender interface {
		Send(data []byte) error
	}

	// Player plays tracks on a MIDI output, run in a separate goroutine. It
	// is controlled by PlayMsg and StopMsg messages from the broker and
	// reports the transport state back to the model. Starting a track always
	// preempts the one playing.
	Player struct {
		broker    *tracker.Broker
		out       Sender
		stopwatch *tracker.Stopwatch
		events    []Event
		next      int
		playing   bool
	}
)

// idleWait is how long the player sleeps when nothing is playing; messages
// from the broker wake it up anyway.
const idleWait = time.Second

// NewPlayer returns a player sending to out. now is the time source of the
// transport; nil means time.Now.
func NewPlayer(broker *tracker.Broker, out Sender, now func() time.Time) *Player {
	return &Player{broker: broker, out: out, stopwatch: tracker.NewStopwatch(now)}
}

// Transport returns the transport of the player, for the playback clocks.
func (p *Player) Transport() tracker.Transport { return p.stopwatch }

// Run processes the messages of the broker until ctx is done or the broker
// asks the player to close.
func (p *Player) Run(ctx context.Context) {
	defer close(p.broker.FinishedPlayer)
	timer := time.NewTimer(idleWait)
	defer timer.Stop()
	for {
		wait := idleWait
		if p.playing {
			wait = p.untilNext()
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			p.stop()
			return
		case <-p.broker.ClosePlayer:
			p.stop()
			return
		case msg := <-p.broker.ToPlayer:
			p.ProcessMsg(msg)
		case <-timer.C:
			p.Flush()
		}
	}
}

// ProcessMsg handles a message from the model.
func (p *Player) ProcessMsg(msg any) {
	switch m := msg.(type) {
	case tracker.PlayMsg:
		if err := p.Start(m.Text, m.Qualities); err != nil {
			tracker.TrySend(p.broker.ToModel, tracker.MsgToModel{HasPlaying: true, Playing: false, Data: err})
		}
	case tracker.StopMsg:
		p.stop()
	}
}

// Start parses the text and starts playing it from the beginning. Whatever
// was playing is stopped, even if the text does not parse.
func (p *Player) Start(text string, qualities ligature.Qualities) error {
	p.stop()
	t, err := ligature.Parse(text, qualities)
	if err != nil {
		return fmt.Errorf("could not parse the track to play: %w", err)
	}
	p.events = Schedule(t)
	p.next = 0
	p.playing = true
	p.stopwatch.Start()
	tracker.TrySend(p.broker.ToModel, tracker.MsgToModel{HasPlaying: true, Playing: true})
	p.Flush()
	return nil
}

// Flush sends the events that are due. When the last event has been sent,
// the playback stops.
func (p *Player) Flush() {
	if !p.playing {
		return
	}
	elapsed, _ := p.stopwatch.Elapsed()
	for p.next < len(p.events) && p.events[p.next].At <= elapsed {
		p.send(p.events[p.next].Msg)
		p.next++
	}
	if p.next >= len(p.events) {
		p.stop()
	}
}

func (p *Player) untilNext() time.Duration {
	if p.next >= len(p.events) {
		return 0
	}
	elapsed, _ := p.stopwatch.Elapsed()
	return max(p.events[p.next].At-elapsed, 0)
}

func (p *Player) stop() {
	if !p.playing {
		return
	}
	p.playing = false
	p.events, p.next = nil, 0
	p.stopwatch.Stop()
	for _, msg := range AllNotesOff() {
		p.send(msg)
	}
	tracker.TrySend(p.broker.ToModel, tracker.MsgToModel{HasPlaying: true, Playing: false})
}

func (p *Player) send(msg midi.Message) {
	if p.out == nil {
		return
	}
	if err := p.out.Send(msg.Bytes()); err != nil {
		tracker.TrySend(p.broker.ToModel, tracker.MsgToModel{Data: fmt.Errorf("MIDI output: %w", err)})
	}
}
