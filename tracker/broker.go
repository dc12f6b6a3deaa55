package tracker

import (
	"time"

	"github.com/chroniclehub/ligature"
)

type (
	// Broker is the centralized message broker for the tracker. It is used to
	// communicate between the model, the player, the playback clocks and the
	// host. At the moment, the broker is just many-to-one communication,
	// implemented with one channel for each recipient.
	//
	// For closing the player goroutine, the broker has two channels:
	// ClosePlayer and FinishedPlayer. ClosePlayer has a capacity of 1, so you
	// can always send an empty message (struct{}{}) to it without blocking.
	// If the channel is already full, someone else has already requested its
	// closure, so dropping the message is fine. FinishedPlayer is closed by
	// the player once it has stopped all notes. Nothing is ever sent to it.
	// Wait for it with a timeout to avoid deadlocks:
	//    select {
	//      case <-FinishedPlayer:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any // PlayMsg or StopMsg

		// TrackerClock receives the fine grained ticks used to highlight the
		// active row, ArrangementClock the coarse ones used for the
		// arrangement playhead.
		TrackerClock     chan ClockTick
		ArrangementClock chan ClockTick

		// Save receives the text of the track when the user saves. The host
		// persists it; the model never touches files except the recovery
		// file.
		Save chan string

		ClosePlayer    chan struct{}
		FinishedPlayer chan struct{}
	}

	// MsgToModel is a message sent to the model by the player. HasPlaying
	// tells if Playing carries the new transport state. Data is either nil,
	// an error or an Alert.
	MsgToModel struct {
		HasPlaying bool
		Playing    bool

		Data any
	}

	// PlayMsg asks the player to start playing a track, stopping whatever
	// it was playing before.
	PlayMsg struct {
		Text        string
		Instruments []ligature.Instrument
		Qualities   ligature.Qualities
	}

	// StopMsg asks the player to stop playing.
	StopMsg struct{}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:          make(chan MsgToModel, 1024),
		ToPlayer:         make(chan any, 1024),
		TrackerClock:     make(chan ClockTick, 64),
		ArrangementClock: make(chan ClockTick, 64),
		Save:             make(chan string, 1),
		ClosePlayer:      make(chan struct{}, 1),
		FinishedPlayer:   make(chan struct{}),
	}
}

// Player returns a Player that forwards the requests to the player goroutine
// through the ToPlayer channel.
func (b *Broker) Player() Player { return (*brokerPlayer)(b) }

type brokerPlayer Broker

func (b *brokerPlayer) Play(text string, instruments []ligature.Instrument, qualities ligature.Qualities) error {
	msg := PlayMsg{Text: text, Instruments: instruments, Qualities: qualities}
	if !TrySend(b.ToPlayer, any(msg)) {
		return errPlayerBusy
	}
	return nil
}

func (b *brokerPlayer) Stop() {
	TrySend(b.ToPlayer, any(StopMsg{}))
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
