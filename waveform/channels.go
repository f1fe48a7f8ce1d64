package waveform

import "fmt"

// Channel identifies a speaker position in a multi-channel layout. The values
// follow the interleaving order of WAV/ffmpeg layouts up to 7.1.
type Channel int

const (
	FrontLeft Channel = iota
	FrontRight
	Center
	Subwoofer
	RearLeft
	RearRight
	AltRearLeft
	AltRearRight

	numChannels
)

var channelNames = [numChannels]string{
	FrontLeft:    "front_left",
	FrontRight:   "front_right",
	Center:       "center",
	Subwoofer:    "subwoofer",
	RearLeft:     "rear_left",
	RearRight:    "rear_right",
	AltRearLeft:  "alt_rear_left",
	AltRearRight: "alt_rear_right",
}

func (c Channel) String() string {
	if c.Valid() {
		return channelNames[c]
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Valid reports whether c is one of the known positions.
func (c Channel) Valid() bool {
	return c >= 0 && c < numChannels
}

// ChannelSet groups channel positions into a bus.
type ChannelSet []Channel

// Predefined buses for stereo and surround layouts.
var (
	ChannelsAll    = ChannelSet{FrontLeft, FrontRight, Center, Subwoofer, RearLeft, RearRight, AltRearLeft, AltRearRight}
	ChannelsCenter = ChannelSet{Center, Subwoofer}
	ChannelsLeft   = ChannelSet{FrontLeft, RearLeft, AltRearLeft}
	ChannelsRight  = ChannelSet{FrontRight, RearRight, AltRearRight}
	ChannelsFront  = ChannelSet{FrontLeft, FrontRight}
	ChannelsRear   = ChannelSet{RearLeft, RearRight, AltRearLeft, AltRearRight}
)

// Contains reports whether ch is part of the set.
func (s ChannelSet) Contains(ch Channel) bool {
	for _, c := range s {
		if c == ch {
			return true
		}
	}
	return false
}
