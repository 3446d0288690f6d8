package main

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	SPEAKER_SAMPLE_RATE = 44100
	SPEAKER_PITCH       = 440  // Hz
	SPEAKER_VOLUME      = 4096 // Of 32767.
)

// Speaker plays a square wave while the tone is on.
type Speaker struct {
	context *oto.Context
	player  *oto.Player
	on      atomic.Bool
	phase   int
}

// NewSpeaker opens the audio device.
func NewSpeaker() (sp *Speaker, err error) {
	options := &oto.NewContextOptions{
		SampleRate:   SPEAKER_SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	context, ready, err := oto.NewContext(options)
	if err != nil {
		return
	}
	<-ready

	sp = &Speaker{
		context: context,
	}
	sp.player = context.NewPlayer(sp)
	sp.player.Play()

	return
}

// Tone turns the square wave on or off.
func (sp *Speaker) Tone(on bool) {
	sp.on.Store(on)
}

// Read fills p with 16-bit samples. Called from the audio goroutine.
func (sp *Speaker) Read(p []byte) (n int, err error) {
	period := SPEAKER_SAMPLE_RATE / SPEAKER_PITCH
	on := sp.on.Load()

	for n = 0; n+1 < len(p); n += 2 {
		var sample int16
		if on {
			sample = SPEAKER_VOLUME
			if sp.phase < period/2 {
				sample = -SPEAKER_VOLUME
			}
		}
		binary.LittleEndian.PutUint16(p[n:], uint16(sample))
		sp.phase = (sp.phase + 1) % period
	}

	return
}

// Close the audio player.
func (sp *Speaker) Close() (err error) {
	err = sp.player.Close()
	return
}
