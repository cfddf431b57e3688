package tts

import (
	"bytes"
	"time"

	"github.com/tcolgate/mp3"
)

// Duration sums the frame durations of an MP3 stream. Data that is not MP3
// yields zero.
func Duration(data []byte) time.Duration {
	d := mp3.NewDecoder(bytes.NewReader(data))

	var total time.Duration
	var frame mp3.Frame
	skipped := 0
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}
	return total
}
