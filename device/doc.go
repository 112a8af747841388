// SPDX-License-Identifier: EPL-2.0

// Package device ties a mixer to an output backend and loads the audio
// objects that play on it.
//
// A Device is an explicit handle. Open it with a Backend, load sounds,
// streams and tracks from it, and Close it when done:
//
//	d, err := device.Open(cfg.Audio, headless.New())
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//
//	s, err := d.LoadSoundFromFile("click.wav")
//	if err != nil {
//		return err
//	}
//	s.Play()
package device
