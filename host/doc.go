// Package host connects the modulation processor to the outside world: a
// lock-free parameter store that control threads write and the audio path
// snapshots once per block, a beep.Streamer adapter, offline WAV rendering,
// and realtime playback through oto.
package host
