// Package modulation implements a stereo chorus/flanger.
//
// A single sine LFO ([Modulator]) sweeps the read position of two circular
// feedback delay lines ([Channel]), one per side. The right channel's LFO
// runs ahead of the left by a configurable fraction of a cycle. Each read is
// linearly interpolated between neighbouring slots and blended with the dry
// input.
//
// [Processor] drives both halves. Hosts call [Processor.Prepare] whenever the
// stream's sample rate is established, then hand it blocks of audio along
// with an immutable [Params] snapshot:
//
//	p := modulation.NewProcessor()
//	if err := p.Prepare(48000, 512); err != nil {
//		return err
//	}
//	p.ProcessBlock(inL, inR, outL, outR, modulation.DefaultParams())
//
// Block processing is allocation-free and safe to call from an audio
// callback. Chorus mode sweeps 5..30 ms, flanger mode 1..5 ms.
package modulation
