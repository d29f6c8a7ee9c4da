// Package response inspects the modulation effect from the outside: the
// delay times its LFO sweeps through, its impulse response, and the comb
// notches that response carves into the spectrum.
//
// # Usage
//
//	p := modulation.DefaultParams()
//	left, _, err := response.ImpulseResponse(p, 48000, 8192)
//	sp, err := response.Analyze(left, 48000)
//	for _, hz := range sp.Notches(20) {
//		fmt.Printf("notch at %.1f Hz\n", hz)
//	}
package response
