package dvm

import "fmt"

// Mode is the measurement function of the instrument, fixed per session.
// The temperature modes are only accepted by the 7150-plus.
type Mode int

const (
	DCV Mode = iota
	ACV
	Ohm
	DCA
	ACA
	Diode
	DegC
	DegF
)

var modeNames = [...]string{"DCV", "ACV", "Ohm", "DCA", "ACA", "Diode", "DegC", "DegF"}

// modeUnits are the physical units of the readout per mode, used as
// y-axis labels on the live plot.
var modeUnits = [...]string{"V", "V", "kOhms", "mA", "mA", "mV", "deg C", "deg F"}

func (m Mode) IsValid() bool {
	return m >= DCV && m <= DegF
}

func (m Mode) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Unit returns the physical unit of readings taken in this mode.
func (m Mode) Unit() string {
	if !m.IsValid() {
		return "?"
	}
	return modeUnits[m]
}

// Range selects the measurement range within a mode family. Zero always
// means autoranging; the remaining ordinals follow the instrument's
// range tables per family.
type Range int

const (
	RangeAuto Range = 0

	// Voltage ranges
	Range02V   Range = 1
	Range2V    Range = 2
	Range20V   Range = 3
	Range200V  Range = 4
	Range2000V Range = 5

	// Current ranges
	Range2000mA Range = 5

	// Resistance ranges
	Range20kOhm  Range = 3
	Range200kOhm Range = 4
	Range2MOhm   Range = 5
	Range20MOhm  Range = 6
)

// commandString composes the single setup command encoding display
// state, mode, range and integration code.
func commandString(disp int, mode Mode, rng Range, integration int) string {
	return fmt.Sprintf("D%dM%dR%dI%d", disp, int(mode), int(rng), integration)
}
