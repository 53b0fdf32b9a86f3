package nes

// Reference:
//   http://hp.vector.co.jp/authors/VA042397/nes/joypad.html (In Japanese)
//   https://www.nesdev.org/wiki/Controller_reading
//   https://www.nesdev.org/wiki/Controller_reading_code

type button int

// Controller bit assignments, 1 means pressed otherwise 0.
// bit    0 1      2     3  4    5    6     7
// button A B Select Start Up Down Left Right
const (
	ButtonA button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models both standard-controller ports, read through $4016
// (port 0) and $4017 (port 1). A single $4016 write strobes both shift
// registers at once, as on real hardware.
type Controller struct {
	buttons [2][8]bool
	index   [2]byte
	strobe  byte
}

func NewController() *Controller {
	return &Controller{}
}

// SetButtons replaces the live button state for one port. Read consults
// this state directly, so a change is visible on the next read; it is not
// latched when the strobe falls.
func (c *Controller) SetButtons(port int, buttons [8]bool) {
	c.buttons[port] = buttons
}

// Write handles $4016 writes. While the strobe bit is held high, both
// ports continuously reload from bit 0 (button A); the read sequence
// only advances once the strobe falls back low.
func (c *Controller) Write(data byte) {
	c.strobe = data
	if c.strobe&1 == 1 {
		c.index[0] = 0
		c.index[1] = 0
	}
}

// Read shifts out the next button bit for the given port (0 = $4016,
// 1 = $4017). After the 8th read it keeps returning 1, matching the
// open-bus behavior games rely on to detect the end of the sequence.
func (c *Controller) Read(port int) byte {
	ret := byte(1)
	if c.index[port] < 8 {
		if c.buttons[port][c.index[port]] {
			ret = 1
		} else {
			ret = 0
		}
		c.index[port]++
	}
	if c.strobe&1 == 1 {
		c.index[port] = 0
	}
	return ret
}
