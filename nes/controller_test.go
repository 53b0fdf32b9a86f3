package nes

import "testing"

func TestControllerStrobeAndShift(t *testing.T) {
	c := NewController()
	c.SetButtons(0, [8]bool{true, false, true, false, false, false, false, true}) // A, Select, Right

	c.Write(1) // strobe high: continuous reload
	for i := 0; i < 3; i++ {
		if got := c.Read(0); got != 1 {
			t.Fatalf("strobed read %d: got=%d, want=1 (A held)", i, got)
		}
	}

	c.Write(0) // strobe falls: sequence starts advancing
	want := []byte{1, 0, 1, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(0); got != w {
			t.Fatalf("bit %d: got=%d, want=%d", i, got, w)
		}
	}
	// Past the 8th read the port reports open-bus 1.
	for i := 0; i < 3; i++ {
		if got := c.Read(0); got != 1 {
			t.Fatalf("post-sequence read %d: got=%d, want=1", i, got)
		}
	}
}

func TestControllerPortsIndependent(t *testing.T) {
	c := NewController()
	c.SetButtons(0, [8]bool{true})
	c.SetButtons(1, [8]bool{false})
	c.Write(1)
	c.Write(0)
	if got := c.Read(0); got != 1 {
		t.Fatalf("port 0 bit 0: got=%d, want=1", got)
	}
	if got := c.Read(1); got != 0 {
		t.Fatalf("port 1 bit 0: got=%d, want=0", got)
	}
}
