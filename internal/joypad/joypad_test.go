package joypad

import "testing"

func TestReadSelectsDPad(t *testing.T) {
	var j Joypad
	j.WriteSelect(0x20) // P14 low (bit4=0) selects D-Pad, P15 high
	j.SetState(Right | Up)
	got := j.Read()
	if got&0x01 != 0 {
		t.Fatalf("expected Right bit low (pressed), got %02X", got)
	}
	if got&0x04 != 0 {
		t.Fatalf("expected Up bit low (pressed), got %02X", got)
	}
	if got&0x02 == 0 || got&0x08 == 0 {
		t.Fatalf("expected Left/Down bits high (not pressed), got %02X", got)
	}
}

func TestReadSelectsButtons(t *testing.T) {
	var j Joypad
	j.WriteSelect(0x10) // P15 low selects buttons, P14 high
	j.SetState(A | Start)
	got := j.Read()
	if got&0x01 != 0 {
		t.Fatalf("expected A bit low, got %02X", got)
	}
	if got&0x08 != 0 {
		t.Fatalf("expected Start bit low, got %02X", got)
	}
}

// TestReadMatchesSpecScenario checks the exact byte values from spec section 8,
// scenario 6: write 0x10 to P1 then press A reads back 0x1E.
func TestReadMatchesSpecScenario(t *testing.T) {
	var j Joypad
	j.WriteSelect(0x10)
	j.SetState(A)
	if got := j.Read(); got != 0x1E {
		t.Fatalf("Read() = %#02x, want 0x1E", got)
	}
}

func TestReadBaselineIsThreeF(t *testing.T) {
	var j Joypad
	j.WriteSelect(0x30)
	if got := j.Read(); got != 0x3F {
		t.Fatalf("Read() = %#02x, want 0x3F", got)
	}
}

func TestEdgeDetectionRaisesOnNewPress(t *testing.T) {
	var j Joypad
	j.WriteSelect(0x20) // select D-Pad
	if edge := j.SetState(0); edge {
		t.Fatalf("no buttons pressed: expected no edge")
	}
	if edge := j.SetState(Right); !edge {
		t.Fatalf("expected falling edge when Right is pressed")
	}
	// Holding the same button produces no further edge.
	if edge := j.SetState(Right); edge {
		t.Fatalf("expected no edge while held")
	}
	if edge := j.SetState(Right | Up); !edge {
		t.Fatalf("expected edge when an additional button is pressed")
	}
}
