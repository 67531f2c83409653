package slidedotnet

import "testing"

func TestUnitFromEMU(t *testing.T) {
	tests := []struct {
		unit Unit
		emu  int64
		want float64
	}{
		{UnitEMU, 12345, 12345},
		{UnitInch, 914400, 1},
		{UnitPoint, 25400, 2},
		{UnitCentimeter, 720000, 2},
	}
	for _, tt := range tests {
		if got := tt.unit.FromEMU(tt.emu); got != tt.want {
			t.Errorf("%s.FromEMU(%d) = %v, expected %v", tt.unit, tt.emu, got, tt.want)
		}
	}
	if got := FontSizeToPoints(1850); got != 18.5 {
		t.Errorf("FontSizeToPoints: expected 18.5, got %v", got)
	}
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"in": UnitInch, " PT ": UnitPoint, "emu": UnitEMU, "cm": UnitCentimeter} {
		if got, err := ParseUnit(in); err != nil || got != want {
			t.Errorf("ParseUnit(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseUnit("furlong"); err == nil {
		t.Error("ParseUnit(furlong): expected error")
	}
}
