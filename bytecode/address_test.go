package bytecode

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"0x1", "0x1", false},
		{"1", "0x1", false},
		{"0x0", "0x0", false},
		{"0xabc", "0xabc", false},
		{"0X00ff", "0xff", false},
		{"", "", true},
		{"0x", "", true},
		{"0xzz", "", true},
		{"0x" + string(make([]byte, 65)), "", true},
	}

	for _, tt := range tests {
		a, err := ParseAddress(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAddress(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && a.String() != tt.want {
			t.Errorf("ParseAddress(%q) = %s, want %s", tt.input, a, tt.want)
		}
	}
}

func TestAddressHex(t *testing.T) {
	a := MustParseAddress("0x1")
	h := a.Hex()
	if len(h) != 2+AddressLength*2 {
		t.Errorf("Hex() length = %d, want %d", len(h), 2+AddressLength*2)
	}
	if h[len(h)-2:] != "01" {
		t.Errorf("Hex() = %s, want suffix 01", h)
	}
}

func TestParseModuleID(t *testing.T) {
	id, err := ParseModuleID("0x1::Coin")
	if err != nil {
		t.Fatalf("ParseModuleID: %v", err)
	}
	if id.Name != "Coin" || id.Address != MustParseAddress("0x1") {
		t.Errorf("ParseModuleID = %v, want 0x1::Coin", id)
	}
	if id.String() != "0x1::Coin" {
		t.Errorf("String() = %q, want %q", id.String(), "0x1::Coin")
	}

	for _, bad := range []string{"Coin", "0x1::", "0x1::A::B", "zz::Coin"} {
		if _, err := ParseModuleID(bad); err == nil {
			t.Errorf("ParseModuleID(%q) expected error", bad)
		}
	}
}

func TestModuleIDComparable(t *testing.T) {
	a := NewModuleID(MustParseAddress("0x2"), "M")
	b := NewModuleID(MustParseAddress("0x02"), "M")
	if a != b {
		t.Errorf("%v != %v, want structural equality", a, b)
	}
	m := map[ModuleID]int{a: 1}
	if m[b] != 1 {
		t.Error("ModuleID should work as a map key")
	}
}
