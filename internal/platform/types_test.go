package platform

import "testing"

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in      string
		want    Bounds
		wantErr bool
	}{
		{"10,20,300,400", Bounds{X: 10, Y: 20, Width: 300, Height: 400}, false},
		{" 10, 20, 300, 400 ", Bounds{X: 10, Y: 20, Width: 300, Height: 400}, false},
		{"-5,-5,10,10", Bounds{X: -5, Y: -5, Width: 10, Height: 10}, false},
		{"10,20,300", Bounds{}, true},
		{"10,20,300,abc", Bounds{}, true},
		{"", Bounds{}, true},
	}
	for _, tt := range tests {
		got, err := ParseBounds(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBounds(%q) accepted malformed input", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBounds(%q): %v", tt.in, err)
			continue
		}
		if *got != tt.want {
			t.Errorf("ParseBounds(%q) = %+v, want %+v", tt.in, *got, tt.want)
		}
	}
}

func TestBoundsCenter(t *testing.T) {
	b := Bounds{X: 100, Y: 200, Width: 50, Height: 30}
	x, y := b.Center()
	if x != 125 || y != 215 {
		t.Errorf("Center() = (%d, %d), want (125, 215)", x, y)
	}
}

func TestBoundsArea(t *testing.T) {
	if got := (Bounds{Width: 10, Height: 20}).Area(); got != 200 {
		t.Errorf("Area() = %d, want 200", got)
	}
	if got := (Bounds{Width: -10, Height: 20}).Area(); got != 0 {
		t.Errorf("degenerate Area() = %d, want 0", got)
	}
}

func TestParsePointerButton(t *testing.T) {
	tests := []struct {
		in      string
		want    PointerButton
		wantErr bool
	}{
		{"left", ButtonLeft, false},
		{"Right", ButtonRight, false},
		{"MIDDLE", ButtonMiddle, false},
		{"back", ButtonLeft, true},
		{"", ButtonLeft, true},
	}
	for _, tt := range tests {
		got, err := ParsePointerButton(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePointerButton(%q) accepted an unknown button", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePointerButton(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePointerButton(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
