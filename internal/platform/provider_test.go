package platform

import "testing"

func TestNewProviderUnsupportedPlatform(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	if err != ErrUnsupported {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestNewProviderUsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }
	defer func() { NewProviderFunc = orig }()

	got, err := NewProvider()
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if got != want {
		t.Errorf("NewProvider returned a different provider")
	}
}
