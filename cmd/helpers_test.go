package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

func windowFlagCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addWindowFlags(c)
	return c
}

func TestWindowDescriptorFromFlags(t *testing.T) {
	c := windowFlagCmd()
	if err := c.Flags().Parse([]string{
		"--window", "Untitled - Notepad", "--pid", "42", "--handle", "512",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	desc := windowDescriptorFromFlags(c)
	want := selector.WindowDescriptor{Title: "Untitled - Notepad", Handle: 512, PID: 42}
	if desc != want {
		t.Errorf("descriptor = %+v, want %+v", desc, want)
	}
}

func TestRequireWindowScope(t *testing.T) {
	if err := requireWindowScope(selector.WindowDescriptor{}); err == nil {
		t.Errorf("empty descriptor must be rejected")
	}
	if err := requireWindowScope(selector.WindowDescriptor{Title: "Calculator"}); err != nil {
		t.Errorf("requireWindowScope: %v", err)
	}
	if err := requireWindowScope(selector.WindowDescriptor{Handle: 0x100}); err != nil {
		t.Errorf("requireWindowScope: %v", err)
	}
}

func TestClassicQueryFromFlags(t *testing.T) {
	cfg = config.Default()

	c := &cobra.Command{Use: "test"}
	c.Flags().String("stable-id", "", "")
	c.Flags().String("name", "", "")
	c.Flags().String("name-regex", "", "")
	c.Flags().String("control-type", "", "")
	c.Flags().Int("timeout", 0, "")

	if err := c.Flags().Parse([]string{"--name", "Save", "--control-type", "Button"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	q := classicQueryFromFlags(c)
	if q.Name != "Save" || q.ControlType != "Button" {
		t.Errorf("query = %+v", q)
	}
	if q.TimeoutSec != cfg.Find.TimeoutSec {
		t.Errorf("timeout = %d, want config default %d", q.TimeoutSec, cfg.Find.TimeoutSec)
	}
}
