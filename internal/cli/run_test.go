package cli

import (
	"testing"
)

func TestRunCmd_Flags(t *testing.T) {
	f := runCmd.Flags()

	planFlag := f.Lookup("plan")
	if planFlag == nil {
		t.Fatal("expected --plan flag")
	}
	if planFlag.DefValue != "" {
		t.Errorf("expected empty default, got %q", planFlag.DefValue)
	}

	reportFlag := f.Lookup("report")
	if reportFlag == nil {
		t.Fatal("expected --report flag")
	}

	tuiFlag := f.Lookup("tui")
	if tuiFlag == nil {
		t.Fatal("expected --tui flag")
	}
	if tuiFlag.DefValue != "false" {
		t.Errorf("expected default 'false', got %q", tuiFlag.DefValue)
	}

	collectFlag := f.Lookup("collect-only")
	if collectFlag == nil {
		t.Fatal("expected --collect-only flag")
	}
}

func TestRunCmd_Args(t *testing.T) {
	if err := runCmd.Args(runCmd, []string{}); err != nil {
		t.Errorf("0 args should be valid: %v", err)
	}
	if err := runCmd.Args(runCmd, []string{"extra"}); err == nil {
		t.Error("positional args should be invalid")
	}
}
