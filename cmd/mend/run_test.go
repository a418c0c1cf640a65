package main

import "testing"

func TestTail(t *testing.T) {
	if got := tail("sk-ant-abcd1234", 4); got != "1234" {
		t.Errorf("tail = %q, want 1234", got)
	}
	if got := tail("ab", 4); got != "ab" {
		t.Errorf("tail of short string = %q, want ab", got)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "fallback"); got != "fallback" {
		t.Errorf("orDefault = %q", got)
	}
	if got := orDefault("value", "fallback"); got != "value" {
		t.Errorf("orDefault = %q", got)
	}
}

func TestRunCommandRequiresTarget(t *testing.T) {
	if err := runCmd.Args(runCmd, nil); err == nil {
		t.Error("run should require a target directory argument")
	}
	if err := runCmd.Args(runCmd, []string{"./target"}); err != nil {
		t.Errorf("run with one argument: %v", err)
	}
}
