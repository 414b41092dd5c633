package main

import (
	"strings"
	"testing"

	"etc-firmware/divider"
)

func testDivider(t *testing.T) *divider.Divider {
	t.Helper()
	d, err := divider.New(divider.DefaultLUT, 23, 23)
	if err != nil {
		t.Fatalf("divider.New: %v", err)
	}
	return d
}

func TestExecuteRcp(t *testing.T) {
	d := testDivider(t)
	got := execute(d, "rcp 2.0")
	if strings.HasPrefix(got, "error") {
		t.Fatalf("execute(rcp 2.0) = %q, want a numeric result", got)
	}
}

func TestExecuteDiv(t *testing.T) {
	d := testDivider(t)
	got := execute(d, "div 10 4")
	if strings.HasPrefix(got, "error") {
		t.Fatalf("execute(div 10 4) = %q, want a numeric result", got)
	}
}

func TestExecuteUnknownOpcode(t *testing.T) {
	d := testDivider(t)
	if got := execute(d, "sqrt 4"); got != "error: invalid opcode" {
		t.Errorf("execute(sqrt 4) = %q, want %q", got, "error: invalid opcode")
	}
}

func TestExecuteEmptyCommand(t *testing.T) {
	d := testDivider(t)
	if got := execute(d, ""); got != "error: invalid opcode" {
		t.Errorf("execute(\"\") = %q, want %q", got, "error: invalid opcode")
	}
}
