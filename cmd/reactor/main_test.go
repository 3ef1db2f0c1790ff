package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vango-dev/reactor/internal/scenario"
)

const todoScenario = "../../internal/scenario/testdata/todo.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalText(t *testing.T) {
	out, err := execute(t, "eval", todoScenario)
	if err != nil {
		t.Fatalf("eval: %v\n%s", err, out)
	}
	for _, want := range []string{"initial", "step 1: push", "total = 30", "4 steps"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEvalJSON(t *testing.T) {
	out, err := execute(t, "eval", "--json", todoScenario)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	var report scenario.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Name != "todo" || len(report.Steps) != 5 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestEvalRequiresFile(t *testing.T) {
	if _, err := execute(t, "eval"); err == nil {
		t.Error("expected argument error")
	}
	if _, err := execute(t, "eval", "missing.yaml"); err == nil {
		t.Error("expected load error")
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("expected %q, got %q", version, out)
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":7070"); got != "localhost:7070" {
		t.Errorf("got %q", got)
	}
	if got := displayAddr("127.0.0.1:80"); got != "127.0.0.1:80" {
		t.Errorf("got %q", got)
	}
}
