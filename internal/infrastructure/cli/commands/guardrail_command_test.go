package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/infrastructure/security"
)

func TestGuardrailCommand(t *testing.T) {
	guardrail, err := security.NewGuardrail("")
	if err != nil {
		t.Fatal(err)
	}
	container := &app.Container{Guardrail: guardrail}

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"status"}, []string{"Rules: built-in"}},
		{[]string{"check", "--", "rm", "-rf", "/"}, []string{"Level:  critical", "Action: block", "- Deleting root directory"}},
		{[]string{"check", "ls"}, []string{"Level:  safe", "Action: allow"}},
	}
	for _, tt := range tests {
		cmd := NewGuardrailCommand(container)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(tt.args)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		for _, want := range tt.want {
			if !strings.Contains(out.String(), want) {
				t.Errorf("%v: output missing %q:\n%s", tt.args, want, out.String())
			}
		}
	}
}

func TestGuardrailCommandWithoutGuardrail(t *testing.T) {
	cmd := NewGuardrailCommand(&app.Container{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"status"})
	if err := cmd.Execute(); err == nil || err.Error() != ErrGuardrailUnavailable {
		t.Errorf("got %v", err)
	}
}
