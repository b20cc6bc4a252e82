package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestTargetURL_Redacts(t *testing.T) {
	attr := TargetURL("https://callback.example.com/hooks/run?sig=supersecret")

	val := attr.Value.String()
	if strings.Contains(val, "supersecret") {
		t.Errorf("TargetURL leaked secret: %s", val)
	}
	if !strings.Contains(val, "callback.example.com") {
		t.Errorf("TargetURL should keep the host for operator readability: %s", val)
	}
}

func TestFieldHelpers(t *testing.T) {
	if got := Target("canary"); got.Key != FieldTarget || got.Value.String() != "canary" {
		t.Errorf("Target() = %v", got)
	}
	if got := Attempt(3); got.Key != FieldAttempt || got.Value.Int64() != 3 {
		t.Errorf("Attempt() = %v", got)
	}
	if got := Status(503); got.Key != FieldStatus || got.Value.Int64() != 503 {
		t.Errorf("Status() = %v", got)
	}
	if got := Error(errors.New("dial refused")); got.Key != FieldError || got.Value.String() != "dial refused" {
		t.Errorf("Error() = %v", got)
	}
}
