package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Page", KeyPage, "Dev/Setup", Page("Dev/Setup")},
		{"Stage", KeyStage, "structure", Stage("structure")},
		{"Transform", KeyTransform, "headers", Transform("headers")},
		{"Attachment", KeyAttachment, "diagram.png", Attachment("diagram.png")},
		{"Kind", KeyKind, "missing_attachment", Kind("missing_attachment")},
		{"Pattern", KeyPattern, "Trac*", Pattern("Trac*")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Environment", KeyEnvironment, "/srv/trac", Environment("/srv/trac")},
		{"RunID", KeyRunID, "r1", RunID("r1")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := PageVersion(3); v.Key != KeyVersion || v.Value.Int64() != 3 {
		t.Fatalf("PageVersion mismatch: %v", v)
	}
	if v := Count(7); v.Key != KeyCount || v.Value.Int64() != 7 {
		t.Fatalf("Count mismatch: %v", v)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errors.New("err-test"))
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}
