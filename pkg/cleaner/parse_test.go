package cleaner

import (
	"strings"
	"testing"
)

func TestParseResponse_Valid(t *testing.T) {
	record, negative, err := ParseResponse(
		`{"is_valid": true, "problem": "dead battery", "solution": "replace it", "extra_help": "check terminals"}`,
		"abc123")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if negative {
		t.Fatal("ParseResponse() negative = true, want false")
	}
	if record.PostID != "abc123" || record.Problem != "dead battery" || record.Solution != "replace it" {
		t.Errorf("record = %+v", record)
	}
	if record.ExtraHelp != "check terminals" {
		t.Errorf("extra_help = %q", record.ExtraHelp)
	}
}

func TestParseResponse_MissingExtraHelpDefaultsToEmpty(t *testing.T) {
	record, _, err := ParseResponse(
		`{"is_valid": true, "problem": "p", "solution": "s"}`, "id")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if record.ExtraHelp != "" {
		t.Errorf("extra_help = %q, want empty string", record.ExtraHelp)
	}
}

func TestParseResponse_Negative(t *testing.T) {
	record, negative, err := ParseResponse(
		`{"is_valid": false, "problem": null, "solution": null}`, "id")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if !negative {
		t.Error("ParseResponse() negative = false, want true")
	}
	if record != nil {
		t.Errorf("record = %+v, want nil", record)
	}
}

func TestParseResponse_WrappedInProse(t *testing.T) {
	response := "Sure! Here is the JSON:\n```json\n" +
		`{"is_valid": true, "problem": "p", "solution": "s"}` + "\n```\nHope that helps."
	record, _, err := ParseResponse(response, "id")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if record == nil || record.Problem != "p" {
		t.Errorf("record = %+v", record)
	}
}

func TestParseResponse_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  string
	}{
		{"not JSON at all", "I could not process this post.", "no JSON object"},
		{"malformed JSON", `{"is_valid": true, "problem": `, "no JSON object"},
		{"truncated object", `{"is_valid": true "problem": "x"}`, "malformed JSON"},
		{"missing is_valid", `{"problem": "p", "solution": "s"}`, "missing is_valid"},
		{"valid but no problem", `{"is_valid": true, "solution": "s"}`, "problem missing"},
		{"valid but no solution", `{"is_valid": true, "problem": "p"}`, "solution missing"},
		{"valid but blank problem", `{"is_valid": true, "problem": "  ", "solution": "s"}`, "problem missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, negative, err := ParseResponse(tt.response, "id")
			if err == nil {
				t.Fatalf("ParseResponse() error = nil, want %q (record=%+v negative=%v)", tt.wantErr, record, negative)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
