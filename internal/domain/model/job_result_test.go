package model

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
)

func TestNewJobIDFormat(t *testing.T) {
	re := regexp.MustCompile(`^job_\d+_[0-9a-f]{8}$`)

	id := NewJobID()
	if !re.MatchString(id) {
		t.Fatalf("unexpected job id format: %q", id)
	}

	other := NewJobID()
	if id == other {
		t.Fatalf("expected distinct ids, got %q twice", id)
	}
}

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name    string
		jobID   string
		wantErr error
	}{
		{name: "valid", jobID: "job_1700000000_abcd1234", wantErr: nil},
		{name: "empty", jobID: "", wantErr: ErrJobIDMissing},
		{name: "blank", jobID: "   ", wantErr: ErrJobIDMissing},
		{name: "reserved result", jobID: "result", wantErr: ErrJobIDReserved},
		{name: "reserved callback mixed case", jobID: "Callback", wantErr: ErrJobIDReserved},
		{name: "embedded slash", jobID: "a/b", wantErr: ErrJobIDReserved},
		{name: "embedded space", jobID: "a b", wantErr: ErrJobIDReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobID(tt.jobID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeResult(t *testing.T) {
	tests := []struct {
		name string
		in   json.RawMessage
		want string
	}{
		{name: "absent becomes null", in: nil, want: `null`},
		{name: "explicit null kept", in: json.RawMessage(`null`), want: `null`},
		{name: "object kept verbatim", in: json.RawMessage(`{"a":1}`), want: `{"a":1}`},
		{name: "string kept verbatim", in: json.RawMessage(`"<p>hello</p>"`), want: `"<p>hello</p>"`},
		{name: "raw text wrapped as string", in: json.RawMessage(`not json at all`), want: `"not json at all"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeResult(tt.in)
			if string(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			if !json.Valid(got) {
				t.Fatalf("normalized result is not valid JSON: %s", got)
			}
		})
	}
}
