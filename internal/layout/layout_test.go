package layout

import (
	"strings"
	"testing"
)

const validReply = `{
	"boxes": [
		{"id": "q1-A", "questionNumber": 1, "optionLabel": "A", "x": 10, "y": 10, "w": 5, "h": 5},
		{"id": "q1-B", "questionNumber": 1, "optionLabel": "B", "x": 20, "y": 10, "w": 5, "h": 5},
		{"id": "q2-A", "questionNumber": 2, "optionLabel": "A", "x": 10, "y": 20, "w": 5, "h": 5},
		{"id": "q2-B", "questionNumber": 2, "optionLabel": "B", "x": 20, "y": 20, "w": 5, "h": 5}
	],
	"correctAnswers": {"1": "A", "2": "B"}
}`

func TestFromWire_KeySheet(t *testing.T) {
	c, err := fromWire(validReply, Request{Questions: 2, KeySheet: true})
	if err != nil {
		t.Fatalf("fromWire failed: %v", err)
	}
	if len(c.Regions) != 4 {
		t.Errorf("regions: got %d, want 4", len(c.Regions))
	}
	if c.CorrectAnswers[1] != "A" || c.CorrectAnswers[2] != "B" {
		t.Errorf("answers lost: %v", c.CorrectAnswers)
	}
}

func TestFromWire_StudentSheetDropsAnswers(t *testing.T) {
	c, err := fromWire(validReply, Request{Questions: 2, KeySheet: false})
	if err != nil {
		t.Fatalf("fromWire failed: %v", err)
	}
	if len(c.CorrectAnswers) != 0 {
		t.Errorf("volunteered answers must be discarded, got %v", c.CorrectAnswers)
	}
}

func TestFromWire_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		req     Request
		wantErr string
	}{
		{
			"not json",
			`the sheet contains two questions`,
			Request{},
			"not valid JSON",
		},
		{
			"invariant violation",
			`{"boxes": [{"id": "a", "questionNumber": 1, "optionLabel": "Z", "x": 1, "y": 1, "w": 5, "h": 5}]}`,
			Request{},
			"rejected",
		},
		{
			"question count mismatch",
			validReply,
			Request{Questions: 5, KeySheet: true},
			"expected 5",
		},
		{
			"key sheet without answers",
			`{"boxes": [{"id": "a", "questionNumber": 1, "optionLabel": "A", "x": 1, "y": 1, "w": 5, "h": 5}]}`,
			Request{KeySheet: true},
			"no correct answers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromWire(tt.raw, tt.req)
			if err == nil {
				t.Fatal("fromWire should have rejected the reply")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromWire_FencedReply(t *testing.T) {
	fenced := "```json\n" + validReply + "\n```"
	c, err := fromWire(fenced, Request{Questions: 2, KeySheet: true})
	if err != nil {
		t.Fatalf("fenced reply rejected: %v", err)
	}
	if len(c.Regions) != 4 {
		t.Errorf("regions: got %d, want 4", len(c.Regions))
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserPrompt(t *testing.T) {
	key := userPrompt(Request{Questions: 10, Options: 4, KeySheet: true})
	if !strings.Contains(key, "10 questions") || !strings.Contains(key, "4 options") {
		t.Errorf("hints missing from prompt: %s", key)
	}
	if !strings.Contains(key, "answer-key") {
		t.Errorf("key-sheet instruction missing: %s", key)
	}

	student := userPrompt(Request{Questions: 10})
	if !strings.Contains(student, "Omit correctAnswers") {
		t.Errorf("student-sheet instruction missing: %s", student)
	}
}

func TestNewGemini_DefaultModel(t *testing.T) {
	g := NewGemini("key", "")
	if g.model != DefaultModel {
		t.Errorf("model: got %q, want %q", g.model, DefaultModel)
	}
	if NewGemini("key", " custom ").model != "custom" {
		t.Error("explicit model not trimmed and kept")
	}
}
