package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestSearchOptions_Validate(t *testing.T) {
	tests := []struct {
		name      string
		opts      SearchOptions
		wantErr   bool
		wantLimit int
	}{
		{"defaults are valid", DefaultSearchOptions(), false, 10},
		{"zero limit gets default", SearchOptions{Threshold: 0.3}, false, 10},
		{"explicit limit kept", SearchOptions{Limit: 3}, false, 3},
		{"large limit kept", SearchOptions{Limit: 500}, false, 500},
		{"negative limit", SearchOptions{Limit: -1}, true, 0},
		{"negative threshold", SearchOptions{Threshold: -0.1}, true, 0},
		{"NaN threshold", SearchOptions{Threshold: math.NaN()}, true, 0},
		{"threshold above one", SearchOptions{Threshold: 1.1}, false, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if opts.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", opts.Limit, tt.wantLimit)
			}
		})
	}
}

func TestDefaultSearchOptions(t *testing.T) {
	opts := DefaultSearchOptions()
	if opts.Limit != 10 || opts.Threshold != 0.3 || !opts.UseSimilarity {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestMetadata_Matches(t *testing.T) {
	m := Metadata{Subject: "maths", Level: "6e", Type: DocTypeCourse, SourceID: "c1", Extra: map[string]string{"lang": "fr"}}
	tests := []struct {
		name    string
		filters map[string]string
		want    bool
	}{
		{"no filters", nil, true},
		{"subject match", map[string]string{"subject": "maths"}, true},
		{"subject mismatch", map[string]string{"subject": "francais"}, false},
		{"all match", map[string]string{"subject": "maths", "level": "6e"}, true},
		{"one fails", map[string]string{"subject": "maths", "level": "5e"}, false},
		{"course id alias", map[string]string{"courseId": "c1"}, true},
		{"extra key", map[string]string{"lang": "fr"}, true},
		{"missing extra key", map[string]string{"author": "x"}, false},
		{"empty value ignored", map[string]string{"subject": ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.filters); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.filters, got, tt.want)
			}
		})
	}
}

func TestAnswer_JSON(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"question":"x","correctAnswer":2}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.CorrectAnswer.String() != "2" {
		t.Errorf("index answer = %q", q.CorrectAnswer.String())
	}
	if err := json.Unmarshal([]byte(`{"question":"x","correctAnswer":"vrai"}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.CorrectAnswer.String() != "vrai" {
		t.Errorf("text answer = %q", q.CorrectAnswer.String())
	}
	out, err := json.Marshal(Question{CorrectAnswer: NewIndexAnswer(1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back["correctAnswer"] != float64(1) {
		t.Errorf("correctAnswer = %v", back["correctAnswer"])
	}
}
