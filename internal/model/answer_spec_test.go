package model

import (
	"reflect"
	"testing"
)

func TestDecodeAnswerSpecMCQ(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"upper letter", "B", "B", false},
		{"lower letter normalized", "c", "C", false},
		{"padded letter", " a ", "A", false},
		{"out of range", "K", "", true},
		{"multi letter", "AB", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := DecodeAnswerSpec(QuestionMCQ, tt.key, 4)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for key %q", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.Letter != tt.want {
				t.Errorf("Letter = %q, want %q", spec.Letter, tt.want)
			}
		})
	}
}

func TestDecodeAnswerSpecCheckbox(t *testing.T) {
	spec, err := DecodeAnswerSpec(QuestionCheckbox, "a, C,b", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"A": true, "B": true, "C": true}
	if !reflect.DeepEqual(spec.LetterSet, want) {
		t.Errorf("LetterSet = %v, want %v", spec.LetterSet, want)
	}

	if _, err := DecodeAnswerSpec(QuestionCheckbox, " , ", 4); err == nil {
		t.Error("expected error for empty letter set")
	}
}

func TestDecodeAnswerSpecShort(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		optionsCount  int
		wantBlanks    [][]string
		wantHeuristic bool
	}{
		{
			name:         "single blank with alternatives",
			key:          "colour|color",
			optionsCount: 1,
			wantBlanks:   [][]string{{"colour", "color"}},
		},
		{
			name:         "multi blank comma separated",
			key:          "cat, dog",
			optionsCount: 2,
			wantBlanks:   [][]string{{"cat"}, {"dog"}},
		},
		{
			name:         "multi blank with per-blank alternatives",
			key:          "seven|7, eight|8",
			optionsCount: 2,
			wantBlanks:   [][]string{{"seven", "7"}, {"eight", "8"}},
		},
		{
			name:         "optionsCount one keeps commas literal",
			key:          "salt, pepper",
			optionsCount: 1,
			wantBlanks:   [][]string{{"salt, pepper"}},
		},
		{
			name:          "legacy digit pipes read as blanks",
			key:           "12|8|4",
			optionsCount:  0,
			wantBlanks:    [][]string{{"12"}, {"8"}, {"4"}},
			wantHeuristic: true,
		},
		{
			name:         "word pipes stay alternatives",
			key:          "aluminium|aluminum",
			optionsCount: 0,
			wantBlanks:   [][]string{{"aluminium", "aluminum"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := DecodeAnswerSpec(QuestionShort, tt.key, tt.optionsCount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(spec.Blanks, tt.wantBlanks) {
				t.Errorf("Blanks = %v, want %v", spec.Blanks, tt.wantBlanks)
			}
			if spec.HeuristicUsed != tt.wantHeuristic {
				t.Errorf("HeuristicUsed = %v, want %v", spec.HeuristicUsed, tt.wantHeuristic)
			}
		})
	}

	if _, err := DecodeAnswerSpec(QuestionShort, "  ", 1); err == nil {
		t.Error("expected error for empty short key")
	}
}

func TestDecodeAnswerSpecLong(t *testing.T) {
	spec, err := DecodeAnswerSpec(QuestionLong, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Type != QuestionLong {
		t.Errorf("Type = %q, want %q", spec.Type, QuestionLong)
	}
}

func TestDecodeAnswerSpecMixed(t *testing.T) {
	key := `[{"type":"multiple_choice","value":"B","points":2},` +
		`{"type":"short_answer","value":"oxygen|o2","points":3},` +
		`{"type":"long_answer","points":5}]`
	spec, err := DecodeAnswerSpec(QuestionMixed, key, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Subs) != 3 {
		t.Fatalf("len(Subs) = %d, want 3", len(spec.Subs))
	}
	if spec.Subs[0].Type != SubMultipleChoice || spec.Subs[0].Points != 2 {
		t.Errorf("sub 0 = %+v", spec.Subs[0])
	}

	bad := []string{
		"not json",
		"[]",
		`[{"type":"essay","value":"x","points":1}]`,
		`[{"type":"short_answer","value":"","points":1}]`,
	}
	for _, key := range bad {
		if _, err := DecodeAnswerSpec(QuestionMixed, key, 0); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}
