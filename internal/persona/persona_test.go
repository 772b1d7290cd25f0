package persona_test

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ncerny/deepthought/internal/persona"
)

func TestThinkDuration(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     time.Duration
	}{
		{name: "Empty", question: "", want: 4 * time.Second},
		{name: "Nine chars", question: strings.Repeat("a", 9), want: 4 * time.Second},
		{name: "Ten chars", question: strings.Repeat("a", 10), want: 5 * time.Second},
		{name: "Fifty five chars", question: strings.Repeat("a", 55), want: 9 * time.Second},
		{name: "At the cap", question: strings.Repeat("a", 160), want: 20 * time.Second},
		{name: "Past the cap", question: strings.Repeat("a", 1000), want: 20 * time.Second},
		{name: "Multi-byte counts characters", question: strings.Repeat("é", 10), want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := persona.ThinkDuration(tt.question); got != tt.want {
				t.Errorf("ThinkDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickerDeterministic(t *testing.T) {
	a := persona.NewPicker(rand.New(rand.NewPCG(1, 2)))
	b := persona.NewPicker(rand.New(rand.NewPCG(1, 2)))

	for range 10 {
		if a.Answer() != b.Answer() {
			t.Fatal("pickers with the same seed disagree on answers")
		}
		if a.Musing() != b.Musing() {
			t.Fatal("pickers with the same seed disagree on musings")
		}
	}
}

func TestPickerAnswersAreFortyTwo(t *testing.T) {
	p := persona.NewPicker(nil)
	for range 50 {
		answer := p.Answer()
		if !strings.Contains(answer, "Forty-Two") {
			t.Errorf("Answer() = %q, does not contain Forty-Two", answer)
		}
		if !slices.Contains(persona.Answers, answer) {
			t.Errorf("Answer() = %q, not in table", answer)
		}
	}
}

func TestMusingSequence(t *testing.T) {
	p := persona.NewPicker(rand.New(rand.NewPCG(42, 42)))

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "Some", count: 5, want: 5},
		{name: "All", count: len(persona.Musings), want: len(persona.Musings)},
		{name: "More than available", count: 100, want: len(persona.Musings)},
		{name: "None", count: 0, want: 0},
		{name: "Negative", count: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := p.MusingSequence(tt.count)
			if len(seq) != tt.want {
				t.Fatalf("len(MusingSequence(%d)) = %d, want %d", tt.count, len(seq), tt.want)
			}

			seen := map[string]bool{}
			for _, m := range seq {
				if seen[m] {
					t.Errorf("musing %q repeated", m)
				}
				seen[m] = true
				if !slices.Contains(persona.Musings, m) {
					t.Errorf("musing %q not in table", m)
				}
			}
		})
	}
}

func TestMusingSequenceLeavesTableIntact(t *testing.T) {
	before := slices.Clone(persona.Musings)
	persona.NewPicker(nil).MusingSequence(len(persona.Musings))
	if !slices.Equal(before, persona.Musings) {
		t.Error("MusingSequence reordered the shared table")
	}
}
