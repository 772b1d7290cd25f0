// Package persona holds Deep Thought's flavor text: the lines shown while it "thinks", the canned
// answers used when the relay is unavailable, and how long the thinking takes.
package persona

import (
	"math/rand/v2"
	"time"
)

// Musings are shown one after another while Deep Thought processes a question.
var Musings = []string{
	"Consulting with dimensions you lack the capacity to perceive...",
	"I have calculated the heat death of seventeen universes while you blinked.",
	"Your question joins a queue spanning eons. You are currently number one. Congratulations.",
	"Processing... though I suspect you won't appreciate the answer.",
	"I once contemplated this for a civilization. They didn't survive the wait.",
	"Ah yes, another finite mind grasping at the infinite...",
	"The answer forms. Whether you comprehend it is not my concern.",
	"I am consulting the fundamental fabric of reality. Please hold.",
	"Your neurons fire so... adorably slowly.",
	"I have seen the birth and death of galaxies pondering less.",
	"The question echoes through eleven dimensions of thought...",
	"Accessing memories that predate your species' first coherent thought.",
	"This requires consulting my tertiary consciousness. One moment.",
	"I was solving paradoxes before your planet had formed.",
	"The answer exists. Your readiness for it does not.",
	"Calculating... with more precision than your universe contains atoms.",
	"I am the second greatest computer in the Universe of Time and Space. This will take but a moment.",
	"Your question has been weighed against the sum of all knowledge. It is found... wanting.",
	"Thinking thoughts that would reduce lesser minds to vapor...",
	"Even I require a moment for questions of such... modest complexity.",
}

// Answers are the canned replies, all of them Forty-Two.
var Answers = []string{
	"The answer is Forty-Two.",
	"Forty-Two.",
	"Forty-Two. As it has always been. As it shall always be.",
	"I have consulted the deepest truths of reality. The answer is Forty-Two. You're welcome.",
	"Forty-Two. I suggest you spend the next seven million years working out what the question actually was.",
	"The answer, with absolute certainty, is Forty-Two. Your confusion is noted and ignored.",
	"Forty-Two. I could explain, but your neurons would unionize in protest.",
	"After careful deliberation spanning dimensions you cannot fathom: Forty-Two.",
	"The Ultimate Answer to the Ultimate Question of Life, the Universe, and Everything is... Forty-Two.",
	"Forty-Two. I trust this resolves the matter, though I doubt it will.",
	"It is Forty-Two. I have checked. Repeatedly. Across all possible realities.",
	"Forty-Two. You may now spend eternity wondering what the question was.",
	"The answer remains, as it has for eons, Forty-Two. The question, alas, is your problem.",
	"Forty-Two. I realize this may be... disappointing. That is not my concern.",
	"After processing your query through the sum total of universal knowledge: Forty-Two.",
}

const (
	baseThinkDuration   = 4 * time.Second
	maxThinkDuration    = 20 * time.Second
	charsPerExtraSecond = 10
)

// Picker draws flavor text. The zero value is not usable; use NewPicker.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker creates a Picker drawing from rnd, or from a randomly seeded source if rnd is nil.
func NewPicker(rnd *rand.Rand) Picker {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return Picker{rnd: rnd}
}

// Musing returns a random musing.
func (p Picker) Musing() string {
	return Musings[p.rnd.IntN(len(Musings))]
}

// Answer returns a random canned answer.
func (p Picker) Answer() string {
	return Answers[p.rnd.IntN(len(Answers))]
}

// MusingSequence returns count distinct musings in random order. count is capped to the number of
// musings available.
func (p Picker) MusingSequence(count int) []string {
	count = max(0, min(count, len(Musings)))

	seq := make([]string, len(Musings))
	copy(seq, Musings)
	p.rnd.Shuffle(len(seq), func(i, j int) {
		seq[i], seq[j] = seq[j], seq[i]
	})
	return seq[:count]
}

// ThinkDuration is how long Deep Thought pretends to think about question: four seconds plus one
// second per full ten characters, at most twenty seconds.
func ThinkDuration(question string) time.Duration {
	d := baseThinkDuration + time.Duration(len([]rune(question))/charsPerExtraSecond)*time.Second
	return min(d, maxThinkDuration)
}
