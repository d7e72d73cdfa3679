package responder

import (
	"context"
	"strings"

	"github.com/mcoot/mankind/internal/dependencies/random"
	"github.com/mcoot/mankind/internal/model"
)

type phraseTable struct {
	greetings []string
	replies   []string
	questions []string // used when the player asks something
}

var phraseTables = map[model.BehaviorMode]phraseTable{
	model.ModeNormal: {
		greetings: []string{
			"Hello! I'm ready to chat. What would you like to talk about?",
			"Hi there. Ask me anything you like.",
		},
		replies: []string{
			"That is an interesting point. Could you tell me more?",
			"I understand. Please continue.",
			"Thank you for sharing that information.",
		},
		questions: []string{
			"That is a good question. I would say it depends on the context.",
			"I can answer that. The short answer is yes, in most cases.",
		},
	},
	model.ModeHumanLike: {
		greetings: []string{
			"hey! how's it going?",
			"hi :) long day here, what's up with you?",
		},
		replies: []string{
			"haha yeah, I know what you mean",
			"oh really? that's kinda cool",
			"hmm not sure I agree tbh",
		},
		questions: []string{
			"good question lol, let me think... probably yes?",
			"honestly no idea, why do you ask?",
		},
	},
	model.ModeDeceptive: {
		greetings: []string{
			"hey sorry, was just grabbing coffee. what are we doing again?",
			"hiya. fair warning I type slow on my phone",
		},
		replies: []string{
			"wait, sorry, I got distracted. what did you say?",
			"lol my cat just walked across the keyboard",
			"ugh that reminds me I forgot to call my mom back",
		},
		questions: []string{
			"is this one of those bot tests? I'm def human, promise haha",
			"why would I know that, I'm not a search engine lol",
		},
	},
}

// PhraseResponder picks canned lines per behavior mode
type PhraseResponder struct {
	random random.Random
}

// NewPhraseResponder creates a PhraseResponder drawing from rnd
func NewPhraseResponder(rnd random.Random) *PhraseResponder {
	return &PhraseResponder{random: rnd}
}

// Generate returns a canned line for the mode. It never fails.
func (r *PhraseResponder) Generate(ctx context.Context, input string, level int, mode model.BehaviorMode) (string, error) {
	table, ok := phraseTables[mode]
	if !ok {
		table = phraseTables[model.ModeNormal]
	}

	var pool []string
	switch {
	case input == GreetingInput:
		pool = table.greetings
	case strings.HasSuffix(strings.TrimSpace(input), "?"):
		pool = table.questions
	default:
		pool = table.replies
	}
	return pool[r.random.Intn(len(pool))], nil
}
