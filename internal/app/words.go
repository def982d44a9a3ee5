package app

import (
	"sort"
	"strings"
	"unicode"

	"app_analyser/internal/domain"
)

// stopWords is the English list used for word-cloud style term counts.
var stopWords = toSet(`a about above after again against all also am an and any are aren't as at be because
been before being below between both but by can can't cannot com could couldn't did didn't do does doesn't
doing don't down during each else ever few for from further get had hadn't has hasn't have haven't having he
he'd he'll he's hence her here here's hers herself him himself his how how's however http i i'd i'll i'm i've
if in into is isn't it it's its itself just k let's like me more most mustn't my myself no nor not of off on
once only or other otherwise ought our ours ourselves out over own r same shall shan't she she'd she'll she's
should shouldn't since so some such than that that's the their theirs them themselves then there there's
therefore these they they'd they'll they're they've this those through to too under until up very was wasn't
we we'd we'll we're we've were weren't what what's when when's where where's which while who who's whom why
why's with won't would wouldn't www you you'd you'll you're you've your yours yourself yourselves`)

func toSet(list string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CommonWords counts lower-cased words across review texts, skipping stop words and
// single letters, and returns the n most frequent (ties alphabetical).
func CommonWords(rows []domain.CanonicalReview, n int) []WordCount {
	counts := map[string]int{}
	for _, r := range rows {
		for _, w := range tokenize(r.Reviews) {
			if _, stop := stopWords[w]; stop || len([]rune(w)) < 2 {
				continue
			}
			counts[w]++
		}
	}
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// tokenize splits on anything that is not a letter, digit or apostrophe.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for i, w := range words {
		words[i] = strings.Trim(w, "'")
	}
	return words
}
