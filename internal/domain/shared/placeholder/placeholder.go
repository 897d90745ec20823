// Package placeholder provides composable text substitution functions used to
// render product and pricer tokens such as %product_price_buy%.
package placeholder

import "strings"

// Replacer substitutes tokens in a string
type Replacer func(string) string

// Identity returns its input unchanged
func Identity(s string) string {
	return s
}

// New returns a Replacer substituting each token with its value.
// Pairs are given as token, value, token, value...
func New(pairs ...string) Replacer {
	if len(pairs) == 0 {
		return Identity
	}
	if len(pairs)%2 != 0 {
		panic("placeholder.New: odd number of arguments")
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace
}

// Chain composes replacers into a pipeline: each stage receives the output
// of the previous one. Nil stages are skipped.
func Chain(stages ...Replacer) Replacer {
	return func(s string) string {
		for _, stage := range stages {
			if stage == nil {
				continue
			}
			s = stage(s)
		}
		return s
	}
}

// Apply runs the replacer over every line
func (r Replacer) Apply(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = r(line)
	}
	return out
}
