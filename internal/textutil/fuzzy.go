package textutil

import (
	"math"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio scores two strings on a 0-100 scale from their normalized edit
// distance. Inputs are folded and punctuation-collapsed first. Either side
// being empty scores 0.
func Ratio(a, b string) int {
	return rawRatio(Normalize(a), Normalize(b))
}

// TokenSortRatio compares the strings after sorting their tokens, so word
// order does not matter.
func TokenSortRatio(a, b string) int {
	return rawRatio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens of both strings against each side's
// full token set. A string whose tokens are a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	var common, onlyA, onlyB []string
	for token := range setA {
		if _, ok := setB[token]; ok {
			common = append(common, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	slices.Sort(common)
	slices.Sort(onlyA)
	slices.Sort(onlyB)

	base := strings.Join(common, " ")
	left := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	right := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))
	if base != "" && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	return max(rawRatio(base, left), rawRatio(base, right), rawRatio(left, right))
}

// WeightedRatio blends the plain and token-based scores, discounting the
// token variants slightly so exact character matches win ties.
func WeightedRatio(a, b string) int {
	plain := Ratio(a, b)
	sorted := int(math.Round(float64(TokenSortRatio(a, b)) * 0.95))
	set := int(math.Round(float64(TokenSetRatio(a, b)) * 0.95))
	return max(plain, sorted, set)
}

func rawRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	distance := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(distance)/float64(longest))))
}

func sortedTokens(text string) string {
	tokens := Tokenize(text)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
