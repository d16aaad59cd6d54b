// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis transforms raw text into searchable tokens through a multi-stage
// pipeline. This process is crucial for effective full-text search.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Tokenization      → Split text into words
//  2. Lowercasing       → Normalize case ("Quick" → "quick")
//  3. Stop word removal → Remove common words ("the", "a", etc.)
//  4. Length filtering  → Remove very short tokens (< 2 chars)
//  5. Stemming          → Reduce words to root form ("running" → "run")
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "The Quick Brown Fox Jumps!"
// Step 1: ["The", "Quick", "Brown", "Fox", "Jumps"]     (tokenize)
// Step 2: ["the", "quick", "brown", "fox", "jumps"]     (lowercase)
// Step 3: ["quick", "brown", "fox", "jumps"]            (remove stopwords)
// Step 4: ["quick", "brown", "fox", "jumps"]            (length filter - all pass)
// Step 5: ["quick", "brown", "fox", "jump"]             (stemming)
//
// POSITIONS:
// ----------
// The index's phrase matcher needs positions to be dense and sequential
// over the *surviving* tokens, not the raw word stream: a stopword dropped
// mid-sentence must not leave a gap a phrase query could never bridge.
// Analyze assigns position i to the i-th token remaining after every filter
// has run, matching the tokenizer contract every other package assumes
// (deterministic, identical at build and query time).
// ═══════════════════════════════════════════════════════════════════════════════
package analyze

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/wizenheimer/strata/invindex"
)

// Config holds the tunable knobs of the analysis pipeline.
type Config struct {
	MinTokenLength  int  // Minimum token length to keep (default: 2)
	EnableStemming  bool // Whether to apply stemming (default: true)
	EnableStopwords bool // Whether to remove stopwords (default: true)
}

// DefaultConfig returns the standard analyzer configuration.
func DefaultConfig() Config {
	return Config{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Analyze tokenizes text with the default pipeline and returns the plain
// token strings in order, discarding positions. This is the shape most
// callers (boolq term lookups, query parsing) want.
//
// Example:
//
//	tokens := Analyze("The quick brown fox jumps over the lazy dog")
//	// Returns: ["quick", "brown", "fox", "jump", "lazi", "dog"]
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultConfig())
}

// AnalyzeWithConfig runs the pipeline with a custom configuration.
func AnalyzeWithConfig(text string, config Config) []string {
	tokens := tokenize(text)
	tokens = lowercaseFilter(tokens)

	if config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, config.MinTokenLength)

	if config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// Tokenize runs the default pipeline and pairs each surviving token with its
// 0-based position in the filtered stream, the (token, position) contract
// invindex.Builder.IndexTokens expects.
func Tokenize(text string) []invindex.Token {
	return TokenizeWithConfig(text, DefaultConfig())
}

// TokenizeWithConfig is Tokenize with an explicit Config.
func TokenizeWithConfig(text string, config Config) []invindex.Token {
	terms := AnalyzeWithConfig(text, config)
	out := make([]invindex.Token, len(terms))
	for i, term := range terms {
		out[i] = invindex.Token{Term: term, Position: i}
	}
	return out
}

// tokenize splits text into individual words.
//
// Uses Unicode-aware splitting: any non-letter and non-digit character is a
// delimiter.
//
// Examples:
//
//	"hello-world"      → ["hello", "world"]
//	"user@email.com"   → ["user", "email", "com"]
//	"café"             → ["café"]  (Unicode letters preserved)
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// lowercaseFilter normalizes token casing.
func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

// stopwordFilter removes common English words that don't add search value.
func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

// lengthFilter drops tokens shorter than minLength.
func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces words to their root form using the Snowball
// (Porter2) English stemmer.
//
// Example:
//
//	["running", "quickly", "foxes"] → ["run", "quick", "fox"]
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

// isStopword checks if a token is a common English stopword.
func isStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}
