package wallet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	"github.com/mrz1836/dcrvault/internal/vaultcrypto"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

var (
	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)

	// bulletListRegex matches bullet prefixes like "- " "* " "• "
	bulletListRegex = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// GenerateMnemonic creates a fresh English mnemonic for the seed type.
// Types 12 and 17 use 128 bits of entropy, 24 and 33 use 256 bits.
func GenerateMnemonic(seedType SeedType) (string, error) {
	bitSize, err := seedType.EntropyBits()
	if err != nil {
		return "", err
	}

	entropy, err := vaultcrypto.MnemonicEntropy(bitSize)
	if err != nil {
		return "", err
	}
	defer entropy.Destroy()

	return bip39.NewMnemonic(entropy.Bytes())
}

// ValidateMnemonic checks that mnemonic can be imported as seedType: every
// word is in the English list, the checksum matches, and the encoded
// entropy has the size the scheme requires.
func ValidateMnemonic(mnemonic string, seedType SeedType) error {
	if mnemonic == "" {
		return vaulterr.ErrInvalidMnemonic
	}
	bits, err := seedType.EntropyBits()
	if err != nil {
		return err
	}

	normalized := NormalizeMnemonicInput(mnemonic)
	if typos := DetectTypos(normalized); len(typos) > 0 {
		return vaulterr.WithSuggestion(vaulterr.ErrInvalidMnemonic, FormatTypoSuggestions(typos))
	}

	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return vaulterr.WrapAs(vaulterr.ErrInvalidMnemonic, err, "checking mnemonic")
	}
	defer vaultcrypto.Zero(entropy)

	if len(entropy)*8 != bits {
		return vaulterr.WithDetails(vaulterr.ErrInvalidMnemonic, map[string]string{
			"seed_type": seedType.String(),
			"words":     strconv.Itoa(len(strings.Fields(normalized))),
		})
	}
	return nil
}

// NormalizeMnemonicInput cleans and normalizes mnemonic input by:
// - Converting to lowercase
// - Removing numbered list prefixes (1. 2) 3: etc.)
// - Removing bullet prefixes (- * •)
// - Replacing commas with spaces
// - Collapsing whitespace and trimming the ends
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// IsValidWord checks if a word is in the English word list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the maximum Levenshtein distance to consider a suggestion.
const MaxTypoDistance = 2

// TypoInfo describes an unknown mnemonic word and its closest match.
type TypoInfo struct {
	// Index is the word position in the mnemonic (0-based).
	Index int
	// Word is the original (possibly misspelled) word.
	Word string
	// Suggestion is the closest list word, or empty if none found.
	Suggestion string
	// Distance is the Levenshtein distance to the suggestion.
	Distance int
}

// SuggestWord finds the closest list word to the input.
// Returns empty string if no word is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos returns every word of mnemonic that is not in the word list.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	var typos []TypoInfo
	for i, word := range strings.Fields(NormalizeMnemonicInput(mnemonic)) {
		if IsValidWord(word) {
			continue
		}
		suggestion := SuggestWord(word)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: suggestion,
			Distance:   distance,
		})
	}
	return typos
}

// FormatTypoSuggestions formats typo information into human-readable suggestions.
func FormatTypoSuggestions(typos []TypoInfo) string {
	lines := make([]string, 0, len(typos))
	for _, typo := range typos {
		line := "Word " + strconv.Itoa(typo.Index+1) + ": '" + typo.Word + "'"
		if typo.Suggestion != "" {
			line += " - did you mean '" + typo.Suggestion + "'?"
		} else {
			line += " is not a valid mnemonic word"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
