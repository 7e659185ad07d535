package plate

import (
	"regexp"
	"strings"
)

// Normalized plate length bounds. Anything outside is rejected before
// pattern matching.
const (
	MinLength = 4
	MaxLength = 10
)

// Rule is a country-specific plate format. Rules are tried in order and
// the first match wins, so permissive patterns (Germany, Poland) must
// come after the specific ones they would otherwise shadow.
type Rule struct {
	CountryCode string
	CountryName string
	Pattern     *regexp.Regexp
	Example     string
}

var rules = []Rule{
	// Great Britain, DVLA current format first, then older styles.
	{"GB", "Great Britain (DVLA)", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{3}$`), "AB12CDE"},
	{"GB", "Great Britain (Older)", regexp.MustCompile(`^[A-Z][0-9]{1,3}[A-Z]{3}$`), "A123BCD"},
	{"GB", "Great Britain (Older)", regexp.MustCompile(`^[A-Z]{3}[0-9]{1,3}[A-Z]$`), "ABC123D"},

	{"IE", "Ireland", regexp.MustCompile(`^[0-9]{2,3}[A-Z]{1,2}[0-9]{1,6}$`), "12D12345"},

	{"PT", "Portugal", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}$`), "AA12BB"},
	{"PT", "Portugal", regexp.MustCompile(`^[0-9]{2}[A-Z]{2}[0-9]{2}$`), "12AA34"},

	{"ES", "Spain", regexp.MustCompile(`^[0-9]{4}[A-Z]{3}$`), "1234ABC"},

	{"FR", "France", regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]{2}$`), "AA123AA"},

	{"DE", "Germany", regexp.MustCompile(`^[A-Z]{1,3}[A-Z]{1,2}[0-9]{1,4}$`), "BAB1234"},
	{"DE", "Germany", regexp.MustCompile(`^[A-Z]{1,3}[0-9]{1,4}$`), "B1234"},

	// Italy shares the French structure; FR wins on ties by ordering.
	{"IT", "Italy", regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]{2}$`), "AB123CD"},

	{"NL", "Netherlands", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}$`), "AB12CD"},
	{"NL", "Netherlands", regexp.MustCompile(`^[0-9]{2}[A-Z]{3}[0-9]$`), "12ABC3"},
	{"NL", "Netherlands", regexp.MustCompile(`^[0-9][A-Z]{3}[0-9]{2}$`), "1ABC23"},

	{"BE", "Belgium", regexp.MustCompile(`^[0-9][A-Z]{3}[0-9]{3}$`), "1ABC123"},
	{"BE", "Belgium", regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`), "ABC123"},

	{"CH", "Switzerland", regexp.MustCompile(`^[A-Z]{2}[0-9]{1,6}$`), "ZH123456"},

	{"AT", "Austria", regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,5}[A-Z]{1,2}$`), "W12345A"},

	{"SE", "Sweden", regexp.MustCompile(`^[A-Z]{3}[0-9]{2}[A-Z0-9]$`), "ABC12D"},

	{"NO", "Norway", regexp.MustCompile(`^[A-Z]{2}[0-9]{5}$`), "AB12345"},

	{"DK", "Denmark", regexp.MustCompile(`^[A-Z]{2}[0-9]{5}$`), "AB12345"},

	{"PL", "Poland", regexp.MustCompile(`^[A-Z]{2,3}[A-Z0-9]{4,5}$`), "WA12345"},
}

var separators = regexp.MustCompile(`[\s\-._]+`)

// Result of validating a raw plate.
type Result struct {
	IsValid     bool
	Country     string
	CountryName string
	Normalized  string
}

// Normalize uppercases, trims, and strips spaces, dashes, dots and
// underscores: "ab-12 cde" -> "AB12CDE".
func Normalize(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	return separators.ReplaceAllString(normalized, "")
}

// DetectCountry returns the country code and name of the first matching
// rule, or empty strings if no rule matches.
func DetectCountry(raw string) (string, string) {
	normalized := Normalize(raw)
	if normalized == "" {
		return "", ""
	}
	for _, rule := range rules {
		if rule.Pattern.MatchString(normalized) {
			return rule.CountryCode, rule.CountryName
		}
	}
	return "", ""
}

// Validate normalizes raw and matches it against the supported country
// formats. Length is checked before any pattern is tried.
func Validate(raw string) Result {
	normalized := Normalize(raw)
	result := Result{Normalized: normalized}

	if len(normalized) < MinLength || len(normalized) > MaxLength {
		return result
	}

	code, name := DetectCountry(normalized)
	if code == "" {
		return result
	}

	result.IsValid = true
	result.Country = code
	result.CountryName = name
	return result
}

// SupportedExamples lists one example per rule, deduplicated, for use in
// validation error detail.
func SupportedExamples() []string {
	seen := map[string]struct{}{}
	examples := make([]string, 0, len(rules))
	for _, rule := range rules {
		if _, ok := seen[rule.Example]; ok {
			continue
		}
		seen[rule.Example] = struct{}{}
		examples = append(examples, rule.Example)
	}
	return examples
}
