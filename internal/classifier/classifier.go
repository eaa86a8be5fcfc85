// Package classifier maps free-text job titles to a technology label from a
// closed vocabulary. It is a plain exact-token matcher: no substrings, no
// fuzziness, and it never fails — anything unrecognizable is "Other".
package classifier

import (
	"regexp"
	"strings"
)

// Fallback is returned when no vocabulary member appears in the title.
const Fallback = "Other"

// knownTechs is the closed vocabulary, in match-priority order so that
// classification is deterministic.
var knownTechs = []string{
	"SAP", "Clojure", "C#", "Java", "C++", "PHP", "Python", "JavaScript",
	"AWS", "VHDL", "COBOL", "RPG", "Delphi", "Angular", "TypeScript", "Go",
	"Ruby", "SQL", "PL/SQL", "ABAP", "NodeJS", "Flutter", "Scala", "Kotlin",
	"Rust", ".NET", "iOS", "Android",
}

// ignoreWords are role/seniority/HR boilerplate tokens common in German
// posting titles. They are skipped before vocabulary matching so that e.g.
// "in" never shadows a later tech token.
var ignoreWords = map[string]struct{}{
	"softwareentwickler": {}, "entwickler": {}, "entwicklerin": {},
	"entwickler/in": {}, "software": {}, "programmierer": {}, "m/w/d": {},
	"mwd": {}, ":in": {}, "leiter": {}, "teamleitung": {}, "projektleiter": {},
	"senior": {}, "junior": {}, "fullstack": {}, "praktikum": {},
	"student": {}, "werkstudent": {}, "trainee": {}, "dual": {}, "mit": {},
	"in": {}, "als": {},
}

// noiseRegex strips parenthesized segments (gender markers like "(m/w/d)")
// and turns slash/hyphen/comma separators into spaces so alternates such as
// "Frontend/Backend" split into separate tokens.
var noiseRegex = regexp.MustCompile(`\(.*?\)|[/,-]`)

// Classify returns the technology label for a job title. The title is
// cleaned, lower-cased and tokenized; the first token (left to right) that
// exactly equals a vocabulary member wins. Titles with no match yield the
// fallback label.
func Classify(title string) string {
	clean := noiseRegex.ReplaceAllString(title, " ")
	for _, word := range strings.Fields(strings.ToLower(clean)) {
		if _, skip := ignoreWords[word]; skip {
			continue
		}
		for _, tech := range knownTechs {
			if word == strings.ToLower(tech) {
				return tech
			}
		}
	}
	return Fallback
}
