// Package extract turns unstructured resume text into structured credential
// records using a bounded set of heuristics. It is intentionally not an NLP
// model: misses reduce the output set, they are never errors.
package extract

import (
	"regexp"
	"strings"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
)

// section is the scan state carried through the fold over lines.
type section int

const (
	sectionNone section = iota
	sectionEducation
	sectionWork
	sectionProject
	sectionCertification
)

func (s section) credentialType() models.CredentialType {
	switch s {
	case sectionEducation:
		return models.TypeEducation
	case sectionWork:
		return models.TypeWork
	case sectionProject:
		return models.TypeProject
	case sectionCertification:
		return models.TypeCertification
	default:
		return ""
	}
}

// datePattern matches a 4-digit year optionally followed by -MM-DD.
var datePattern = regexp.MustCompile(`\d{4}(?:-\d{2}-\d{2})?`)

var institutionKeywords = []string{"university", "college", "school", "company", "inc", "ltd", "corp"}

var titleKeywords = []string{"bachelor", "master", "phd", "degree", "diploma", "certificate", "developer", "engineer", "manager"}

// Credentials extracts an ordered, possibly empty sequence of credential
// records from text. It is a pure function: identical input always yields
// identical records in identical order (record IDs excepted, which are fresh
// per call), and concurrent calls share no state.
//
// Known heuristic limit, preserved on purpose because stored hashes depend on
// it: two unrelated 4-digit numbers on one line are read as a date range, and
// overlapping records across adjacent lines are not deduplicated.
func Credentials(text string, ownerDID domain.DID) []models.CredentialRecord {
	var records []models.CredentialRecord

	current := sectionNone
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		// A section keyword only moves the scan state; the line itself is
		// never treated as a data line, even when it also carries a year.
		if next, ok := detectSection(lower); ok {
			current = next
			continue
		}

		if current == sectionNone {
			continue
		}
		if !datePattern.MatchString(line) && !containsAny(lower, "university", "college", "company") {
			continue
		}

		records = append(records, parseLine(line, current.credentialType(), ownerDID))
	}

	return records
}

// detectSection reports the section a header line switches to, checking
// keywords in a fixed order so a line matching several groups is stable.
func detectSection(lower string) (section, bool) {
	switch {
	case containsAny(lower, "education", "academic"):
		return sectionEducation, true
	case containsAny(lower, "experience", "work", "employment"):
		return sectionWork, true
	case strings.Contains(lower, "project"):
		return sectionProject, true
	case containsAny(lower, "certification", "certificate"):
		return sectionCertification, true
	default:
		return sectionNone, false
	}
}

// parseLine extracts issuer, title, and dates from a single candidate line.
// Each field is extracted independently; failures fall back, never abort.
func parseLine(line string, credType models.CredentialType, ownerDID domain.DID) models.CredentialRecord {
	words := strings.Fields(line)
	startDate, endDate := extractDates(line)

	return models.CredentialRecord{
		ID:        domain.NewCredentialID(),
		OwnerDID:  ownerDID,
		Type:      credType,
		Issuer:    extractIssuer(words),
		Title:     extractTitle(words),
		StartDate: startDate,
		EndDate:   endDate,
	}
}

// extractDates returns the first two year tokens on the line. A single token
// serves as both start and end; no token leaves both empty.
func extractDates(line string) (start, end string) {
	dates := datePattern.FindAllString(line, -1)
	if len(dates) == 0 {
		return "", ""
	}
	start = dates[0]
	end = dates[0]
	if len(dates) > 1 {
		end = dates[1]
	}
	return start, end
}

// extractIssuer finds an institution keyword and takes up to two words on
// either side of it. Without a keyword hit it falls back to the first three
// capitalized words, and failing that to the literal "Unknown".
func extractIssuer(words []string) string {
	for i, word := range words {
		if !containsAnyKeyword(strings.ToLower(word), institutionKeywords) {
			continue
		}
		lo := max(0, i-2)
		hi := min(len(words), i+3)
		return strings.Join(words[lo:hi], " ")
	}

	var capitalized []string
	for _, word := range words {
		if word[0] >= 'A' && word[0] <= 'Z' {
			capitalized = append(capitalized, word)
			if len(capitalized) == 3 {
				break
			}
		}
	}
	if len(capitalized) == 0 {
		return "Unknown"
	}
	return strings.Join(capitalized, " ")
}

// extractTitle finds a title keyword and takes one word on either side of it,
// falling back to the first four words of the line.
func extractTitle(words []string) string {
	for i, word := range words {
		if !containsAnyKeyword(strings.ToLower(word), titleKeywords) {
			continue
		}
		lo := max(0, i-1)
		hi := min(len(words), i+2)
		return strings.Join(words[lo:hi], " ")
	}
	return strings.Join(words[:min(4, len(words))], " ")
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(word string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(word, kw) {
			return true
		}
	}
	return false
}
