package openapi

import "strings"

// descriptionSeparator joins description lines: a backslash followed by a
// newline, matching the line continuation of the doc text.
const descriptionSeparator = "\\\n"

// DescriptionPolicy decides which doc lines end up in the description.
//
// Both policies agree when the first line is repeated right after itself,
// which is how summary and description are usually written. They differ for
// a first line that is not repeated.
type DescriptionPolicy int

const (
	// DescriptionAfterSummary uses the lines following the summary line.
	DescriptionAfterSummary DescriptionPolicy = iota

	// DescriptionFoldRepeated uses every line starting at the summary line,
	// folding the summary into the next line when that line repeats it.
	DescriptionFoldRepeated
)

// splitDoc derives summary and description from doc lines.
func splitDoc(lines []string, policy DescriptionPolicy) (string, string) {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}

	first := -1
	for i, line := range trimmed {
		if line != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return "", ""
	}

	summary := trimmed[first]
	rest := trimmed[first+1:]
	if policy == DescriptionFoldRepeated && (len(rest) == 0 || rest[0] != summary) {
		rest = trimmed[first:]
	}

	return summary, joinDescription(rest)
}

// joinDescription drops blank lines around the text and joins the rest.
func joinDescription(lines []string) string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[start:end], descriptionSeparator)
}
