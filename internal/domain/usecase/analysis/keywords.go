package analysis

import (
	"regexp"
	"strings"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// RuleTable is the single, versioned source of truth for keyword
// normalization. Compound terms are kept intact, allowlisted technical terms
// survive even as single words, and generic filler words are dropped.
// Bump Version whenever the rules change.
type RuleTable struct {
	Version int

	compoundTerms  map[string]struct{}
	technicalTerms map[string]struct{}
	ignoredSingles map[string]struct{}
	excluded       []*regexp.Regexp
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// DefaultRuleTable returns rule table version 1
func DefaultRuleTable() *RuleTable {
	compounds := []string{
		// product and business terms
		"product owner", "product manager", "product backlog", "product vision",
		"user stories", "acceptance criteria", "performance indicators",
		"agile teams", "agile development", "agile methodology",
		// technical terms and tooling
		"data base", "operating system", "web development", "mobile development",
		"frontend development", "backend development", "fullstack development",
		"object oriented programming", "software architecture",
		"systems architecture", "cloud infrastructure", "web services",
		"user interface", "user experience", "data analysis",
		"business intelligence", "machine learning",
		// management and process
		"project management", "product management", "team management",
		"technical leadership", "scrum methodology", "scrum framework",
		// payment-domain terms
		"payment gateway", "payment processing", "fraud prevention",
	}
	technical := []string{
		"sql", "kpi", "pmo", "pos", "cro", "api", "app", "apps",
		"jira", "trello", "miro", "figma", "techfin", "fintech",
		"backlog", "scrum", "kanban", "devops", "agile",
		"gateway", "gateways", "aws", "gcp", "azure",
	}
	ignored := []string{
		"framework", "tool", "platform", "system", "environment", "module",
		"knowledge", "experience",
	}
	// benefits, salary and logistics noise extracted from job postings
	excludedPatterns := []string{
		`(?i)health\s*(plan|insurance)`, `(?i)meal\s*(voucher|allowance)`,
		`(?i)gympass`, `(?i)day\s*off`, `(?i)benefits?`,
		`(?i)salary`, `(?i)bonus`, `(?i)profit\s*sharing`, `(?i)commission`,
		`(?i)hybrid`, `(?i)remote`, `(?i)on[-\s]?site`, `(?i)home\s*office`,
		`(?i)working\s*hours`, `(?i)schedule`, `(?i)location`,
		`(?i)contract\s*type`, `(?i)internship`, `(?i)trainee`,
		`(?i)dress\s*code`,
	}

	rt := &RuleTable{
		Version:        1,
		compoundTerms:  make(map[string]struct{}, len(compounds)),
		technicalTerms: make(map[string]struct{}, len(technical)),
		ignoredSingles: make(map[string]struct{}, len(ignored)),
	}
	for _, term := range compounds {
		rt.compoundTerms[term] = struct{}{}
	}
	for _, term := range technical {
		rt.technicalTerms[term] = struct{}{}
	}
	for _, term := range ignored {
		rt.ignoredSingles[term] = struct{}{}
	}
	for _, pattern := range excludedPatterns {
		rt.excluded = append(rt.excluded, regexp.MustCompile(pattern))
	}
	return rt
}

// NormalizeKeyword reduces a keyword to its deduplication key.
// An empty key means the keyword carries no signal and should be dropped.
func (rt *RuleTable) NormalizeKeyword(keyword string) string {
	text := nonWord.ReplaceAllString(strings.ToLower(keyword), " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	// Allowlisted technical terms and known compounds stand on their own
	if _, ok := rt.technicalTerms[text]; ok {
		return text
	}
	if _, ok := rt.compoundTerms[text]; ok {
		return text
	}

	// A lone filler word carries no signal
	if _, ok := rt.ignoredSingles[text]; ok {
		return ""
	}

	// Strip a leading filler word ("experience java" -> "java")
	words := strings.Fields(text)
	if len(words) > 1 {
		if _, ok := rt.ignoredSingles[words[0]]; ok {
			words = words[1:]
		}
	}

	// Drop version-number tokens so "python 3 11" and "python" share a key
	kept := words[:0]
	for _, word := range words {
		if isNumeric(word) && len(words) > 1 {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// IsExcluded reports whether the keyword matches a benefit/logistics pattern
// and should not count as a job requirement
func (rt *RuleTable) IsExcluded(keyword string) bool {
	for _, re := range rt.excluded {
		if re.MatchString(keyword) {
			return true
		}
	}
	return false
}

// dedupe collapses keywords sharing a normalization key, keeping the most
// complete (longest) original spelling and the first-seen order of keys
func (rt *RuleTable) dedupe(keywords []string) []string {
	order := make([]string, 0, len(keywords))
	best := make(map[string]string, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.Join(strings.Fields(keyword), " ")
		if keyword == "" || rt.IsExcluded(keyword) {
			continue
		}
		key := rt.NormalizeKeyword(keyword)
		if key == "" {
			continue
		}
		current, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = keyword
		} else if len(keyword) > len(current) {
			best[key] = keyword
		}
	}

	result := make([]string, 0, len(order))
	for _, key := range order {
		result = append(result, best[key])
	}
	return result
}

// CleanReport applies the rule table to every keyword list of a report:
// duplicates collapse, excluded noise disappears, and a keyword reported as
// present never shows up as missing as well.
func (rt *RuleTable) CleanReport(report *entity.AnalysisReport) {
	report.ExtractedKeywords.AllKeywords = rt.dedupe(report.ExtractedKeywords.AllKeywords)
	report.Keywords.Present = rt.dedupe(report.Keywords.Present)

	presentKeys := make(map[string]struct{}, len(report.Keywords.Present))
	for _, keyword := range report.Keywords.Present {
		presentKeys[rt.NormalizeKeyword(keyword)] = struct{}{}
	}

	missing := rt.dedupe(report.Keywords.Missing)
	filtered := make([]string, 0, len(missing))
	for _, keyword := range missing {
		if _, ok := presentKeys[rt.NormalizeKeyword(keyword)]; ok {
			continue
		}
		filtered = append(filtered, keyword)
	}
	report.Keywords.Missing = filtered
}
