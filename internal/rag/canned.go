package rag

import "strings"

// CannedRule is a demo-mode fallback answer: when every keyword appears
// in the query, the template is returned. Rules are evaluated in order,
// first match wins, so lookup stays deterministic.
type CannedRule struct {
	Keywords []string
	Answer   string
}

// DefaultCannedRules are the stock demo responses used when nothing has
// been uploaded yet. They carry no citations: sources only ever come
// from contexts the retriever actually found.
func DefaultCannedRules() []CannedRule {
	return []CannedRule{
		{
			Keywords: []string{"tesla"},
			Answer:   "Based on Tesla's 2023 10-K report, Tesla's total revenues were $96.8 billion in 2023, representing a 19% increase from the previous year. The company's automotive segment contributed $82.4 billion of this revenue.",
		},
		{
			Keywords: []string{"revenue"},
			Answer:   "According to the financial documents, total revenues for 2023 were $96.8 billion, with automotive sales representing the largest segment at $82.4 billion.",
		},
		{
			Keywords: []string{"reset"},
			Answer:   "To reset the main console according to the technical manual, hold down both scroll wheels on the steering wheel for 10 seconds until the screen goes black, then wait for the system to reboot.",
		},
	}
}

// EvaluateCanned returns the first rule whose keywords all appear in the
// query, case-insensitively.
func EvaluateCanned(rules []CannedRule, query string) (string, bool) {
	q := strings.ToLower(query)
	for _, rule := range rules {
		matched := len(rule.Keywords) > 0
		for _, kw := range rule.Keywords {
			if !strings.Contains(q, strings.ToLower(kw)) {
				matched = false
				break
			}
		}
		if matched {
			return rule.Answer, true
		}
	}
	return "", false
}
