// Package redact scans serialized session data for secrets and PII.
//
// Critical rules fail the whole operation closed; non-critical rules rewrite
// matches in place with a sentinel token. The engine operates on the
// serialized session so patterns can cross structural boundaries (a key
// embedded inside a JSON string still matches).
package redact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cascadehq/memvault/internal/model"
)

// Severity classifies a rule's failure policy.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityNonCritical Severity = "non_critical"
)

// Rule is a named pattern with a severity flag.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Severity Severity
}

// Sentinel returns the replacement token for a non-critical rule's matches.
func (r Rule) Sentinel() string {
	return "[REDACTED:" + strings.ToUpper(r.Name) + "]"
}

// PolicyViolationError reports a critical rule hit. The store operation must
// abort with nothing persisted.
type PolicyViolationError struct {
	Rule  string
	Count int
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("security policy violation: rule %q matched %d time(s); refusing to store", e.Rule, e.Count)
}

// Rules is the fixed, ordered catalog. Order determines evaluation order but
// not precedence: all rules are evaluated and any critical hit wins.
var Rules = []Rule{
	{
		Name:     "private_key",
		Pattern:  regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |ENCRYPTED )?PRIVATE KEY-----`),
		Severity: SeverityCritical,
	},
	{
		Name:     "auth_header",
		Pattern:  regexp.MustCompile(`(?i)authorization:\s*(?:bearer|basic)\s+[A-Za-z0-9+/=._-]{16,}`),
		Severity: SeverityCritical,
	},
	{
		Name:     "password_assignment",
		Pattern:  regexp.MustCompile(`(?i)(?:password|passwd|pwd)\s*[=:]\s*\S{8,}`),
		Severity: SeverityCritical,
	},
	{
		Name:     "cloud_secret_key",
		Pattern:  regexp.MustCompile(`(?i)aws_secret_access_key\s*[=:]\s*[A-Za-z0-9/+=]{40}`),
		Severity: SeverityCritical,
	},
	{
		Name:     "cloud_access_key_id",
		Pattern:  regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
		Severity: SeverityNonCritical,
	},
	{
		Name:     "email",
		Pattern:  regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Severity: SeverityNonCritical,
	},
	{
		Name:     "phone",
		Pattern:  regexp.MustCompile(`\b\+?\d{1,3}[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
		Severity: SeverityNonCritical,
	},
	{
		Name:     "opaque_token",
		Pattern:  regexp.MustCompile(`\b[A-Za-z0-9_]{32,}\b`),
		Severity: SeverityNonCritical,
	},
	{
		Name:     "ipv4",
		Pattern:  regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Severity: SeverityNonCritical,
	},
}

// Redact scans the session and returns a redacted copy plus a report of the
// rules that fired. A critical hit returns a *PolicyViolationError and no
// redacted output; the caller must not persist anything from this call.
func Redact(session *model.Session) (*model.Session, *model.RedactionReport, error) {
	raw, err := session.Serialize()
	if err != nil {
		return nil, nil, err
	}

	redacted, report, err := RedactText(string(raw))
	if err != nil {
		return nil, nil, err
	}
	if len(report.Hits) == 0 {
		// Untouched input round-trips exactly.
		return session, report, nil
	}

	out, err := model.ParseSession([]byte(redacted))
	if err != nil {
		return nil, nil, fmt.Errorf("reparse redacted session: %w", err)
	}
	return out, report, nil
}

// RedactText runs the rule catalog over a serialized payload. Each rule
// reprocesses the text as rewritten by earlier rules.
func RedactText(text string) (string, *model.RedactionReport, error) {
	report := &model.RedactionReport{}

	for _, rule := range Rules {
		matches := rule.Pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		if rule.Severity == SeverityCritical {
			// Fail closed: all redaction work done so far is discarded.
			report.CriticalDetected = true
			return "", report, &PolicyViolationError{Rule: rule.Name, Count: len(matches)}
		}

		text = rule.Pattern.ReplaceAllString(text, rule.Sentinel())
		report.Hits = append(report.Hits, model.RuleHit{
			Rule:     rule.Name,
			Count:    len(matches),
			Severity: string(rule.Severity),
		})
	}

	return text, report, nil
}
