package redact

import "regexp"

type builtin struct {
	ID string
	re *regexp.Regexp
}

// builtinPatterns is the generic cloud-credential/token set applied by
// every Redactor unless explicitly ignored (spec.md §4.2).
var builtinPatterns = []builtin{
	{"aws-access-key-id", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"aws-secret-access-key", regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`)},
	{"generic-api-key-assignment", regexp.MustCompile(`(?i)\b[\w-]*api[_-]?key\b\s*[:=]\s*['"]?[A-Za-z0-9_\-./+]{16,}['"]?`)},
	{"generic-secret-assignment", regexp.MustCompile(`(?i)\b[\w-]*secret\b\s*[:=]\s*['"]?[A-Za-z0-9_\-./+]{12,}['"]?`)},
	{"generic-token-assignment", regexp.MustCompile(`(?i)\btoken\b\s*[:=]\s*['"]?[A-Za-z0-9_\-./+]{16,}['"]?`)},
	{"github-pat", regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
	{"gitlab-pat", regexp.MustCompile(`\bglpat-[A-Za-z0-9_-]{20,}\b`)},
	{"slack-token", regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`)},
	{"private-key-block", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----[\s\S]+?-----END (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`)},
	{"bearer-auth-header", regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._\-]{16,}`)},
	{"basic-auth-header", regexp.MustCompile(`(?i)\bBasic\s+[A-Za-z0-9+/=]{16,}`)},
	{"google-api-key", regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}\b`)},
}
