// Package security keeps credentials out of log output. The bridge handles a
// bot token on every outbound request URL and a webhook secret on every
// inbound one, so every log line passes through a redactor before it is
// written.
package security

import (
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches config keys that likely hold secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|credential)`)

// Redactor replaces secret values in strings with a redaction placeholder.
// It matches both regex patterns (known credential formats) and literal
// values collected from the loaded configuration. Safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with patterns for the credential
// formats the bridge touches.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Telegram bot token: <bot_id>:<hash>. The hash is long enough in
			// practice that short id:port strings never match.
			regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{20,}`),
			// Authorization header values.
			regexp.MustCompile(`Bearer [A-Za-z0-9._~+/-]{10,}=*`),
		},
	}
}

// AddLiteral registers a literal secret value to be redacted on sight.
// Empty and very short strings are ignored to avoid mangling ordinary text.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < 4 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// AddConfigSecrets walks raw per-module configuration and registers every
// scalar found under a secret-looking key (token, secret, password,
// credential) as a literal.
func (r *Redactor) AddConfigSecrets(configs map[string]yaml.Node) {
	for _, node := range configs {
		r.addNodeSecrets(&node, false)
	}
}

func (r *Redactor) addNodeSecrets(node *yaml.Node, underSecretKey bool) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			r.addNodeSecrets(child, underSecretKey)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			r.addNodeSecrets(value, secretKeyPattern.MatchString(key.Value))
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			r.addNodeSecrets(child, underSecretKey)
		}
	case yaml.ScalarNode:
		if underSecretKey {
			r.AddLiteral(node.Value)
		}
	}
}

// Redact replaces all known secret patterns and literal values in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	return s
}
