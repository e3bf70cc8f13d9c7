// Package interpreter turns raw user text into a canonical intent. Two
// interpreters cooperate: a deterministic pattern interpreter tried first,
// and a language-model interpreter used when no pattern matches.
package interpreter

import (
	"regexp"
	"strings"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/intent"
)

// rule binds one pattern to one action kind and its own extraction
// function over the rule's capture groups. Extraction is never shared
// across rules.
type rule struct {
	re      *regexp.Regexp
	kind    catalog.ActionKind
	extract func(m []string) map[string]string
}

// PatternInterpreter matches text against an ordered rule list,
// first-match-wins. It is deterministic, side-effect-free, and never
// calls an external service.
type PatternInterpreter struct {
	rules []rule
}

// compileRule builds a case-insensitive rule pattern. Matching runs on
// the original text so addresses and identifiers keep their casing.
func compileRule(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// Ordering invariant: most-specific rules first. "create escrow for X to
// Y" must precede the generic "send X to Y" or the transfer rule would
// swallow it.
var defaultRules = []rule{
	{
		re:   compileRule(`(?:create|set up|open)\s+(?:an?\s+)?escrow\s+(?:for|of)\s+([\d.]+)\s*(?:\w+\s+)?(?:to|for)\s+(\S+)(?:\s+for\s+(.+))?`),
		kind: catalog.ActionCreateEscrow,
		extract: func(m []string) map[string]string {
			p := map[string]string{"amount": m[1], "beneficiary": m[2]}
			if m[3] != "" {
				p["duration"] = strings.TrimSpace(m[3])
			}
			return p
		},
	},
	{
		re:   compileRule(`release\s+(?:the\s+)?escrow\s+(\S+)`),
		kind: catalog.ActionReleaseEscrow,
		extract: func(m []string) map[string]string {
			return map[string]string{"escrow_id": m[1]}
		},
	},
	{
		re:   compileRule(`refund\s+(?:the\s+)?escrow\s+(\S+)`),
		kind: catalog.ActionRefundEscrow,
		extract: func(m []string) map[string]string {
			return map[string]string{"escrow_id": m[1]}
		},
	},
	{
		re:   compileRule(`stream\s+([\d.]+)\s*(?:\w+\s+)?to\s+(\S+)\s+(?:over|for)\s+(.+)`),
		kind: catalog.ActionCreateStream,
		extract: func(m []string) map[string]string {
			return map[string]string{"amount": m[1], "recipient": m[2], "duration": strings.TrimSpace(m[3])}
		},
	},
	{
		re:   compileRule(`(?:cancel|stop)\s+(?:the\s+)?stream\s+(\S+)`),
		kind: catalog.ActionCancelStream,
		extract: func(m []string) map[string]string {
			return map[string]string{"stream_id": m[1]}
		},
	},
	{
		re:   compileRule(`hire\s+(?:agent\s+)?(\S+)\s+for\s+([\d.]+)(?:\s*\w+)?(?:\s+to\s+(.+))?`),
		kind: catalog.ActionHireAgent,
		extract: func(m []string) map[string]string {
			p := map[string]string{"agent": m[1], "amount": m[2]}
			if m[3] != "" {
				p["task"] = strings.TrimSpace(m[3])
			}
			return p
		},
	},
	{
		re:   compileRule(`approve\s+(?:the\s+)?(?:work|job)\s+(?:for\s+|on\s+)?(\S+)`),
		kind: catalog.ActionApproveWork,
		extract: func(m []string) map[string]string {
			return map[string]string{"job_id": m[1]}
		},
	},
	{
		re:   compileRule(`(?:privately\s+send|send\s+privately|private\s+transfer\s+(?:of\s+)?)\s*([\d.]+)\s*(?:\w+\s+)?to\s+(\S+)`),
		kind: catalog.ActionPrivateTransfer,
		extract: func(m []string) map[string]string {
			return map[string]string{"amount": m[1], "recipient": m[2]}
		},
	},
	{
		re:   compileRule(`pay\s+invoice\s+(\S+)(?:\s+(?:for|of)\s+([\d.]+))?`),
		kind: catalog.ActionPayInvoice,
		extract: func(m []string) map[string]string {
			p := map[string]string{"invoice_id": m[1]}
			if m[2] != "" {
				p["amount"] = m[2]
			}
			return p
		},
	},
	{
		re:   compileRule(`subscribe\s+to\s+(\S+)\s+(?:for|at)\s+([\d.]+)(?:\s*\w+)?(?:\s+(?:per|every|\/)\s*(\S+))?`),
		kind: catalog.ActionSubscribe,
		extract: func(m []string) map[string]string {
			p := map[string]string{"service": m[1], "amount": m[2]}
			if m[3] != "" {
				p["interval"] = m[3]
			}
			return p
		},
	},
	{
		re:   compileRule(`(?:add\s+)?(\S+)\s+to\s+(?:the\s+)?allowlist|allowlist\s+(\S+)`),
		kind: catalog.ActionAddAllowlist,
		extract: func(m []string) map[string]string {
			addr := m[1]
			if addr == "" {
				addr = m[2]
			}
			return map[string]string{"address": addr}
		},
	},
	{
		re:   compileRule(`(?:add\s+)?(\S+)\s+to\s+(?:the\s+)?blocklist|block(?:list)?\s+(\S+)`),
		kind: catalog.ActionAddBlocklist,
		extract: func(m []string) map[string]string {
			addr := m[1]
			if addr == "" {
				addr = m[2]
			}
			return map[string]string{"address": addr}
		},
	},
	// Generic transfer comes last among the mutating rules so the more
	// specific escrow/stream/private phrasings win.
	{
		re:   compileRule(`(?:send|transfer|pay)\s+([\d.]+)\s*(\w+)?\s+to\s+(\S+)`),
		kind: catalog.ActionTransfer,
		extract: func(m []string) map[string]string {
			p := map[string]string{"amount": m[1], "recipient": m[3]}
			if m[2] != "" {
				p["token"] = strings.ToUpper(m[2])
			}
			return p
		},
	},
	{
		re:   compileRule(`(?:what(?:'s|\s+is)\s+my\s+)?balance|how\s+much\s+(?:\w+\s+)?do\s+i\s+have`),
		kind: catalog.ActionGetBalance,
		extract: func(m []string) map[string]string {
			return map[string]string{}
		},
	},
	{
		re:   compileRule(`spending\s+report|how\s+much\s+(?:have\s+i|did\s+i)\s+spen[dt]`),
		kind: catalog.ActionGetSpendingReport,
		extract: func(m []string) map[string]string {
			return map[string]string{}
		},
	},
}

// suggestions shown when no rule matches.
var defaultSuggestions = []string{
	"send 50 USDC to 0xABC",
	"create escrow for 500 USDC to 0xDEF",
	"stream 300 USDC to 0xABC over 30d",
	"pay invoice INV-1042",
	"what's my balance",
}

// NewPatternInterpreter creates an interpreter with the built-in rules.
func NewPatternInterpreter() *PatternInterpreter {
	return &PatternInterpreter{rules: defaultRules}
}

// Interpret tries each rule in order against the trimmed input,
// matching case-insensitively. A match yields a fixed-confidence pattern
// intent; no match yields an unknown intent with example commands.
// Absence of a match is a normal outcome, never an error.
func (p *PatternInterpreter) Interpret(text string) intent.Intent {
	normalized := strings.TrimSpace(text)

	for _, r := range p.rules {
		m := r.re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		return intent.Intent{
			Kind:       r.kind,
			Params:     r.extract(m),
			Confidence: intent.PatternConfidence,
			Origin:     intent.OriginPattern,
			RawInput:   text,
		}
	}

	return intent.Unknown(text, defaultSuggestions)
}
