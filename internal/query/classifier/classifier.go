// Package classifier turns free-form officer input into a typed Query.
// Classification is a pure function of the input string and a fixed, ordered
// rule list; first match wins.
package classifier

import (
	"regexp"
	"strings"
	"time"

	"github.com/teddybearwork/pickme/internal/query"
)

// Rule inspects the raw text and either produces a classified query or
// declines. Rules must be pure.
type Rule func(raw string, now time.Time) (query.Query, bool)

// Classifier evaluates an ordered rule list. The structured `kind:value`
// command form always bypasses the rules.
type Classifier struct {
	rules []Rule
	clock func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules overrides the default rule order. The phone/aadhaar precedence is
// an inherited ambiguity, so hosts that want different tie-breaking reorder
// the rules here instead of forking the classifier.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		if len(rules) > 0 {
			c.rules = rules
		}
	}
}

// WithClock sets the clock used to stamp Query.RequestedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *Classifier) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New builds a classifier with the default rule order:
// phone, email, aadhaar, general.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules: []Rule{PhoneRule, EmailRule, AadhaarRule, GeneralRule},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify turns raw text into a typed Query. Returns ok=false when nothing
// recognizable is found.
func (c *Classifier) Classify(text string) (query.Query, bool) {
	now := c.clock()

	if q, ok := parseStructured(text, now); ok {
		return q, true
	}
	for _, rule := range c.rules {
		if q, ok := rule(text, now); ok {
			return q, true
		}
	}
	return query.Query{}, false
}

// structuredKinds maps command-form kind tokens onto query kinds and their
// default tier. The command form is produced by explicit commands and is
// always preferred over inference.
var structuredKinds = map[string]struct {
	kind query.Kind
	tier query.Tier
}{
	"phone":           {query.KindPhone, query.TierFree},
	"email":           {query.KindEmail, query.TierFree},
	"aadhaar":         {query.KindAadhaar, query.TierPaid},
	"pan":             {query.KindPAN, query.TierPaid},
	"dl":              {query.KindDrivingLicense, query.TierPaid},
	"driving_license": {query.KindDrivingLicense, query.TierPaid},
	"voter_id":        {query.KindVoterID, query.TierPaid},
	"voterid":         {query.KindVoterID, query.TierPaid},
	"username":        {query.KindUsername, query.TierFree},
	"general":         {query.KindGeneral, query.TierFree},
}

func parseStructured(text string, now time.Time) (query.Query, bool) {
	trimmed := strings.TrimSpace(text)
	kindTok, value, found := strings.Cut(trimmed, ":")
	if !found {
		return query.Query{}, false
	}
	entry, ok := structuredKinds[strings.ToLower(strings.TrimSpace(kindTok))]
	if !ok {
		return query.Query{}, false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return query.Query{}, false
	}
	q, err := query.NewQuery(entry.kind, text, value, entry.tier, now)
	if err != nil {
		return query.Query{}, false
	}
	return q, true
}

var (
	digitRunRe = regexp.MustCompile(`\+?\d+`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

var (
	phoneContextKeywords = []string{"phone", "number", "mobile", "cell", "owner", "details", "find"}
	phonePaidKeywords    = []string{"verify", "owner", "details"}
	aadhaarKeywords      = []string{"aadhaar", "aadhar", "verify"}
)

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// PhoneRule matches a contiguous run of 10-15 digits (optional + prefix)
// adjacent to phone-context keywords, or an exactly-10-digit run standing
// alone. Paid when verification intent keywords appear.
func PhoneRule(raw string, now time.Time) (query.Query, bool) {
	lower := strings.ToLower(raw)
	hasContext := containsAny(lower, phoneContextKeywords)

	for _, run := range digitRunRe.FindAllString(raw, -1) {
		digits := strings.TrimPrefix(run, "+")
		if len(digits) < 10 || len(digits) > 15 {
			continue
		}
		if !hasContext && len(digits) != 10 {
			continue
		}
		tier := query.TierFree
		if containsAny(lower, phonePaidKeywords) {
			tier = query.TierPaid
		}
		q, err := query.NewQuery(query.KindPhone, raw, run, tier, now)
		if err != nil {
			return query.Query{}, false
		}
		return q, true
	}
	return query.Query{}, false
}

// EmailRule matches a standards-shaped local@domain.tld token. Always free.
func EmailRule(raw string, now time.Time) (query.Query, bool) {
	match := emailRe.FindString(raw)
	if match == "" {
		return query.Query{}, false
	}
	q, err := query.NewQuery(query.KindEmail, raw, match, query.TierFree, now)
	if err != nil {
		return query.Query{}, false
	}
	return q, true
}

// AadhaarRule matches exactly 12 contiguous digits co-occurring with aadhaar
// or verification keywords. Only exact 12-digit runs engage, which keeps the
// overlap with phone candidates small. Always paid.
func AadhaarRule(raw string, now time.Time) (query.Query, bool) {
	lower := strings.ToLower(raw)
	if !containsAny(lower, aadhaarKeywords) {
		return query.Query{}, false
	}
	for _, run := range digitRunRe.FindAllString(raw, -1) {
		if strings.HasPrefix(run, "+") || len(run) != 12 {
			continue
		}
		q, err := query.NewQuery(query.KindAadhaar, raw, run, query.TierPaid, now)
		if err != nil {
			return query.Query{}, false
		}
		return q, true
	}
	return query.Query{}, false
}

// GeneralRule accepts any cleaned text longer than 3 characters as a free
// general search.
func GeneralRule(raw string, now time.Time) (query.Query, bool) {
	cleaned := strings.TrimSpace(raw)
	if len(cleaned) <= 3 {
		return query.Query{}, false
	}
	q, err := query.NewQuery(query.KindGeneral, raw, cleaned, query.TierFree, now)
	if err != nil {
		return query.Query{}, false
	}
	return q, true
}
