package classifier_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/query"
	"github.com/teddybearwork/pickme/internal/query/classifier"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newClassifier(opts ...classifier.Option) *classifier.Classifier {
	opts = append(opts, classifier.WithClock(func() time.Time { return fixedNow }))
	return classifier.New(opts...)
}

func TestClassify_Inference(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantKind       query.Kind
		wantNormalized string
		wantTier       query.Tier
	}{
		{
			name:           "bare ten digit number is a free phone lookup",
			text:           "9791103607",
			wantKind:       query.KindPhone,
			wantNormalized: "9791103607",
			wantTier:       query.TierFree,
		},
		{
			name:           "phone keyword with number stays free",
			text:           "find phone 9791103607",
			wantKind:       query.KindPhone,
			wantNormalized: "9791103607",
			wantTier:       query.TierFree,
		},
		{
			name:           "verification intent upgrades phone to paid",
			text:           "verify owner of 9791103607",
			wantKind:       query.KindPhone,
			wantNormalized: "9791103607",
			wantTier:       query.TierPaid,
		},
		{
			name:           "international prefix kept in normalized value",
			text:           "mobile +919791103607",
			wantKind:       query.KindPhone,
			wantNormalized: "+919791103607",
			wantTier:       query.TierFree,
		},
		{
			name:           "email is detected and always free",
			text:           "who is behind suspect@example.co.in",
			wantKind:       query.KindEmail,
			wantNormalized: "suspect@example.co.in",
			wantTier:       query.TierFree,
		},
		{
			name:           "twelve digits with aadhaar keyword is a paid aadhaar lookup",
			text:           "123456789012 aadhaar verify",
			wantKind:       query.KindAadhaar,
			wantNormalized: "123456789012",
			wantTier:       query.TierPaid,
		},
		{
			name:           "aadhar misspelling also matches",
			text:           "check aadhar 123456789012",
			wantKind:       query.KindAadhaar,
			wantNormalized: "123456789012",
			wantTier:       query.TierPaid,
		},
		{
			name:           "anything else long enough falls through to general",
			text:           "ramesh kumar chennai",
			wantKind:       query.KindGeneral,
			wantNormalized: "ramesh kumar chennai",
			wantTier:       query.TierFree,
		},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := c.Classify(tt.text)
			require.True(t, ok)
			require.Equal(t, tt.wantKind, q.Kind)
			require.Equal(t, tt.wantNormalized, q.NormalizedValue)
			require.Equal(t, tt.wantTier, q.Tier)
			require.Equal(t, tt.text, q.RawText)
			require.Equal(t, fixedNow, q.RequestedAt)
		})
	}
}

func TestClassify_StructuredForm(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind query.Kind
		wantTier query.Tier
	}{
		{name: "phone command is free", text: "phone:9791103607", wantKind: query.KindPhone, wantTier: query.TierFree},
		{name: "aadhaar command is paid", text: "aadhaar:123456789012", wantKind: query.KindAadhaar, wantTier: query.TierPaid},
		{name: "pan command is paid", text: "pan:ABCDE1234F", wantKind: query.KindPAN, wantTier: query.TierPaid},
		{name: "dl alias maps to driving licence", text: "dl:TN0120230001234", wantKind: query.KindDrivingLicense, wantTier: query.TierPaid},
		{name: "voter id command is paid", text: "voter_id:XYZ1234567", wantKind: query.KindVoterID, wantTier: query.TierPaid},
		{name: "username command is free", text: "username:shadowfax_99", wantKind: query.KindUsername, wantTier: query.TierFree},
		{name: "kind token is case insensitive", text: "PHONE:9791103607", wantKind: query.KindPhone, wantTier: query.TierFree},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := c.Classify(tt.text)
			require.True(t, ok)
			require.Equal(t, tt.wantKind, q.Kind)
			require.Equal(t, tt.wantTier, q.Tier)
		})
	}
}

func TestClassify_StructuredFormBypassesInference(t *testing.T) {
	c := newClassifier()

	// Same digits as a paid aadhaar inference, but the explicit command wins
	// and carries the command's own tier.
	q, ok := c.Classify("phone:9791103607")
	require.True(t, ok)
	require.Equal(t, query.KindPhone, q.Kind)
	require.Equal(t, query.TierFree, q.Tier)
}

func TestClassify_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty input", text: ""},
		{name: "whitespace only", text: "   "},
		{name: "too short for general", text: "ab"},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Classify(tt.text)
			require.False(t, ok)
		})
	}
}

func TestClassify_StructuredFormEmptyValue(t *testing.T) {
	// A recognized kind token with no value is not a command; the text falls
	// through the rules and lands in general like any other short string.
	c := newClassifier()

	q, ok := c.Classify("phone:")
	require.True(t, ok)
	require.Equal(t, query.KindGeneral, q.Kind)
	require.Equal(t, query.TierFree, q.Tier)
	require.Equal(t, "phone:", q.NormalizedValue)
}

func TestClassify_PhoneBoundaries(t *testing.T) {
	c := newClassifier()

	t.Run("nine digits without context is general", func(t *testing.T) {
		q, ok := c.Classify("979110360 chennai")
		require.True(t, ok)
		require.Equal(t, query.KindGeneral, q.Kind)
	})

	t.Run("twelve digits without phone context is not a phone", func(t *testing.T) {
		q, ok := c.Classify("123456789012 chennai")
		require.True(t, ok)
		require.Equal(t, query.KindGeneral, q.Kind)
	})

	t.Run("twelve digits with phone keyword is a phone", func(t *testing.T) {
		q, ok := c.Classify("mobile 123456789012")
		require.True(t, ok)
		require.Equal(t, query.KindPhone, q.Kind)
		require.Equal(t, "123456789012", q.NormalizedValue)
	})

	t.Run("sixteen digit run is too long for a phone", func(t *testing.T) {
		q, ok := c.Classify("mobile 1234567890123456")
		require.True(t, ok)
		require.Equal(t, query.KindGeneral, q.Kind)
	})
}

func TestClassify_RuleOrderIsInjectable(t *testing.T) {
	// Aadhaar before phone: a 12-digit run with both phone and verification
	// keywords now resolves as aadhaar instead.
	c := newClassifier(classifier.WithRules([]classifier.Rule{
		classifier.AadhaarRule,
		classifier.PhoneRule,
		classifier.EmailRule,
		classifier.GeneralRule,
	}))

	q, ok := c.Classify("verify mobile 123456789012")
	require.True(t, ok)
	require.Equal(t, query.KindAadhaar, q.Kind)

	// Default order resolves the same text as a phone lookup.
	q, ok = newClassifier().Classify("verify mobile 123456789012")
	require.True(t, ok)
	require.Equal(t, query.KindPhone, q.Kind)
}
