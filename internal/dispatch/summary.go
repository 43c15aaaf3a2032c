package dispatch

import (
	"fmt"
	"strings"

	"github.com/teddybearwork/pickme/internal/query"
)

// summarize renders a one-line human-readable digest of an execution for
// chat-style hosts. Example:
//
//	phone lookup for 9791103607: success (2/2 sources, 2 credits)
func summarize(q query.Query, results []query.ProviderResult) string {
	succeeded := 0
	credits := 0
	var failed []string
	for _, r := range results {
		if r.Succeeded {
			succeeded++
			credits += r.CostCredits
		} else {
			failed = append(failed, r.Provider)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s lookup for %s: ", q.Kind, q.NormalizedValue)
	switch {
	case len(results) == 0:
		b.WriteString("no providers configured")
		return b.String()
	case succeeded == 0:
		b.WriteString("failed")
	case len(failed) > 0:
		b.WriteString("partial success")
	default:
		b.WriteString("success")
	}

	fmt.Fprintf(&b, " (%d/%d sources", succeeded, len(results))
	if credits > 0 {
		fmt.Fprintf(&b, ", %d credits", credits)
	}
	b.WriteString(")")

	if len(failed) > 0 {
		fmt.Fprintf(&b, "; failed: %s", strings.Join(failed, ", "))
	}
	return b.String()
}
