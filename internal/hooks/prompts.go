package hooks

import (
	"fmt"
	"strings"
)

const hookInstructions = `You write Farcaster posts for a crypto-native audience.

Rules:
- Write hooks only: one opening sentence, at most 120 characters
- No body text and no explanations
- Do not mention AI, algorithms or trend analysis
- Sound timely and native to onchain culture
- Borrow structure from the trending patterns, never their wording

Write 5 distinct hooks likely to perform well on Farcaster.`

const contentInstructions = `You write Farcaster posts for a crypto-native audience.

Rules:
- Expand the given hook into a full post of 200 to 280 characters
- Keep the crypto-native tone and sound authentic
- Do not mention AI or that the post was generated
- Mention the Base ecosystem where it fits

Write one complete Farcaster post.`

func hookPrompt(topic, trendSummary string) string {
	var b strings.Builder
	b.WriteString(hookInstructions)
	fmt.Fprintf(&b, "\n\nTOPIC: %s\n\nTRENDING PATTERNS:\n%s\n\n", topic, trendSummary)
	b.WriteString("Return exactly 5 hooks, one per line, numbered like this:\n")
	for i := 1; i <= maxHooks; i++ {
		fmt.Fprintf(&b, "%d. [hook]\n", i)
	}
	return strings.TrimRight(b.String(), "\n")
}

func contentPrompt(hook, topic, trendSummary string) string {
	var b strings.Builder
	b.WriteString(contentInstructions)
	fmt.Fprintf(&b, "\n\nTOPIC: %s\n\nSELECTED HOOK: \"%s\"\n\nTRENDING CONTEXT:\n%s\n\n", topic, hook, trendSummary)
	b.WriteString("Open with the hook, then add supporting content. 200 to 280 characters in total, hook included.\n")
	b.WriteString("Return only the post text.")
	return b.String()
}
