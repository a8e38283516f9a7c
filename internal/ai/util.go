package ai

import (
	"regexp"
	"strings"
)

const maxReplyLen = 2800

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// CleanReply strips reasoning blocks, surrounding quotes and hard-caps
// length. Returns "" when nothing usable remains.
func CleanReply(reply string) string {
	reply = strings.TrimSpace(thinkBlockRe.ReplaceAllString(reply, ""))

	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close))
				break
			}
		}
	}

	if len(strings.TrimSpace(reply)) < 2 {
		return ""
	}
	if r := []rune(reply); len(r) > maxReplyLen {
		reply = string(r[:maxReplyLen]) + "\n\n[truncated]"
	}
	return reply
}

// truncate cuts on a rune boundary; raw response bodies may be multi-byte.
func truncate(b []byte) string {
	r := []rune(string(b))
	if len(r) > 200 {
		return string(r[:200]) + "..."
	}
	return string(r)
}
