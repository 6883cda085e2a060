package assistant

import "github.com/i474232898/smart-mirror/internal/common"

// TriggerPhrases start a conversation when heard in a local transcript.
var TriggerPhrases = []string{"hey google", "ok google"}

// Triggered reports whether text contains a trigger phrase, ignoring case.
func Triggered(text string) bool {
	return common.ContainsAnyFold(text, TriggerPhrases...)
}
