package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes reasoning-model thinking tags from a response.
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))
}

// ParseDecision turns a raw model response into a Decision. The response is
// expected to be a JSON object, possibly inside a markdown code fence or
// surrounded by prose. Any parse failure or missing action degrades to a
// hold decision carrying the cause; a malformed response never becomes an
// error for the caller.
func ParseDecision(raw string) Decision {
	cleaned := StripThinkTags(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return parseFailure(raw, "no JSON object found")
	}

	var d Decision
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &d); err != nil {
		return parseFailure(raw, err.Error())
	}

	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	if d.Action == "" {
		return parseFailure(raw, "missing action field")
	}

	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	d.Ticker = strings.ToUpper(strings.TrimSpace(d.Ticker))
	d.RawResponse = raw
	return d
}

func parseFailure(raw, cause string) Decision {
	return Decision{
		Action:      ActionHold,
		Confidence:  0,
		Reasoning:   fmt.Sprintf("parse failure: %s", cause),
		RawResponse: raw,
	}
}
