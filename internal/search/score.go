package search

import "strings"

// Keyword sets for the official-score heuristic. Each set contributes at
// most once, so a title matching both "official" and "music video" still
// scores +5.
var (
	officialChannelKeywords = []string{"vevo", "records", "music", "official"}
	officialTitleKeywords   = []string{"official", "music video", "official video"}
	unofficialTitleKeywords = []string{"cover", "remix", "karaoke", "instrumental", "live"}
)

// OfficialScore ranks how likely a candidate is an authorized/official music
// video. Deterministic over (title, channelTitle) alone; rules are additive.
func OfficialScore(title, channelTitle string) int {
	score := 0
	titleLower := strings.ToLower(title)
	channelLower := strings.ToLower(channelTitle)

	if containsAny(channelLower, officialChannelKeywords) {
		score += 10
	}
	if containsAny(titleLower, officialTitleKeywords) {
		score += 5
	}
	if containsAny(titleLower, unofficialTitleKeywords) {
		score -= 3
	}
	return score
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
