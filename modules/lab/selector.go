package lab

import (
	"sort"
	"strings"
)

// Candidate - one image the client is choosing between
type Candidate struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// RankedCandidate - a candidate with its overlap score
type RankedCandidate struct {
	URL   string   `json:"url"`
	Tags  []string `json:"tags"`
	Score int      `json:"score"`
}

// RankCandidates scores each candidate by how many of its tags appear as
// words of the post theme, ties broken by original order. The best match
// comes first; a zero score still ranks, the client decides the cutoff.
func RankCandidates(candidates []Candidate, postTheme string) []RankedCandidate {
	themeWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(postTheme)) {
		themeWords[strings.Trim(word, ".,!?;:")] = struct{}{}
	}

	ranked := make([]RankedCandidate, len(candidates))
	for i, candidate := range candidates {
		score := 0
		for _, tag := range candidate.Tags {
			if _, hit := themeWords[strings.ToLower(strings.TrimSpace(tag))]; hit {
				score++
			}
		}
		ranked[i] = RankedCandidate{URL: candidate.URL, Tags: candidate.Tags, Score: score}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}
