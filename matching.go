package sochx

import (
	"sort"
	"strings"
)

// Match weights: shared research interests dominate, shared skills follow,
// matching academic level breaks near-ties.
const (
	matchWeightInterest = 3
	matchWeightSkill    = 2
	matchWeightLevel    = 1
)

// MatchCandidate is one ranked collaborator suggestion.
type MatchCandidate struct {
	User            *User    `json:"user"`
	Score           int      `json:"score"`
	SharedInterests []string `json:"shared_interests"`
	SharedSkills    []string `json:"shared_skills"`
}

// MatchScore computes the compatibility score between two profiles.
func MatchScore(a, b *User) int {
	if a == nil || b == nil {
		return 0
	}

	score := matchWeightInterest*len(sharedTags(a.ResearchInterests, b.ResearchInterests)) +
		matchWeightSkill*len(sharedTags(a.SkillTags, b.SkillTags))

	if a.AcademicLevel != "" && strings.EqualFold(a.AcademicLevel, b.AcademicLevel) {
		score += matchWeightLevel
	}

	return score
}

// RankMatches scores every candidate against the profile and returns the top
// scorers in descending order. Zero-score candidates are dropped.
func RankMatches(profile *User, candidates []*User, limit int) []MatchCandidate {
	ranked := make([]MatchCandidate, 0, len(candidates))

	for _, c := range candidates {
		score := MatchScore(profile, c)
		if score == 0 {
			continue
		}
		ranked = append(ranked, MatchCandidate{
			User:            c,
			Score:           score,
			SharedInterests: sharedTags(profile.ResearchInterests, c.ResearchInterests),
			SharedSkills:    sharedTags(profile.SkillTags, c.SkillTags),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// sharedTags intersects two tag lists case-insensitively, preserving the
// first list's casing and order.
func sharedTags(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	index := make(map[string]struct{}, len(b))
	for _, tag := range b {
		index[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	var shared []string
	seen := make(map[string]struct{}, len(a))

	for _, tag := range a {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if _, ok := index[key]; ok {
			shared = append(shared, tag)
			seen[key] = struct{}{}
		}
	}

	return shared
}
