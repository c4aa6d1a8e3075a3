package sochx_test

import (
	"testing"

	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchScore(t *testing.T) {
	me := &sochx.User{
		AcademicLevel:     "undergraduate",
		ResearchInterests: []string{"genomics", "machine learning"},
		SkillTags:         []string{"python", "r"},
	}

	t.Run("weights interests, skills and level", func(t *testing.T) {
		other := &sochx.User{
			AcademicLevel:     "undergraduate",
			ResearchInterests: []string{"genomics"},
			SkillTags:         []string{"python"},
		}

		// 1 shared interest * 3 + 1 shared skill * 2 + same level
		assert.Equal(t, 6, sochx.MatchScore(me, other))
	})

	t.Run("level alone gives one point", func(t *testing.T) {
		other := &sochx.User{AcademicLevel: "Undergraduate"}
		assert.Equal(t, 1, sochx.MatchScore(me, other))
	})

	t.Run("no overlap scores zero", func(t *testing.T) {
		other := &sochx.User{
			AcademicLevel:     "graduate",
			ResearchInterests: []string{"astrophysics"},
			SkillTags:         []string{"matlab"},
		}
		assert.Zero(t, sochx.MatchScore(me, other))
	})

	t.Run("tag comparison ignores case", func(t *testing.T) {
		other := &sochx.User{
			ResearchInterests: []string{"GENOMICS"},
		}
		assert.Equal(t, 3, sochx.MatchScore(me, other))
	})

	t.Run("empty levels never match", func(t *testing.T) {
		a := &sochx.User{}
		b := &sochx.User{}
		assert.Zero(t, sochx.MatchScore(a, b))
	})

	t.Run("nil profiles score zero", func(t *testing.T) {
		assert.Zero(t, sochx.MatchScore(nil, me))
		assert.Zero(t, sochx.MatchScore(me, nil))
	})
}

func TestRankMatches(t *testing.T) {
	me := &sochx.User{
		AcademicLevel:     "undergraduate",
		ResearchInterests: []string{"genomics", "proteomics"},
		SkillTags:         []string{"python"},
	}

	strong := &sochx.User{
		FullName:          "Strong Match",
		AcademicLevel:     "undergraduate",
		ResearchInterests: []string{"genomics", "proteomics"},
		SkillTags:         []string{"python"},
	}
	weak := &sochx.User{
		FullName:  "Weak Match",
		SkillTags: []string{"python"},
	}
	none := &sochx.User{
		FullName:          "No Match",
		ResearchInterests: []string{"economics"},
	}

	t.Run("orders by score and drops zero scorers", func(t *testing.T) {
		ranked := sochx.RankMatches(me, []*sochx.User{none, weak, strong}, 10)

		require.Len(t, ranked, 2)
		assert.Equal(t, "Strong Match", ranked[0].User.FullName)
		assert.Equal(t, 9, ranked[0].Score)
		assert.Equal(t, []string{"genomics", "proteomics"}, ranked[0].SharedInterests)
		assert.Equal(t, []string{"python"}, ranked[0].SharedSkills)

		assert.Equal(t, "Weak Match", ranked[1].User.FullName)
		assert.Equal(t, 2, ranked[1].Score)
	})

	t.Run("honors the limit", func(t *testing.T) {
		ranked := sochx.RankMatches(me, []*sochx.User{weak, strong}, 1)
		require.Len(t, ranked, 1)
		assert.Equal(t, "Strong Match", ranked[0].User.FullName)
	})

	t.Run("no candidates yields empty slice", func(t *testing.T) {
		ranked := sochx.RankMatches(me, nil, 10)
		assert.Empty(t, ranked)
	})
}
