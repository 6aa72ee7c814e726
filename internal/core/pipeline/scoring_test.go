package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seoauditor/internal/core/audit"
)

func TestComputeScoresNoIssues(t *testing.T) {
	scores := ComputeScores(nil)
	assert.Equal(t, audit.Scores{Meta: 100, Content: 100, Performance: 100, Technical: 100, Overall: 100}, scores)
}

func TestComputeScoresSingleMissingH1(t *testing.T) {
	scores := ComputeScores([]audit.Issue{{Type: audit.IssueMissingH1}})
	assert.Equal(t, 80, scores.Content)
	assert.Equal(t, 100, scores.Meta)
	assert.Equal(t, 95, scores.Overall)
}

func TestComputeScoresClampsAtZero(t *testing.T) {
	var issues []audit.Issue
	for i := 0; i < 10; i++ {
		issues = append(issues, audit.Issue{Type: audit.IssueMissingH1})
	}
	scores := ComputeScores(issues)
	assert.Equal(t, 0, scores.Content)
	assert.Equal(t, 75, scores.Overall)
}

func TestComputeScoresPenaltyTable(t *testing.T) {
	scores := ComputeScores([]audit.Issue{
		{Type: audit.IssueMissingMetaDescription}, // meta -25
		{Type: audit.IssueDuplicateTitles},        // meta -15
		{Type: audit.IssueThinContent},            // content -15
		{Type: audit.IssueMissingAltTags},         // performance -10
		{Type: audit.IssueNoSchema},               // technical -10
		{Type: audit.IssueOrphanPage},             // technical -10
	})
	assert.Equal(t, 60, scores.Meta)
	assert.Equal(t, 85, scores.Content)
	assert.Equal(t, 90, scores.Performance)
	assert.Equal(t, 80, scores.Technical)
	assert.Equal(t, 79, scores.Overall) // round(315/4)
}

func TestComputeScoresIgnoresUnknownTypes(t *testing.T) {
	scores := ComputeScores([]audit.Issue{{Type: "something_new"}})
	assert.Equal(t, 100, scores.Overall)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Missing Meta Description", displayTitle(audit.IssueMissingMetaDescription))
	assert.Equal(t, "Orphan Page", displayTitle(audit.IssueOrphanPage))
}
