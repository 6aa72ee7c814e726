package pipeline

import (
	"math"

	"seoauditor/internal/core/audit"
)

type category int

const (
	categoryMeta category = iota
	categoryContent
	categoryPerformance
	categoryTechnical
)

type penalty struct {
	category category
	points   int
}

// penalties is the fixed per-issue-type deduction table. Issue types not
// listed here cost nothing.
var penalties = map[string]penalty{
	audit.IssueMissingMetaDescription: {categoryMeta, 25},
	audit.IssueDuplicateTitles:        {categoryMeta, 15},
	audit.IssueMissingH1:              {categoryContent, 20},
	audit.IssueMultipleH1:             {categoryContent, 10},
	audit.IssueThinContent:            {categoryContent, 15},
	audit.IssueMissingAltTags:         {categoryPerformance, 10},
	audit.IssueNoSchema:               {categoryTechnical, 10},
	audit.IssueOrphanPage:             {categoryTechnical, 10},
}

// ComputeScores starts every category at 100, subtracts the penalty for each
// issue, clamps at 0, and averages the four categories into the overall.
func ComputeScores(issues []audit.Issue) audit.Scores {
	cats := map[category]int{
		categoryMeta:        100,
		categoryContent:     100,
		categoryPerformance: 100,
		categoryTechnical:   100,
	}
	for _, issue := range issues {
		if p, ok := penalties[issue.Type]; ok {
			cats[p.category] -= p.points
		}
	}
	for cat, score := range cats {
		if score < 0 {
			cats[cat] = 0
		}
	}

	scores := audit.Scores{
		Meta:        cats[categoryMeta],
		Content:     cats[categoryContent],
		Performance: cats[categoryPerformance],
		Technical:   cats[categoryTechnical],
	}
	sum := scores.Meta + scores.Content + scores.Performance + scores.Technical
	scores.Overall = int(math.Round(float64(sum) / 4))
	return scores
}
