// Package fixer asks the completion model for optimized SEO content per page
// and guarantees one usable fix per page no matter what the model does.
package fixer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/logger"
	"seoauditor/internal/platform/llm"
	"seoauditor/internal/retry"
	"seoauditor/prompts"
)

const maxCompletionTokens = 4096

type Service struct {
	log       *logger.Logger
	completer llm.Completer // nil means fallback-only operation
	policy    retry.Policy
}

func New(completer llm.Completer) *Service {
	return &Service{
		log:       logger.New("Fixer"),
		completer: completer,
		// Initial attempt plus two retries. Rate-limit errors back off
		// exponentially from 2s, everything else waits a flat 2s.
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Backoff:     retry.Flat,
			BackoffFor: func(err error) retry.BackoffFunc {
				if llm.IsRateLimited(err) {
					return retry.Exponential
				}
				return retry.Flat
			},
		},
	}
}

// GenerateFixes produces exactly one fix per page, in page order. Pages are
// processed sequentially to bound load on the model. A page whose completion
// fails or comes back unusable gets deterministic fallback fields instead.
func (s *Service) GenerateFixes(ctx context.Context, pages []audit.Page, issues []audit.Issue) []audit.Fix {
	fixes := make([]audit.Fix, 0, len(pages))
	for _, page := range pages {
		fixes = append(fixes, s.fixPage(ctx, page, issuesForPage(issues, page.URL)))
	}
	return fixes
}

func (s *Service) fixPage(ctx context.Context, page audit.Page, pageIssues []audit.Issue) audit.Fix {
	if s.completer == nil {
		return fallbackFix(page)
	}

	prompt := prompts.FixPrompt(page, pageIssues)

	var raw string
	err := s.policy.Do(ctx, func() error {
		out, err := s.completer.Complete(ctx, prompt, llm.CompleteOptions{
			MaxTokens: maxCompletionTokens,
			ForceJSON: true,
		})
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		s.log.LogWarnf("completion failed for %s, using fallback: %v", page.URL, err)
		return fallbackFix(page)
	}

	return mergeFix(page, raw)
}

// completionFields mirrors the JSON contract in the fix prompt.
type completionFields struct {
	OptimizedTitle           string `json:"optimized_title"`
	OptimizedMetaDescription string `json:"optimized_meta_description"`
	ImprovedH1               string `json:"improved_h1"`
	JSONLDSchema             string `json:"json_ld_schema"`
	SuggestedInternalLinking string `json:"suggested_internal_linking"`
}

// mergeFix decodes the model output and fills every absent, empty, or
// wrong-typed field from the deterministic fallback, so each field is
// defaulted independently and a partially useful response still yields a
// complete fix.
func mergeFix(page audit.Page, raw string) audit.Fix {
	fb := fallbackFix(page)

	var fields completionFields
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &fields); err != nil {
		// A type error on one field leaves the others populated. Anything
		// else means the payload is not usable JSON at all.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return fb
		}
	}

	fix := audit.Fix{PageURL: page.URL}
	fix.OptimizedTitle = pick(fields.OptimizedTitle, fb.OptimizedTitle)
	fix.OptimizedMetaDescription = pick(fields.OptimizedMetaDescription, fb.OptimizedMetaDescription)
	fix.ImprovedH1 = pick(fields.ImprovedH1, fb.ImprovedH1)
	fix.JSONLDSchema = pick(fields.JSONLDSchema, fb.JSONLDSchema)
	fix.SuggestedInternalLinking = pick(fields.SuggestedInternalLinking, fb.SuggestedInternalLinking)
	return fix
}

func pick(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func issuesForPage(issues []audit.Issue, pageURL string) []audit.Issue {
	var scoped []audit.Issue
	for _, issue := range issues {
		if issue.PageURL == pageURL || issue.PageURL == "" {
			scoped = append(scoped, issue)
		}
	}
	return scoped
}
