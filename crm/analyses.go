// ABOUTME: Saved AI analyses of uploaded files
// ABOUTME: Runs an analyzer, stores the result and supports deletion
package crm

import (
	"context"
	"fmt"

	"github.com/sustentalski/salescrm/models"
)

// Analyzer turns file content into free-text analysis.
type Analyzer interface {
	Analyze(ctx context.Context, fileName, content string) (string, error)
}

func analysisID(a models.Analysis) string { return a.ID }

// Analyze runs a over the file and saves the result first in the list.
func (s *State) Analyze(ctx context.Context, a Analyzer, fileName, content string) (models.Analysis, error) {
	text, err := a.Analyze(ctx, fileName, content)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("failed to analyze %s: %w", fileName, err)
	}
	return s.AddAnalysis(fileName, text), nil
}

// AddAnalysis stores an analysis result.
func (s *State) AddAnalysis(fileName, content string) models.Analysis {
	created := models.NewAnalysis(fileName, content, s.stamp())
	s.analyses.Update(func(list []models.Analysis) []models.Analysis {
		return prepend(list, created)
	})
	return created
}

// Analyses returns saved analyses, newest first.
func (s *State) Analyses() []models.Analysis {
	return s.analyses.Get()
}

// GetAnalysis looks up an analysis by id.
func (s *State) GetAnalysis(id string) (models.Analysis, error) {
	a, ok := find(s.analyses.Get(), id, analysisID)
	if !ok {
		return models.Analysis{}, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return a, nil
}

// DeleteAnalysis removes a saved analysis.
func (s *State) DeleteAnalysis(id string) error {
	var found bool
	s.analyses.Update(func(list []models.Analysis) []models.Analysis {
		out, ok := without(list, id, analysisID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return nil
}
