package quality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// coverageWarningThreshold is the fraction of untested tasks in an epic
// past which a coverage warning is raised (spec.md §4.6: ">50% tasks
// lacking tests").
const coverageWarningThreshold = 0.5

// AnalyzeCoverage aggregates tasks and tests by epic after a successful
// initialization session and stores the result on Project.Metadata
// (spec.md §4.6).
func (p *Pipeline) AnalyzeCoverage(ctx context.Context, projectID string) error {
	epics, err := p.store.ListEpics(ctx, projectID)
	if err != nil {
		return fmt.Errorf("listing epics: %w", err)
	}

	analysis := models.CoverageAnalysis{
		PerEpic: make([]models.CoverageBreakdown, 0, len(epics)),
	}

	for _, epic := range epics {
		tasks, err := p.store.ListTasksByEpic(ctx, epic.ID)
		if err != nil {
			return fmt.Errorf("listing tasks for epic %s: %w", epic.ID, err)
		}

		breakdown := models.CoverageBreakdown{EpicID: epic.ID, EpicName: epic.Name, TotalTasks: len(tasks)}
		for _, task := range tasks {
			tests, err := p.store.ListTestsByTask(ctx, task.ID)
			if err != nil {
				return fmt.Errorf("listing tests for task %s: %w", task.ID, err)
			}
			if len(tests) > 0 {
				breakdown.TasksWithTests++
			}
		}
		if breakdown.TotalTasks > 0 {
			breakdown.CoveragePercent = 100 * float64(breakdown.TasksWithTests) / float64(breakdown.TotalTasks)
			if float64(breakdown.TotalTasks-breakdown.TasksWithTests)/float64(breakdown.TotalTasks) > coverageWarningThreshold {
				breakdown.Warning = fmt.Sprintf("over half of %q's tasks have no tests", epic.Name)
				analysis.Warnings = append(analysis.Warnings, breakdown.Warning)
			}
		}

		analysis.TotalTasks += breakdown.TotalTasks
		analysis.TasksWithTests += breakdown.TasksWithTests
		analysis.PerEpic = append(analysis.PerEpic, breakdown)
	}

	if analysis.TotalTasks > 0 {
		analysis.CoveragePercent = 100 * float64(analysis.TasksWithTests) / float64(analysis.TotalTasks)
	}

	blob, err := toMetadataPatch(analysis)
	if err != nil {
		return err
	}
	return p.store.UpdateProjectMetadata(ctx, projectID, blob)
}

func toMetadataPatch(analysis models.CoverageAnalysis) (map[string]interface{}, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshaling coverage analysis: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("round-tripping coverage analysis: %w", err)
	}
	return map[string]interface{}{"coverage_analysis": raw}, nil
}
