// ABOUTME: MCP resource implementations for the musclog data layer.
// ABOUTME: Provides musclog://summary, musclog://today, and musclog://workouts resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// musclog://summary - Latest metrics plus recent workout events
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "musclog://summary",
		Name:        "Training Summary",
		Description: "Latest body metrics plus recent workout events",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// musclog://today - Metrics and nutrition logged today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "musclog://today",
		Name:        "Today's Log",
		Description: "Body metrics and nutrition logged today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// musclog://workouts - Workout templates with their slots
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "musclog://workouts",
		Name:        "Workout Templates",
		Description: "All workout templates with exercises and planned sets",
		MIMEType:    "application/json",
	}, s.handleWorkoutsResource)
}

// Resource handlers

func resourceJSON(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.GetAllLatestMetricsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metrics: %w", err)
	}

	events, err := s.repo.ListRecentWorkoutEvents(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return resourceJSON("musclog://summary", map[string]any{
		"generated_at":  time.Now().Format(time.RFC3339),
		"latest":        latest,
		"recent_events": events,
	})
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	metrics, err := s.repo.ListUserMetricsBetween(ctx, user.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	nutrition, err := s.repo.ListUserNutritionBetween(ctx, user.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition: %w", err)
	}
	events, err := s.repo.ListWorkoutEventsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var calories, protein, carbs, fat float64
	for _, n := range nutrition {
		calories += n.Calories
		protein += n.Protein
		carbs += n.Carbs
		fat += n.Fat
	}

	return resourceJSON("musclog://today", map[string]any{
		"date":      dayStart.Format("2006-01-02"),
		"metrics":   metrics,
		"nutrition": nutrition,
		"events":    events,
		"totals": map[string]float64{
			"calories": calories,
			"protein":  protein,
			"carbs":    carbs,
			"fat":      fat,
		},
	})
}

func (s *Server) handleWorkoutsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.repo.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	out := make([]map[string]any, 0, len(workouts))
	for _, w := range workouts {
		slots, err := s.repo.GetExercisesWithSetsFromWorkout(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workout %d: %w", w.ID, err)
		}
		out = append(out, map[string]any{
			"workout": w,
			"slots":   slots,
		})
	}

	return resourceJSON("musclog://workouts", out)
}
