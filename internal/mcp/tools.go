// ABOUTME: MCP tool implementations for the musclog data layer.
// ABOUTME: Exposes logging, listing, and session replay over the Repository.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blopa/musclog-app-sub000/internal/health"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_metrics",
		Description: "Record a body metrics reading (weight, height, body fat, eating phase)",
	}, s.handleLogMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_nutrition",
		Description: "Record a meal or food entry with macros",
	}, s.handleLogNutrition)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_metrics",
		Description: "Get the latest known value of each body metric field",
	}, s.handleLatestMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_nutrition",
		Description: "List recent nutrition entries",
	}, s.handleListNutrition)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List workout templates",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_session",
		Description: "Get a workout's sets in execution order (supersets interleaved)",
	}, s.handleWorkoutSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "save_chat",
		Description: "Append a message to the assistant conversation log",
	}, s.handleSaveChat)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recent_chats",
		Description: "Read the tail of the assistant conversation log",
	}, s.handleRecentChats)
}

// Tool input/output types

type logMetricsInput struct {
	Weight        float64 `json:"weight,omitempty" jsonschema:"Body weight in kg"`
	Height        float64 `json:"height,omitempty" jsonschema:"Height in cm"`
	FatPercentage float64 `json:"fat_percentage,omitempty" jsonschema:"Body fat percentage"`
	EatingPhase   string  `json:"eating_phase,omitempty" jsonschema:"bulking, cutting, or maintenance"`
	Date          string  `json:"date,omitempty" jsonschema:"Entry date (ISO 8601), defaults to now"`
	DataID        string  `json:"data_id,omitempty" jsonschema:"External id for idempotent upserts"`
}

type logNutritionInput struct {
	Name     string  `json:"name" jsonschema:"Food or meal name"`
	Calories float64 `json:"calories,omitempty" jsonschema:"Calories in kcal"`
	Protein  float64 `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Carbs    float64 `json:"carbs,omitempty" jsonschema:"Carbohydrate in grams"`
	Fat      float64 `json:"fat,omitempty" jsonschema:"Fat in grams"`
	MealType string  `json:"meal_type,omitempty" jsonschema:"breakfast, lunch, dinner, or snack"`
	Date     string  `json:"date,omitempty" jsonschema:"Entry date (ISO 8601), defaults to now"`
	DataID   string  `json:"data_id,omitempty" jsonschema:"External id for idempotent upserts"`
}

type idOutput struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type listInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type workoutSessionInput struct {
	WorkoutID int64 `json:"workout_id" jsonschema:"Workout template id"`
}

type saveChatInput struct {
	Message string `json:"message" jsonschema:"Message text"`
	Sender  string `json:"sender" jsonschema:"user or assistant"`
}

// Tool handlers

func (s *Server) handleLogMetrics(ctx context.Context, req *mcp.CallToolRequest, input logMetricsInput) (*mcp.CallToolResult, idOutput, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, idOutput{}, err
	}

	m := &models.UserMetrics{
		UserID:        user.ID,
		DataID:        input.DataID,
		Weight:        input.Weight,
		Height:        input.Height,
		FatPercentage: input.FatPercentage,
		EatingPhase:   models.EatingPhase(input.EatingPhase),
	}
	if input.Date != "" {
		if t, err := time.Parse(time.RFC3339, input.Date); err == nil {
			m.Date = t
		}
	}

	id, err := s.repo.AddUserMetrics(ctx, m)
	if err != nil {
		return nil, idOutput{}, fmt.Errorf("failed to log metrics: %w", err)
	}
	return nil, idOutput{ID: id, Message: fmt.Sprintf("Logged body metrics (ID: %d)", id)}, nil
}

func (s *Server) handleLogNutrition(ctx context.Context, req *mcp.CallToolRequest, input logNutritionInput) (*mcp.CallToolResult, idOutput, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, idOutput{}, err
	}

	n := &models.UserNutrition{
		UserID:   user.ID,
		DataID:   input.DataID,
		Name:     input.Name,
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
		MealType: input.MealType,
	}
	if input.Date != "" {
		if t, err := time.Parse(time.RFC3339, input.Date); err == nil {
			n.Date = t
		}
	}

	id, err := s.repo.AddUserNutrition(ctx, n)
	if err != nil {
		return nil, idOutput{}, fmt.Errorf("failed to log nutrition: %w", err)
	}
	return nil, idOutput{ID: id, Message: fmt.Sprintf("Logged %s (ID: %d)", input.Name, id)}, nil
}

func (s *Server) handleLatestMetrics(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	latest, err := s.repo.GetAllLatestMetricsForUser(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get latest metrics: %w", err)
	}
	if latest == nil {
		return nil, map[string]any{"message": "No metrics logged yet."}, nil
	}
	return nil, latest, nil
}

func (s *Server) handleListNutrition(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.repo.ListUserNutrition(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list nutrition: %w", err)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return nil, map[string]any{"message": "No nutrition logged yet."}, nil
	}
	return nil, entries, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	workouts, err := s.repo.ListWorkouts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts yet."}, nil
	}
	return nil, workouts, nil
}

func (s *Server) handleWorkoutSession(ctx context.Context, req *mcp.CallToolRequest, input workoutSessionInput) (*mcp.CallToolResult, any, error) {
	w, err := s.repo.GetWorkoutByID(ctx, input.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		return nil, nil, fmt.Errorf("workout not found: %d", input.WorkoutID)
	}

	slots, err := s.repo.GetExercisesWithSetsFromWorkout(ctx, input.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	slots, err = health.ApplyReplacements(ctx, s.repo, s.repo, input.WorkoutID, slots)
	if err != nil {
		return nil, nil, err
	}

	return nil, map[string]any{
		"workout": w.Title,
		"steps":   health.BuildSession(slots),
	}, nil
}

func (s *Server) handleSaveChat(ctx context.Context, req *mcp.CallToolRequest, input saveChatInput) (*mcp.CallToolResult, idOutput, error) {
	if input.Sender != string(models.ChatUser) && input.Sender != string(models.ChatAssistant) {
		return nil, idOutput{}, fmt.Errorf("sender must be user or assistant")
	}

	id, err := s.repo.AddChat(ctx, &models.Chat{
		Message: input.Message,
		Sender:  models.ChatSender(input.Sender),
	})
	if err != nil {
		return nil, idOutput{}, fmt.Errorf("failed to save chat: %w", err)
	}
	return nil, idOutput{ID: id, Message: fmt.Sprintf("Saved message (ID: %d)", id)}, nil
}

func (s *Server) handleRecentChats(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	chats, err := s.repo.ListChats(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list chats: %w", err)
	}
	if len(chats) == 0 {
		return nil, map[string]any{"message": "No chat history."}, nil
	}
	return nil, chats, nil
}

// currentUser returns the active profile, creating a default one on first use.
func (s *Server) currentUser(ctx context.Context) (*models.User, error) {
	user, err := s.repo.GetLatestUser(ctx)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	user = &models.User{Name: "default"}
	if _, err := s.repo.AddUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create default user: %w", err)
	}
	return user, nil
}
