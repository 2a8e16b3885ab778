// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers over SQLite.
package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
	"github.com/blopa/musclog-app-sub000/internal/sqlite"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	dir := t.TempDir()
	codec, err := crypto.OpenFieldCodec(dir)
	if err != nil {
		t.Fatalf("Failed to open field codec: %v", err)
	}

	db, err := sqlite.Open(filepath.Join(dir, "musclog.db"), codec)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)

	server, err := NewServer(db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
}

func TestHandleLogMetrics(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		input logMetricsInput
	}{
		{
			name:  "weight only",
			input: logMetricsInput{Weight: 82.5},
		},
		{
			name:  "full reading",
			input: logMetricsInput{Weight: 82.5, Height: 180, FatPercentage: 15, EatingPhase: "cutting"},
		},
		{
			name:  "with RFC3339 date",
			input: logMetricsInput{Weight: 81, Date: "2025-01-31T08:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleLogMetrics(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.ID == 0 {
				t.Error("Expected non-zero ID")
			}
			if output.Message == "" {
				t.Error("Expected non-empty Message")
			}
		})
	}
}

func TestHandleLogMetricsUpsertByDataID(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, first, err := server.handleLogMetrics(ctx, &mcp.CallToolRequest{}, logMetricsInput{
		Weight: 80, DataID: "hc-001",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, second, err := server.handleLogMetrics(ctx, &mcp.CallToolRequest{}, logMetricsInput{
		Weight: 81, DataID: "hc-001",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Same dataId should update in place: got ids %d and %d", first.ID, second.ID)
	}

	m, err := db.GetUserMetricsByDataID(ctx, "hc-001")
	if err != nil {
		t.Fatalf("GetUserMetricsByDataID failed: %v", err)
	}
	if m == nil || m.Weight != 81 {
		t.Errorf("Expected updated weight 81, got %+v", m)
	}
}

func TestHandleLogNutrition(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, output, err := server.handleLogNutrition(ctx, &mcp.CallToolRequest{}, logNutritionInput{
		Name:     "oatmeal",
		Calories: 389,
		Protein:  16.9,
		Carbs:    66.3,
		Fat:      6.9,
		MealType: "breakfast",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.ID == 0 {
		t.Error("Expected non-zero ID")
	}
	if !strings.Contains(output.Message, "oatmeal") {
		t.Errorf("Message %q should mention the food", output.Message)
	}
}

func TestHandleLatestMetrics(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	// Empty store returns a message, not an error
	_, output, err := server.handleLatestMetrics(ctx, &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output == nil {
		t.Error("Expected non-nil output")
	}

	if _, _, err := server.handleLogMetrics(ctx, &mcp.CallToolRequest{}, logMetricsInput{Weight: 82.5}); err != nil {
		t.Fatalf("Failed to log metrics: %v", err)
	}

	_, output, err = server.handleLatestMetrics(ctx, &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	latest, ok := output.(*models.LatestUserMetrics)
	if !ok {
		t.Fatalf("Expected *models.LatestUserMetrics, got %T", output)
	}
	if latest.Weight != 82.5 {
		t.Errorf("Weight = %f, want 82.5", latest.Weight)
	}
}

func TestHandleListNutrition(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := server.handleLogNutrition(ctx, &mcp.CallToolRequest{}, logNutritionInput{
			Name: "snack", Calories: 100,
		})
		if err != nil {
			t.Fatalf("Failed to log nutrition: %v", err)
		}
	}

	_, output, err := server.handleListNutrition(ctx, &mcp.CallToolRequest{}, listInput{Limit: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	entries, ok := output.([]*models.UserNutrition)
	if !ok {
		t.Fatalf("Expected nutrition slice, got %T", output)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries with limit, got %d", len(entries))
	}
}

func TestHandleListNutritionEmpty(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, output, err := server.handleListNutrition(ctx, &mcp.CallToolRequest{}, listInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output == nil {
		t.Error("Expected non-nil output for empty store")
	}
}

func TestHandleListWorkouts(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	if _, err := db.AddWorkout(ctx, models.NewWorkout("Push Day")); err != nil {
		t.Fatalf("Failed to add workout: %v", err)
	}

	_, output, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	workouts, ok := output.([]*models.Workout)
	if !ok {
		t.Fatalf("Expected workout slice, got %T", output)
	}
	if len(workouts) != 1 || workouts[0].Title != "Push Day" {
		t.Errorf("Unexpected workouts: %+v", workouts)
	}
}

func TestHandleWorkoutSession(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	exID, err := db.AddExercise(ctx, models.NewExercise("Bench Press", "chest", models.ExerciseCompound))
	if err != nil {
		t.Fatalf("Failed to add exercise: %v", err)
	}
	setID, err := db.AddSet(ctx, models.NewSet(exID, 10, 60))
	if err != nil {
		t.Fatalf("Failed to add set: %v", err)
	}

	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Push Day"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{setID}},
	}, 0)
	if err != nil {
		t.Fatalf("Failed to add workout: %v", err)
	}

	_, output, err := server.handleWorkoutSession(ctx, &mcp.CallToolRequest{}, workoutSessionInput{WorkoutID: wID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("Expected map output, got %T", output)
	}
	if result["workout"] != "Push Day" {
		t.Errorf("workout = %v, want Push Day", result["workout"])
	}
}

func TestHandleWorkoutSessionNotFound(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, _, err := server.handleWorkoutSession(ctx, &mcp.CallToolRequest{}, workoutSessionInput{WorkoutID: 999})
	if err == nil {
		t.Error("Expected error for nonexistent workout")
	}
}

func TestHandleSaveChat(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, output, err := server.handleSaveChat(ctx, &mcp.CallToolRequest{}, saveChatInput{
		Message: "How much protein today?",
		Sender:  "user",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.ID == 0 {
		t.Error("Expected non-zero ID")
	}
}

func TestHandleSaveChatInvalidSender(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, _, err := server.handleSaveChat(ctx, &mcp.CallToolRequest{}, saveChatInput{
		Message: "hi",
		Sender:  "robot",
	})
	if err == nil {
		t.Error("Expected error for invalid sender")
	}
}

func TestHandleRecentChats(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, _, err := server.handleSaveChat(ctx, &mcp.CallToolRequest{}, saveChatInput{Message: msg, Sender: "user"})
		if err != nil {
			t.Fatalf("Failed to save chat: %v", err)
		}
	}

	_, output, err := server.handleRecentChats(ctx, &mcp.CallToolRequest{}, listInput{Limit: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	chats, ok := output.([]*models.Chat)
	if !ok {
		t.Fatalf("Expected chat slice, got %T", output)
	}
	if len(chats) != 2 {
		t.Errorf("Expected 2 chats, got %d", len(chats))
	}
	if chats[len(chats)-1].Message != "three" {
		t.Errorf("Expected newest message last, got %q", chats[len(chats)-1].Message)
	}
}

func TestCurrentUserCreatesDefault(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	user, err := server.currentUser(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.Name != "default" {
		t.Errorf("Name = %q, want default", user.Name)
	}

	again, err := server.currentUser(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again.ID != user.ID {
		t.Error("Second call should reuse the same profile")
	}
}

func TestHandleSummaryResource(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, _, err := server.handleLogMetrics(ctx, &mcp.CallToolRequest{}, logMetricsInput{Weight: 82.5})
	if err != nil {
		t.Fatalf("Failed to log metrics: %v", err)
	}

	result, err := server.handleSummaryResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result == nil || len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != "musclog://summary" {
		t.Errorf("URI = %s, want musclog://summary", result.Contents[0].URI)
	}
	if result.Contents[0].MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", result.Contents[0].MIMEType)
	}
	if !strings.Contains(result.Contents[0].Text, "82.5") {
		t.Error("Expected latest weight in summary")
	}
}

func TestHandleTodayResource(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, _, err := server.handleLogNutrition(ctx, &mcp.CallToolRequest{}, logNutritionInput{
		Name: "lunch", Calories: 650, Protein: 40,
	})
	if err != nil {
		t.Fatalf("Failed to log nutrition: %v", err)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result == nil || len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != "musclog://today" {
		t.Errorf("URI = %s, want musclog://today", result.Contents[0].URI)
	}
	if !strings.Contains(result.Contents[0].Text, "650") {
		t.Error("Expected today's calories in result")
	}
}

func TestHandleTodayResourceEmpty(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected non-nil result")
	}
}

func TestHandleWorkoutsResource(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	exID, err := db.AddExercise(ctx, models.NewExercise("Squat", "legs", models.ExerciseCompound))
	if err != nil {
		t.Fatalf("Failed to add exercise: %v", err)
	}
	setID, err := db.AddSet(ctx, models.NewSet(exID, 5, 100))
	if err != nil {
		t.Fatalf("Failed to add set: %v", err)
	}
	_, err = db.AddWorkoutWithExercises(ctx, models.NewWorkout("Leg Day"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{setID}},
	}, 0)
	if err != nil {
		t.Fatalf("Failed to add workout: %v", err)
	}

	result, err := server.handleWorkoutsResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result == nil || len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != "musclog://workouts" {
		t.Errorf("URI = %s, want musclog://workouts", result.Contents[0].URI)
	}
	if !strings.Contains(result.Contents[0].Text, "Leg Day") {
		t.Error("Expected workout title in result")
	}
	if !strings.Contains(result.Contents[0].Text, "Squat") {
		t.Error("Expected exercise name in result")
	}
}
