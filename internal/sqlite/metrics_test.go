// ABOUTME: Tests for encrypted metrics, nutrition, and measurements storage.
// ABOUTME: Covers dataId upserts, per-field latest, and ciphertext self-healing.
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

func TestUserMetricsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.AddUserMetrics(ctx, &models.UserMetrics{
		UserID: 1, Weight: 82.5, Height: 180, FatPercentage: 15,
		EatingPhase: models.EatingCutting,
	})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}

	got, err := db.GetUserMetricsByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserMetricsByID failed: %v", err)
	}
	if got.Weight != 82.5 || got.Height != 180 || got.FatPercentage != 15 {
		t.Errorf("Decrypted values wrong: %+v", got)
	}
	if got.EatingPhase != models.EatingCutting {
		t.Errorf("EatingPhase = %s, want cutting", got.EatingPhase)
	}
	if got.DataID == "" {
		t.Error("Expected generated dataId")
	}
	if got.Source != models.SourceUserInput {
		t.Errorf("Source = %s, want user_input default", got.Source)
	}

	// Values are not stored in the clear.
	var stored string
	if err := db.db.QueryRow(`SELECT weight FROM user_metrics WHERE id = ?`, id).Scan(&stored); err != nil {
		t.Fatalf("Raw read failed: %v", err)
	}
	if stored == "82.5" {
		t.Error("Weight stored as plaintext")
	}
}

func TestUserMetricsUpsertPreservesCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.AddUserMetrics(ctx, &models.UserMetrics{
		UserID: 1, DataID: "hc-1", Weight: 80,
	})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}
	created, _ := db.GetUserMetricsByID(ctx, first)

	second, err := db.AddUserMetrics(ctx, &models.UserMetrics{
		UserID: 1, DataID: "hc-1", Weight: 81,
	})
	if err != nil {
		t.Fatalf("AddUserMetrics upsert failed: %v", err)
	}
	if second != first {
		t.Errorf("Upsert created a new row: %d vs %d", second, first)
	}

	got, _ := db.GetUserMetricsByID(ctx, first)
	if got.Weight != 81 {
		t.Errorf("Weight = %f, want 81", got.Weight)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v vs %v", got.CreatedAt, created.CreatedAt)
	}

	list, err := db.ListUserMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("ListUserMetrics failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 row after upsert, got %d", len(list))
	}
}

func TestUpdateUserMetricsMerge(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Weight: 80, Height: 180})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}

	if err := db.UpdateUserMetrics(ctx, &models.UserMetrics{ID: id, Weight: 79}); err != nil {
		t.Fatalf("UpdateUserMetrics failed: %v", err)
	}

	got, _ := db.GetUserMetricsByID(ctx, id)
	if got.Weight != 79 || got.Height != 180 {
		t.Errorf("Merge broke fields: %+v", got)
	}
}

func TestCorruptMetricsRowIsQuarantined(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	good, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Weight: 82})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}
	bad, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Weight: 90})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}

	// Corrupt the second row's ciphertext behind the codec's back.
	if _, err := db.db.Exec(`UPDATE user_metrics SET weight = 'not-ciphertext' WHERE id = ?`, bad); err != nil {
		t.Fatalf("Corrupting row failed: %v", err)
	}

	list, err := db.ListUserMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("ListUserMetrics failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != good {
		t.Errorf("Corrupt row should be omitted, got %+v", list)
	}

	// The corrupt row was physically deleted.
	var count int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM user_metrics WHERE id = ?`, bad).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Error("Corrupt row should be deleted from storage")
	}
}

func TestCorruptMetricsRowByIDReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Weight: 90})
	if err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}
	if _, err := db.db.Exec(`UPDATE user_metrics SET fat_percentage = 'garbage' WHERE id = ?`, id); err != nil {
		t.Fatalf("Corrupting row failed: %v", err)
	}

	got, err := db.GetUserMetricsByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserMetricsByID failed: %v", err)
	}
	if got != nil {
		t.Error("Unreadable row should read as not found")
	}
}

func TestGetAllLatestMetricsForUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	if _, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Date: day(1), Height: 180}); err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}
	if _, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Date: day(2), Weight: 84, FatPercentage: 16}); err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}
	if _, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Date: day(3), Weight: 82.5}); err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}

	latest, err := db.GetAllLatestMetricsForUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetAllLatestMetricsForUser failed: %v", err)
	}
	if latest == nil {
		t.Fatal("Expected non-nil latest")
	}
	if latest.Weight != 82.5 || latest.FatPercentage != 16 || latest.Height != 180 {
		t.Errorf("Per-field latest wrong: %+v", latest)
	}

	// No rows for another user.
	other, err := db.GetAllLatestMetricsForUser(ctx, 2)
	if err != nil {
		t.Fatalf("GetAllLatestMetricsForUser failed: %v", err)
	}
	if other != nil {
		t.Errorf("Expected nil for user without metrics, got %+v", other)
	}
}

func TestListUserMetricsBetween(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	for i := 1; i <= 3; i++ {
		if _, err := db.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Date: day(i), Weight: float64(80 + i)}); err != nil {
			t.Fatalf("AddUserMetrics failed: %v", err)
		}
	}

	got, err := db.ListUserMetricsBetween(ctx, 1, day(1), day(3))
	if err != nil {
		t.Fatalf("ListUserMetricsBetween failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows in [d1, d3), got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("Range listing should be oldest first")
	}
}

func TestUserNutritionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.AddUserNutrition(ctx, &models.UserNutrition{
		UserID: 1, Name: "oatmeal", Calories: 389, Protein: 16.9,
		Carbs: 66.3, Fat: 6.9, Fiber: 10.6, Sodium: 2,
		MealType: "breakfast", GramsPerServing: 100,
	})
	if err != nil {
		t.Fatalf("AddUserNutrition failed: %v", err)
	}

	got, err := db.GetUserNutritionByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserNutritionByID failed: %v", err)
	}
	if got.Name != "oatmeal" || got.Calories != 389 || got.Protein != 16.9 ||
		got.Fiber != 10.6 || got.Sodium != 2 {
		t.Errorf("Decrypted values wrong: %+v", got)
	}
	if got.MealType != "breakfast" || got.GramsPerServing != 100 {
		t.Errorf("Plain fields wrong: %+v", got)
	}

	// The name is not stored in the clear.
	var stored string
	if err := db.db.QueryRow(`SELECT name FROM user_nutrition WHERE id = ?`, id).Scan(&stored); err != nil {
		t.Fatalf("Raw read failed: %v", err)
	}
	if stored == "oatmeal" {
		t.Error("Name stored as plaintext")
	}
}

func TestUserNutritionUpsertByDataID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.AddUserNutrition(ctx, &models.UserNutrition{
		UserID: 1, DataID: "hc-meal-1", Name: "lunch", Calories: 600,
	})
	if err != nil {
		t.Fatalf("AddUserNutrition failed: %v", err)
	}
	second, err := db.AddUserNutrition(ctx, &models.UserNutrition{
		UserID: 1, DataID: "hc-meal-1", Name: "lunch (fixed)", Calories: 650,
	})
	if err != nil {
		t.Fatalf("AddUserNutrition upsert failed: %v", err)
	}
	if second != first {
		t.Errorf("Upsert created a new row: %d vs %d", second, first)
	}

	got, err := db.GetUserNutritionByDataID(ctx, "hc-meal-1")
	if err != nil {
		t.Fatalf("GetUserNutritionByDataID failed: %v", err)
	}
	if got.Name != "lunch (fixed)" || got.Calories != 650 {
		t.Errorf("Upsert did not overwrite values: %+v", got)
	}
}

func TestCorruptNutritionRowIsQuarantined(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	good, err := db.AddUserNutrition(ctx, &models.UserNutrition{UserID: 1, Name: "ok", Calories: 100})
	if err != nil {
		t.Fatalf("AddUserNutrition failed: %v", err)
	}
	bad, err := db.AddUserNutrition(ctx, &models.UserNutrition{UserID: 1, Name: "bad", Calories: 200})
	if err != nil {
		t.Fatalf("AddUserNutrition failed: %v", err)
	}
	if _, err := db.db.Exec(`UPDATE user_nutrition SET calories = 'garbage' WHERE id = ?`, bad); err != nil {
		t.Fatalf("Corrupting row failed: %v", err)
	}

	list, err := db.ListUserNutrition(ctx, 1)
	if err != nil {
		t.Fatalf("ListUserNutrition failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != good {
		t.Errorf("Corrupt row should be omitted, got %+v", list)
	}
}

func TestUserMeasurementsUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.AddUserMeasurements(ctx, &models.UserMeasurements{
		UserID: 1, DataID: "m-1",
		Measurements: map[string]float64{"waist": 84, "neck": 38},
	})
	if err != nil {
		t.Fatalf("AddUserMeasurements failed: %v", err)
	}

	second, err := db.AddUserMeasurements(ctx, &models.UserMeasurements{
		UserID: 1, DataID: "m-1",
		Measurements: map[string]float64{"waist": 83},
	})
	if err != nil {
		t.Fatalf("AddUserMeasurements upsert failed: %v", err)
	}
	if second != first {
		t.Errorf("Upsert created a new row: %d vs %d", second, first)
	}

	got, err := db.GetUserMeasurementsByID(ctx, first)
	if err != nil {
		t.Fatalf("GetUserMeasurementsByID failed: %v", err)
	}
	if got.Measurements["waist"] != 83 {
		t.Errorf("Measurements = %v, want waist 83", got.Measurements)
	}
	if _, ok := got.Measurements["neck"]; ok {
		t.Error("Upsert replaces the measurement map wholesale")
	}

	if err := db.DeleteUserMeasurements(ctx, first); err != nil {
		t.Fatalf("DeleteUserMeasurements failed: %v", err)
	}
	if got, _ := db.GetUserMeasurementsByID(ctx, first); got != nil {
		t.Error("Expected nil after delete")
	}
}
