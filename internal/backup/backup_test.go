// ABOUTME: Tests for store dump and restore, including passphrase sealing.
// ABOUTME: Verifies credential settings never appear in dumps.
package backup

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
	"github.com/blopa/musclog-app-sub000/internal/sqlite"
)

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

func TestDumpExcludesSecretSettings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.SetSetting(ctx, models.SettingOpenAIKey, "sk-secret-123"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := db.SetSetting(ctx, models.SettingGeminiKey, "gm-secret-456"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := db.SetSetting(ctx, models.SettingTheme, "dark"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	doc, err := Dump(ctx, db, "")
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	if bytes.Contains(doc, []byte("sk-secret-123")) || bytes.Contains(doc, []byte("gm-secret-456")) {
		t.Error("Dump must not contain API keys")
	}
	if !bytes.Contains(doc, []byte("dark")) {
		t.Error("Dump should keep non-secret settings")
	}
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	ctx := context.Background()

	exID, err := src.AddExercise(ctx, models.NewExercise("Bench Press", "chest", models.ExerciseCompound))
	if err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	if _, err := src.AddUserMetrics(ctx, &models.UserMetrics{UserID: 1, Weight: 82.5}); err != nil {
		t.Fatalf("AddUserMetrics failed: %v", err)
	}

	doc, err := Dump(ctx, src, "")
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	dst := setupTestDB(t)
	if err := Restore(ctx, dst, doc, ""); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	e, err := dst.GetExerciseByID(ctx, exID)
	if err != nil {
		t.Fatalf("GetExerciseByID failed: %v", err)
	}
	if e == nil || e.Name != "Bench Press" {
		t.Errorf("Exercise missing after restore: %+v", e)
	}
	metrics, err := dst.ListUserMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("ListUserMetrics failed: %v", err)
	}
	if len(metrics) != 1 || metrics[0].Weight != 82.5 {
		t.Errorf("Metrics missing after restore: %+v", metrics)
	}
}

func TestDumpRestoreWithPassphrase(t *testing.T) {
	src := setupTestDB(t)
	ctx := context.Background()

	if _, err := src.AddExercise(ctx, models.NewExercise("Squat", "legs", models.ExerciseCompound)); err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}

	doc, err := Dump(ctx, src, "hunter2")
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if bytes.Contains(doc, []byte("Squat")) {
		t.Error("Sealed dump must not contain plaintext")
	}

	dst := setupTestDB(t)
	if err := Restore(ctx, dst, doc, "wrong"); err == nil {
		t.Fatal("Expected error with wrong passphrase")
	} else if !errors.Is(err, crypto.ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt, got %v", err)
	}

	if err := Restore(ctx, dst, doc, "hunter2"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	list, err := dst.ListExercises(ctx)
	if err != nil {
		t.Fatalf("ListExercises failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Squat" {
		t.Errorf("Exercise missing after sealed restore: %+v", list)
	}
}
