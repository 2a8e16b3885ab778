// ABOUTME: Semantic version comparison used to gate idempotent migrations.
// ABOUTME: Versions are MAJOR.MINOR.PATCH; missing parts compare as zero.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CompareVersions returns -1, 0, or 1 comparing a against b as dotted
// numeric versions. Non-numeric parts compare as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < 3; i++ {
		av, bv := versionPart(as, i), versionPart(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(parts[i]))
	return n
}

// RunMigration applies fn only when the stored version is below appVersion,
// then stamps appVersion. Safe to call on every startup: a store already at
// or past appVersion is a no-op.
func RunMigration(ctx context.Context, repo Repository, appVersion string, fn func(ctx context.Context) error) error {
	current, err := repo.GetLatestVersion(ctx)
	if err != nil {
		return fmt.Errorf("read stored version: %w", err)
	}
	if current != "" && CompareVersions(current, appVersion) >= 0 {
		return nil
	}

	if fn != nil {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("migration to %s: %w", appVersion, err)
		}
	}

	if _, err := repo.AddVersion(ctx, appVersion); err != nil {
		return fmt.Errorf("stamp version %s: %w", appVersion, err)
	}
	return nil
}
