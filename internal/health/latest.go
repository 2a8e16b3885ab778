// ABOUTME: Per-field latest-value aggregation over body metrics history.
// ABOUTME: Each field resolves independently to its most recent non-empty reading.
package health

import "github.com/blopa/musclog-app-sub000/internal/models"

// LatestMetrics folds a newest-first metrics history into the latest known
// value of each field. A reading that omits a field leaves older values of
// that field in play, so the result can mix rows. LatestID is the highest
// row id that contributed any field, and Date is that row's date. Returns
// nil when no field was ever recorded.
func LatestMetrics(userID int64, metrics []*models.UserMetrics) *models.LatestUserMetrics {
	latest := &models.LatestUserMetrics{UserID: userID}
	found := false

	for _, m := range metrics {
		contributed := false
		if latest.Weight == 0 && m.Weight != 0 {
			latest.Weight = m.Weight
			contributed = true
		}
		if latest.Height == 0 && m.Height != 0 {
			latest.Height = m.Height
			contributed = true
		}
		if latest.FatPercentage == 0 && m.FatPercentage != 0 {
			latest.FatPercentage = m.FatPercentage
			contributed = true
		}
		if latest.EatingPhase == "" && m.EatingPhase != "" {
			latest.EatingPhase = m.EatingPhase
			contributed = true
		}
		if contributed {
			found = true
			if m.ID > latest.LatestID {
				latest.LatestID = m.ID
				latest.Date = m.Date
			}
		}
		if latest.Weight != 0 && latest.Height != 0 && latest.FatPercentage != 0 && latest.EatingPhase != "" {
			break
		}
	}

	if !found {
		return nil
	}
	return latest
}
