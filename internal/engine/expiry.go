package engine

import (
	"fmt"
	"sort"
	"time"

	"assetscan-backend/internal/storage"
)

// ExpiringWarranties returns assets whose warranty ends within the window,
// ascending by warranty end date. Assets without a warranty end date never
// match.
func ExpiringWarranties(now time.Time, assets []storage.Asset, days int) []Finding {
	cutoff := dateOnly(now).AddDate(0, 0, days)
	findings := []Finding{}
	for _, a := range assets {
		if a.WarrantyEndDate == nil {
			continue
		}
		end := dateOnly(*a.WarrantyEndDate)
		if end.After(cutoff) {
			continue
		}
		findings = append(findings, Finding{
			Category: CategoryWarranty,
			AssetID:  a.ID,
			Name:     a.Name,
			Date:     end,
			Message:  fmt.Sprintf("Warranty for asset '%s' expires on %s", a.Name, end.Format("2006-01-02")),
		})
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Date.Before(findings[j].Date)
	})
	return findings
}

// ExpiringLicenses returns licenses expiring within the window, ascending by
// expiry date. The linked asset id is carried when present.
func ExpiringLicenses(now time.Time, licenses []storage.SoftwareLicense, days int) []Finding {
	cutoff := dateOnly(now).AddDate(0, 0, days)
	findings := []Finding{}
	for _, l := range licenses {
		expiry := dateOnly(l.ExpiryDate)
		if expiry.After(cutoff) {
			continue
		}
		f := Finding{
			Category:  CategoryLicense,
			LicenseID: l.ID,
			Name:      l.SoftwareName,
			Date:      expiry,
			Message:   fmt.Sprintf("License '%s' expires on %s", l.SoftwareName, expiry.Format("2006-01-02")),
		}
		if l.AssetID != nil {
			f.AssetID = *l.AssetID
		}
		findings = append(findings, f)
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Date.Before(findings[j].Date)
	})
	return findings
}
