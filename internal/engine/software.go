package engine

import (
	"fmt"
	"strings"

	"assetscan-backend/internal/storage"
)

// UnauthorizedSoftware compares the distinct uppercased software names in
// the license inventory against the allow-list and returns every license
// row whose name is not authorized. An empty result means the inventory is
// compliant; no "compliant" finding is emitted.
func UnauthorizedSoftware(licenses []storage.SoftwareLicense, allowList []string) []Finding {
	authorized := make(map[string]struct{}, len(allowList))
	for _, name := range allowList {
		authorized[strings.ToUpper(strings.TrimSpace(name))] = struct{}{}
	}

	findings := []Finding{}
	for _, l := range licenses {
		name := strings.ToUpper(strings.TrimSpace(l.SoftwareName))
		if _, ok := authorized[name]; ok {
			continue
		}
		f := Finding{
			Category:  CategoryCompliance,
			LicenseID: l.ID,
			Name:      l.SoftwareName,
		}
		if l.AssetID != nil {
			f.AssetID = *l.AssetID
			f.Message = fmt.Sprintf("UNAUTHORIZED: Software '%s' found on asset %d", l.SoftwareName, *l.AssetID)
		} else {
			f.Message = fmt.Sprintf("UNAUTHORIZED: Software '%s' recorded with no linked asset", l.SoftwareName)
		}
		findings = append(findings, f)
	}
	return findings
}
