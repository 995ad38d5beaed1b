package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// prefsFile is the on-disk key the filter criteria persist under, the
// console's stand-in for the browser's local storage.
const prefsFile = "dashboard_filters.json"

// DefaultPrefsPath places the criteria file under the user config dir.
func DefaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return prefsFile
	}
	return filepath.Join(dir, "freight-app", prefsFile)
}

// LoadCriteria restores the last-used filter criteria from path. Missing or
// corrupt data is silently ignored and the defaults apply.
func LoadCriteria(path string) Criteria {
	c := DefaultCriteria()
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var saved Criteria
	if err := json.Unmarshal(data, &saved); err != nil {
		return c
	}
	if saved.Status != "" {
		c.Status = saved.Status
	}
	c.Search = saved.Search
	if saved.QuickRange != "" {
		c.QuickRange = saved.QuickRange
	}
	c.ETAFrom = saved.ETAFrom
	c.ETATo = saved.ETATo
	return c
}

// SaveCriteria persists the criteria to path, creating the directory when
// needed.
func SaveCriteria(path string, c Criteria) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
