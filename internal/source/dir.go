package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// PlanExtensions are the file types accepted as plans.
var PlanExtensions = []string{".txt", ".md", ".plan", ".pdf"}

func isPlanFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range PlanExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListPlans returns the plan files in dir, sorted by name.
func ListPlans(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && isPlanFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// FindLatestPlan returns the most recently modified plan in dir.
func FindLatestPlan(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !isPlanFile(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		// Берем самый свежий файл
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено планов", dir)
	}
	return latestFile, nil
}
