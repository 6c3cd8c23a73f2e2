package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Storage struct {
	baseDir string
}

const dailyStatsDir = "daily"

func NewStorage(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %v", err)
	}

	dailyDir := filepath.Join(baseDir, dailyStatsDir)
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create daily stats directory: %v", err)
	}

	return &Storage{
		baseDir: baseDir,
	}, nil
}

func (s *Storage) GetDailyStats(date string) (*DailyStats, error) {
	filePath := filepath.Join(s.baseDir, dailyStatsDir, fmt.Sprintf("%s.json", date))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return newDailyStats(date), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var dailyStats DailyStats
	if err := json.Unmarshal(data, &dailyStats); err != nil {
		return nil, err
	}
	if dailyStats.Fires == nil {
		dailyStats.Fires = make(map[string]int)
	}
	if dailyStats.Drops == nil {
		dailyStats.Drops = make(map[string]int)
	}
	if dailyStats.Actions == nil {
		dailyStats.Actions = make(map[string]int)
	}

	return &dailyStats, nil
}

func (s *Storage) saveDailyStats(stats *DailyStats) error {
	filePath := filepath.Join(s.baseDir, dailyStatsDir, fmt.Sprintf("%s.json", stats.Date))

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}

func (s *Storage) GetTotalStats() (*TotalStats, error) {
	dailyDir := filepath.Join(s.baseDir, dailyStatsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return emptyTotalStats(), nil // Return empty stats if directory doesn't exist
	}

	totalStats := emptyTotalStats()

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			filePath := filepath.Join(dailyDir, file.Name())

			data, err := os.ReadFile(filePath)
			if err != nil {
				continue // Skip problematic files
			}

			var dailyStats DailyStats
			if err := json.Unmarshal(data, &dailyStats); err != nil {
				continue // Skip problematic files
			}

			totalStats.TotalFires += dailyStats.TotalFires
			totalStats.TotalDrops += dailyStats.TotalDrops
			for key, n := range dailyStats.Fires {
				totalStats.PerKey[key] += n
			}
			for kind, n := range dailyStats.Actions {
				totalStats.PerAction[kind] += n
			}
			totalStats.Days++
		}
	}

	return totalStats, nil
}

func emptyTotalStats() *TotalStats {
	return &TotalStats{
		PerKey:    make(map[string]int),
		PerAction: make(map[string]int),
	}
}

func (s *Storage) GetRecentDays(days int) ([]*DailyStats, error) {
	dailyDir := filepath.Join(s.baseDir, dailyStatsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return []*DailyStats{}, nil
	}

	var fileNames []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			fileNames = append(fileNames, file.Name())
		}
	}

	// Date-named files sort chronologically.
	sort.Strings(fileNames)
	if len(fileNames) > days {
		fileNames = fileNames[len(fileNames)-days:]
	}

	var recentStats []*DailyStats
	for _, fileName := range fileNames {
		filePath := filepath.Join(dailyDir, fileName)

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue // Skip problematic files
		}

		var dailyStats DailyStats
		if err := json.Unmarshal(data, &dailyStats); err != nil {
			continue // Skip problematic files
		}

		recentStats = append(recentStats, &dailyStats)
	}

	return recentStats, nil
}

func (s *Storage) ClearAllStats() error {
	dailyDir := filepath.Join(s.baseDir, dailyStatsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return nil // Directory doesn't exist, nothing to clear
	}

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			filePath := filepath.Join(dailyDir, file.Name())
			if err := os.Remove(filePath); err != nil {
				return fmt.Errorf("failed to remove %s: %v", file.Name(), err)
			}
		}
	}

	return nil
}
