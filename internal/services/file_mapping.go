package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilePaths holds the workbook paths mapped for one transaction folder.
// Only Summary is mandatory; every other source is optional.
type FilePaths struct {
	Summary       string `json:"summary,omitempty"`
	Invoice       string `json:"invoice,omitempty"`
	Card          string `json:"card,omitempty"`
	International string `json:"international,omitempty"`
	Domestic      string `json:"domestic,omitempty"`
	Dispute       string `json:"dispute,omitempty"`
}

// TransactionFolder is one discovered transaction directory.
type TransactionFolder struct {
	Name string
	Path string
}

// ScanTransactionFolders lists the immediate subdirectories of basePath,
// sorted by name for deterministic batch order.
func ScanTransactionFolders(basePath string) ([]TransactionFolder, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions folder %s: %w", basePath, err)
	}

	var folders []TransactionFolder
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, TransactionFolder{
				Name: entry.Name(),
				Path: filepath.Join(basePath, entry.Name()),
			})
		}
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// MapFilesInFolder assigns the spreadsheet files of one transaction folder
// to their roles by filename pattern.
func MapFilesInFolder(folderPath string) FilePaths {
	var paths FilePaths

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return paths
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
			continue
		}
		full := filepath.Join(folderPath, entry.Name())

		switch {
		case strings.Contains(name, "summary"):
			paths.Summary = full
		case strings.Contains(name, "invoice"):
			paths.Invoice = full
		case strings.Contains(name, "card") && strings.Contains(name, "issuance"):
			paths.Card = full
		case strings.Contains(name, "international"):
			paths.International = full
		case strings.Contains(name, "domestic"):
			paths.Domestic = full
		case strings.Contains(name, "vrol") || strings.Contains(name, "dispute"):
			paths.Dispute = full
		}
	}

	return paths
}
