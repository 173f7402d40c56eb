package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CleanPatterns — файлы и директории, которые оставляет движок.
var CleanPatterns = []string{
	"elph_dir", "_ph0",
	"*.dos*", "*.in", "*.json", "*.fc", "*.freq*", "*.save", "*.out",
	"*.dyn*", "*wfc*", "*.xml", "*save", "lambda", "*.modes", "dyn*",
}

// CleanWorkDir удаляет из dir все артефакты движка.
// Возвращает удалённые пути (отсортированные). Директория dir остаётся.
//
// Workflow никогда не вызывает очистку сам.
func CleanWorkDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat work dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	seen := make(map[string]struct{})
	for _, pattern := range CleanPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var errs []error
	removed := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, p)
	}

	return removed, errors.Join(errs...)
}
