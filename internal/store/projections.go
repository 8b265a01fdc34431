package store

import (
	"slices"
	"sort"
	"strings"

	"github.com/lockiemedia/lockie/internal/api"
)

// UniqueLabels returns the distinct task labels, trimmed, lower-cased and sorted.
func (s *Store) UniqueLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.uniqueLabels...)
}

// UniqueProjects returns the id/name pairs of every real project, i.e.
// without the "No Project" sentinel.
func (s *Store) UniqueProjects() []api.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return api.CloneProjects(s.uniqueProjects)
}

func computeUniqueLabels(tasks []api.Task) []string {
	seen := make(map[string]bool)
	labels := make([]string, 0)

	for _, t := range tasks {
		label := strings.ToLower(strings.TrimSpace(t.Label))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	sort.Strings(labels)
	return labels
}

func computeUniqueProjects(projects []api.Project) []api.Project {
	seen := make(map[api.ID]bool)
	out := make([]api.Project, 0, len(projects))

	for _, p := range projects {
		if p.ID == api.NoProjectID || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, api.Project{ID: p.ID, Name: p.Name})
	}

	return out
}

// ensureNoProject returns a copy of projects that starts with the sentinel
// and holds no other record with its id.
func ensureNoProject(projects []api.Project) []api.Project {
	out := make([]api.Project, 0, len(projects)+1)
	out = append(out, api.Project{ID: api.NoProjectID, Name: api.NoProjectName})

	for _, p := range projects {
		if p.ID == api.NoProjectID {
			continue
		}
		out = append(out, p)
	}

	return out
}

func equalLabels(a, b []string) bool {
	return slices.Equal(a, b)
}

func equalProjects(a, b []api.Project) bool {
	return slices.Equal(a, b)
}
