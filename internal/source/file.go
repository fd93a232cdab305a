package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/kcal-trends/internal/model"
)

// File reads an exported log file. The format is a YAML (or JSON) list of
// entries, or a mapping of user id to such a list.
type File struct {
	Path string
	// Location reads zone-less timestamps. Nil means UTC.
	Location *time.Location
}

func (f *File) Name() string {
	return "file"
}

type fileLog struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	ConsumedAt any    `yaml:"consumed_at"`
	Calories   any    `yaml:"calories"`
	Protein    any    `yaml:"protein_g"`
	Carbs      any    `yaml:"carbs_g"`
	Fat        any    `yaml:"fat_g"`
}

func (f *File) FetchLogs(ctx context.Context, userID string) ([]model.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Path) == "" {
		return nil, fmt.Errorf("export file is not configured")
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse export file: %w", err)
	}
	if len(doc.Content) == 0 {
		return []model.LogEntry{}, nil
	}

	var raw []fileLog
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode export entries: %w", err)
		}
	case yaml.MappingNode:
		byUser := map[string][]fileLog{}
		if err := root.Decode(&byUser); err != nil {
			return nil, fmt.Errorf("decode export users: %w", err)
		}
		raw = byUser[userID]
	default:
		return nil, fmt.Errorf("export file must hold a list of entries or a map of users")
	}

	items := make([]model.LogEntry, 0, len(raw))
	for _, l := range raw {
		t, ok := fileTimestamp(l.ConsumedAt, f.Location)
		if !ok {
			continue
		}
		items = append(items, model.LogEntry{
			ID:         l.ID,
			Name:       l.Name,
			ConsumedAt: t,
			Calories:   l.Calories,
			Protein:    l.Protein,
			Carbs:      l.Carbs,
			Fat:        l.Fat,
		})
	}
	return items, nil
}

// Timestamps arrive as strings from yaml.v3 when the target is any; a
// time.Time is accepted too for callers decoding typed documents.
func fileTimestamp(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseTimestamp(x, loc)
	default:
		return time.Time{}, false
	}
}
