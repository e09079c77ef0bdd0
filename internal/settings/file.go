package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// FileProvider reads a flat YAML mapping. The file is re-read on every
// Fetch so edits take effect at the next loop boundary.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Fetch(ctx context.Context) (Settings, error) {
	raw, err := p.Raw(ctx)
	if err != nil {
		return Settings{}, err
	}
	return FromMap(raw), nil
}

func (p *FileProvider) Raw(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", p.path, err)
	}

	raw := make(map[string]string, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		raw[k] = cast.ToString(v)
	}
	return raw, nil
}

// Set rewrites the whole file. A missing file is created.
func (p *FileProvider) Set(ctx context.Context, key, value string) error {
	raw, err := p.Raw(ctx)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		raw = make(map[string]string)
	}
	raw[key] = value

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
