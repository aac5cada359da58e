package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/iw/internal/fs"
)

const configFilePerms = 0o644

// SetKey sets key to value in the JSONC config file at path and writes it
// back atomically. Comments and formatting of the rest of the file are kept.
// A missing file is created.
func SetKey(fsys fs.FS, path, key string, value any) error {
	data, err := fsys.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = []byte("{}\n")
	} else if err != nil {
		return fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	doc, err := hujson.Parse(data)
	if err != nil {
		return fmt.Errorf("%w %s: invalid JSONC: %w", ErrConfigInvalid, path, err)
	}

	patch, err := json.Marshal([]map[string]any{{
		"op":    "add",
		"path":  "/" + key,
		"value": value,
	}})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	err = doc.Patch(patch)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	doc.Format()

	err = fsys.WriteFileAtomic(path, doc.Pack(), configFilePerms)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SaveLastQueue records name as the last loaded queue in the project config.
func SaveLastQueue(fsys fs.FS, cfg Config, name string) error {
	return SetKey(fsys, cfg.ProjectConfigPath(), "last_queue", name)
}
