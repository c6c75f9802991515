package project

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const ManifestFileName = "package.json"

type manifest struct {
	Name            string      `json:"name"`
	Keywords        []string    `json:"keywords"`
	EmberAddon      emberAddon  `json:"ember-addon"`
	Dependencies    orderedKeys `json:"dependencies"`
	DevDependencies orderedKeys `json:"devDependencies"`
}

type emberAddon struct {
	Paths []string `json:"paths"`
}

func (m *manifest) isAddon() bool {
	return slices.Contains(m.Keywords, "ember-addon")
}

// orderedKeys keeps the keys of a JSON object in document order.
type orderedKeys []string

func (k *orderedKeys) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("expected an object, found %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("expected a key, found %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}

	*k = keys
	return nil
}

func readManifest(fs afero.Fs, dir string) (*manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}
