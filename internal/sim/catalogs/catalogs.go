// Package catalogs holds the named toolbox presets a level can be compiled
// against instead of its own toolbox.
package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"questsolver/internal/level"
	"questsolver/internal/sim/vocab"
)

//go:embed toolboxes/*.json
var embedded embed.FS

type Preset struct {
	Name    string        `json:"name"`
	Toolbox level.Toolbox `json:"toolbox"`
	Digest  string        `json:"-"`
}

func (p Preset) Vocabulary() vocab.Set { return vocab.FromToolbox(p.Toolbox) }

type ToolboxCatalog struct {
	ByName map[string]Preset
	Digest string
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Default returns the presets compiled into the binary.
func Default() (*ToolboxCatalog, error) {
	sub, err := fs.Sub(embedded, "toolboxes")
	if err != nil {
		return nil, err
	}
	return load(sub)
}

// Load reads every *.json preset in dir.
func Load(dir string) (*ToolboxCatalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return load(os.DirFS(dir))
}

func load(fsys fs.FS) (*ToolboxCatalog, error) {
	out := &ToolboxCatalog{ByName: map[string]Preset{}}

	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var concat bytes.Buffer
	for _, p := range files {
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		concat.Write(b)
		concat.WriteByte('\n')

		var pr Preset
		if err := json.Unmarshal(b, &pr); err != nil {
			return nil, fmt.Errorf("toolbox %s: %w", path.Base(p), err)
		}
		if pr.Name == "" {
			pr.Name = strings.TrimSuffix(path.Base(p), ".json")
		}
		if _, dup := out.ByName[pr.Name]; dup {
			return nil, fmt.Errorf("toolbox %s: duplicate preset %q", path.Base(p), pr.Name)
		}
		pr.Digest = sha256Hex(b)
		out.ByName[pr.Name] = pr
	}
	out.Digest = sha256Hex(concat.Bytes())
	return out, nil
}

func (c *ToolboxCatalog) Get(name string) (Preset, bool) {
	p, ok := c.ByName[name]
	return p, ok
}

// Resolve returns the preset's vocabulary, or an error naming the unknown
// preset.
func (c *ToolboxCatalog) Resolve(name string) (vocab.Set, error) {
	p, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown toolbox preset %q", name)
	}
	return p.Vocabulary(), nil
}

func (c *ToolboxCatalog) Names() []string {
	out := make([]string, 0, len(c.ByName))
	for name := range c.ByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
