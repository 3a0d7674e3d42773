package msgcat

import (
    "embed"
    "errors"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "text/template"

    yaml "gopkg.in/yaml.v3"
)

const defaultFile = "messages.en.yaml"

//go:embed messages.en.yaml
var defaultFiles embed.FS

var ErrNotFound = errors.New("msgcat: template not found")

// Catalog holds flattened dot-key templates. Embedded defaults are loaded
// first, then *.yaml files from an optional override directory.
type Catalog struct {
    mu     sync.RWMutex
    data   map[string]string
    parsed map[string]*template.Template
}

// New loads the embedded messages and applies overrideDir when set.
func New(overrideDir string) (*Catalog, error) {
    c := &Catalog{data: make(map[string]string), parsed: make(map[string]*template.Template)}

    raw, err := fs.ReadFile(defaultFiles, defaultFile)
    if err != nil {
        return nil, fmt.Errorf("read embedded messages: %w", err)
    }
    flat, err := parseYAMLToFlat(raw)
    if err != nil {
        return nil, fmt.Errorf("parse embedded messages: %w", err)
    }
    c.merge(flat)

    if strings.TrimSpace(overrideDir) != "" {
        if err := c.applyDir(overrideDir); err != nil {
            return nil, err
        }
    }
    return c, nil
}

func (c *Catalog) merge(flat map[string]string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    for k, v := range flat {
        c.data[k] = v
        delete(c.parsed, k)
    }
}

func (c *Catalog) applyDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return fmt.Errorf("read template dir: %w", err)
    }
    var files []string
    for _, e := range entries {
        if e.IsDir() { continue }
        switch strings.ToLower(filepath.Ext(e.Name())) {
        case ".yaml", ".yml":
            files = append(files, e.Name())
        }
    }
    sort.Strings(files)

    // 같은 키를 두 override 파일이 정의하면 거부
    owner := make(map[string]string)
    for _, name := range files {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil { return fmt.Errorf("read %s: %w", name, err) }
        flat, err := parseYAMLToFlat(b)
        if err != nil { return fmt.Errorf("parse %s: %w", name, err) }
        for k := range flat {
            if prev, ok := owner[k]; ok {
                return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
            }
            owner[k] = name
        }
        c.merge(flat)
    }
    return nil
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
    var m map[string]any
    if err := yaml.Unmarshal(b, &m); err != nil {
        return nil, err
    }
    flat := make(map[string]string)
    if err := flatten(m, "", flat); err != nil {
        return nil, err
    }
    return flat, nil
}

func flatten(src any, prefix string, out map[string]string) error {
    switch v := src.(type) {
    case map[string]any:
        for k, vv := range v {
            key := k
            if prefix != "" { key = prefix + "." + k }
            if err := flatten(vv, key, out); err != nil { return err }
        }
        return nil
    case string:
        if prefix == "" { return errors.New("string value without key") }
        out[prefix] = v
        return nil
    case nil:
        return nil
    default:
        return fmt.Errorf("unsupported value at %s: %T", prefix, v)
    }
}

// Has reports whether key has a non-blank template.
func (c *Catalog) Has(key string) bool {
    c.mu.RLock()
    defer c.mu.RUnlock()
    return strings.TrimSpace(c.data[strings.TrimSpace(key)]) != ""
}

// Keys lists every loaded key in sorted order.
func (c *Catalog) Keys() []string {
    c.mu.RLock()
    keys := make([]string, 0, len(c.data))
    for k := range c.data { keys = append(keys, k) }
    c.mu.RUnlock()
    sort.Strings(keys)
    return keys
}

// Render executes the template stored under key. Missing data keys are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
    t, err := c.template(strings.TrimSpace(key))
    if err != nil {
        return "", err
    }
    var b strings.Builder
    if err := t.Execute(&b, data); err != nil {
        return "", fmt.Errorf("render %s: %w", key, err)
    }
    return b.String(), nil
}

func (c *Catalog) template(key string) (*template.Template, error) {
    c.mu.RLock()
    t, ok := c.parsed[key]
    text := c.data[key]
    c.mu.RUnlock()
    if ok {
        return t, nil
    }
    if strings.TrimSpace(text) == "" {
        return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
    }
    t, err := template.New(key).Option("missingkey=error").Funcs(funcs).Parse(text)
    if err != nil {
        return nil, fmt.Errorf("parse %s: %w", key, err)
    }
    c.mu.Lock()
    c.parsed[key] = t
    c.mu.Unlock()
    return t, nil
}

var funcs = template.FuncMap{
    // signed renders a rating change as " (+n)", " (-n)" or nothing.
    "signed": func(n int) string {
        switch {
        case n > 0:
            return fmt.Sprintf(" (+%d)", n)
        case n < 0:
            return fmt.Sprintf(" (%d)", n)
        }
        return ""
    },
    "join": strings.Join,
}
