// Package config loads schemagen.yaml (or .yml/.json): the working
// directory, alias table and generation targets of a project.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names Find looks for, in order.
var FileNames = []string{"schemagen.yaml", "schemagen.yml", "schemagen.json"}

// Config is the project configuration.
type Config struct {
	// Cwd is the base for alias targets and bare entry paths. Relative
	// values are taken from the config file's directory.
	Cwd string `json:"cwd,omitempty" yaml:"cwd,omitempty"`

	// Aliases replaces the default "@/*" mapping when set.
	Aliases map[string][]string `json:"aliases,omitempty" yaml:"aliases,omitempty" validate:"omitempty,dive,keys,required,endkeys,min=1,dive,required"`

	Targets []Target `json:"targets" yaml:"targets" validate:"required,min=1,dive"`

	// Dir is the directory the config was loaded from. Empty for configs
	// built in code, which resolve against the process working directory.
	Dir string `json:"-" yaml:"-"`
}

// Target is one output file and the schemas generated into it.
type Target struct {
	Name    string     `json:"name,omitempty" yaml:"name,omitempty"`
	Entry   string     `json:"entry" yaml:"entry" validate:"required"`
	Output  string     `json:"output" yaml:"output" validate:"required"`
	Schemas SchemaList `json:"schemas" yaml:"schemas" validate:"required,min=1,dive"`
}

// Label names the target in logs and errors.
func (t Target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Output
}

// SchemaMapping maps a schema declaration to the public type name it is
// emitted as.
type SchemaMapping struct {
	Schema string `validate:"required,tsident"`
	Type   string `validate:"required,tsident"`
}

// SchemaList is an ordered mapping, written in config files as an object
// whose key order is the output order.
type SchemaList []SchemaMapping

// UnmarshalYAML reads a mapping node, keeping key order.
func (l *SchemaList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schemas must be a mapping of schema name to type name", value.Line)
	}
	list := make(SchemaList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: type name for %q must be a string", val.Line, key.Value)
		}
		list = append(list, SchemaMapping{Schema: key.Value, Type: val.Value})
	}
	*l = list
	return nil
}

// UnmarshalJSONFrom reads an object token by token, keeping member order.
func (l *SchemaList) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("schemas must be an object of schema name to type name, got %s", tok.Kind())
	}

	var list SchemaList
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return err
		}
		var typeName string
		if err := json.UnmarshalDecode(dec, &typeName); err != nil {
			return fmt.Errorf("type name for %q: %w", name.String(), err)
		}
		list = append(list, SchemaMapping{Schema: name.String(), Type: typeName})
	}
	if _, err := dec.ReadToken(); err != nil {
		return err
	}
	*l = list
	return nil
}

// Find returns the first config file in dir, or "" when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads, decodes and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}
	cfg.Dir = filepath.Dir(abs)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return cfg, nil
}

// Decode parses config data. ext selects the format: ".json" is JSON,
// anything else YAML. Unknown fields are rejected in both.
func Decode(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, cfg, json.RejectUnknownMembers(true)); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ResolvedCwd returns Cwd as an absolute path.
func (c *Config) ResolvedCwd() (string, error) {
	base := c.Dir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		base = wd
	}
	if c.Cwd == "" {
		return base, nil
	}
	if filepath.IsAbs(c.Cwd) {
		return filepath.Clean(c.Cwd), nil
	}
	return filepath.Join(base, c.Cwd), nil
}

// OutputPath returns where t is written: relative outputs are taken from
// the resolved working directory.
func (c *Config) OutputPath(t Target) (string, error) {
	if filepath.IsAbs(t.Output) {
		return filepath.Clean(t.Output), nil
	}
	cwd, err := c.ResolvedCwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, t.Output), nil
}
