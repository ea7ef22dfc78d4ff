// Package imgspec parses the declarative image specification document:
// a small YAML file naming the output image and an ordered list of
// path-rewrite rules, each either a "glob: template" include or a
// "!glob" exclusion.
package imgspec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charlesthegreat77/xdvdfs-go/pathrewrite"
)

// Metadata is the document's metadata block.
type Metadata struct {
	Output string `yaml:"output"`
}

// Document is a fully parsed image specification: where to write the
// resulting image, and the ordered rewrite rules to apply to the
// source tree.
type Document struct {
	Metadata Metadata `yaml:"metadata"`
	Rules    []pathrewrite.Rule
	// BaseDir is the directory map_rules host globs are resolved
	// relative to: the spec file's own directory, unless the caller
	// overrides it (e.g. with a CLI --source flag).
	BaseDir string
}

// rawDocument mirrors the on-disk shape before map_rules entries are
// interpreted; map_rules stays a raw yaml.Node so the ordered mix of
// "pattern: template" and "!pattern" entries can be decoded by hand.
type rawDocument struct {
	Metadata Metadata  `yaml:"metadata"`
	MapRules yaml.Node `yaml:"map_rules"`
}

// Parse reads and decodes a document from raw YAML bytes. specDir is
// used as the document's default BaseDir.
func Parse(data []byte, specDir string) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("imgspec: parsing document: %w", err)
	}
	rules, err := decodeMapRules(&raw.MapRules)
	if err != nil {
		return nil, err
	}
	return &Document{
		Metadata: raw.Metadata,
		Rules:    rules,
		BaseDir:  specDir,
	}, nil
}

// Load reads a document from a file on disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imgspec: reading %q: %w", path, err)
	}
	return Parse(data, filepath.Dir(path))
}

// decodeMapRules walks the map_rules sequence node, decoding each item
// as a single-key "pattern: template" mapping, preserving document
// order. A key prefixed with "!" is an exclusion rule; its value is
// arbitrary and ignored.
func decodeMapRules(node *yaml.Node) ([]pathrewrite.Rule, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("imgspec: map_rules must be a list")
	}
	rules := make([]pathrewrite.Rule, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, fmt.Errorf("imgspec: map_rules entry must have exactly one key")
		}
		key := item.Content[0].Value
		if strings.HasPrefix(key, "!") {
			rules = append(rules, pathrewrite.Rule{Pattern: strings.TrimPrefix(key, "!"), Exclude: true})
			continue
		}
		rules = append(rules, pathrewrite.Rule{
			Pattern:  key,
			Template: item.Content[1].Value,
		})
	}
	return rules, nil
}

// ResolveOutput returns the output image path, resolved relative to
// BaseDir if it isn't already absolute.
func (d *Document) ResolveOutput() string {
	if filepath.IsAbs(d.Metadata.Output) {
		return d.Metadata.Output
	}
	return filepath.Join(d.BaseDir, d.Metadata.Output)
}

// Engine compiles the document's rules into a pathrewrite.Engine.
func (d *Document) Engine() (*pathrewrite.Engine, error) {
	return pathrewrite.New(d.Rules)
}

// ParseRuleArg parses one command-line -m rule, in the same "glob" /
// "glob=template" dialect the document's map_rules entries use. A
// pattern prefixed with "!" excludes; "glob=template" includes and
// rewrites; any other argument (a bare glob with no "=") is an error.
func ParseRuleArg(arg string) (pathrewrite.Rule, error) {
	if strings.HasPrefix(arg, "!") {
		return pathrewrite.Rule{Pattern: strings.TrimPrefix(arg, "!"), Exclude: true}, nil
	}
	pattern, template, ok := strings.Cut(arg, "=")
	if !ok {
		return pathrewrite.Rule{}, fmt.Errorf("imgspec: rule %q must be \"!glob\" or \"glob=template\"", arg)
	}
	return pathrewrite.Rule{Pattern: pattern, Template: template}, nil
}

// FormatRuleArg renders a Rule back into the -m command-line dialect
// ParseRuleArg accepts, the inverse half of the §4.I round-trip.
func FormatRuleArg(r pathrewrite.Rule) string {
	if r.Exclude {
		return "!" + r.Pattern
	}
	return r.Pattern + "=" + r.Template
}

// New builds a Document directly from command-line rules and an
// output path, with no backing spec file. BaseDir is set to baseDir
// as given; the CLI passes "." (the current working directory).
func New(output string, rules []pathrewrite.Rule, baseDir string) *Document {
	return &Document{
		Metadata: Metadata{Output: output},
		Rules:    rules,
		BaseDir:  baseDir,
	}
}

// Marshal renders a Document back into the on-disk YAML shape Parse
// reads, completing the round-trip between a spec document and the
// ordered rule list it carries.
func (d *Document) Marshal() ([]byte, error) {
	mapRules := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range d.Rules {
		key := r.Pattern
		value := r.Template
		if r.Exclude {
			key = "!" + r.Pattern
			value = ""
		}
		entry := &yaml.Node{Kind: yaml.MappingNode}
		entry.Content = []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: key},
			{Kind: yaml.ScalarNode, Value: value},
		}
		mapRules.Content = append(mapRules.Content, entry)
	}
	doc := struct {
		Metadata Metadata   `yaml:"metadata"`
		MapRules *yaml.Node `yaml:"map_rules"`
	}{Metadata: d.Metadata, MapRules: mapRules}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("imgspec: marshaling document: %w", err)
	}
	return out, nil
}
