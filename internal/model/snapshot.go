package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/screenager/bpego/internal/bpeerr"
	"github.com/screenager/bpego/internal/reserved"
	"github.com/screenager/bpego/internal/vocab"
)

// Format selects the on-disk encoding of a snapshot.
type Format string

const (
	// FormatJSON is the default, spec-described self-describing document.
	FormatJSON Format = "json"
	// FormatYAML is an alternate encoding of the same document shape.
	FormatYAML Format = "yaml"
)

// doc is the self-describing snapshot document (§6). Field names are fixed
// by the spec; Config reuses reserved.Table's own struct tags directly.
type doc struct {
	Vocabulary   []string          `json:"vocabulary" yaml:"vocabulary"`
	MergeRules   [][2]string       `json:"merge_rules" yaml:"merge_rules"`
	TokenToIndex map[string]int    `json:"token_to_index" yaml:"token_to_index"`
	IndexToToken map[string]string `json:"index_to_token" yaml:"index_to_token"`
	Config       reserved.Table    `json:"config" yaml:"config"`
}

func toDoc(m *Model) doc {
	tokens := m.vocab.Tokens()
	tokenToIndex := make(map[string]int, len(tokens))
	indexToToken := make(map[string]string, len(tokens))
	for i, t := range tokens {
		tokenToIndex[t] = i
		indexToToken[strconv.Itoa(i)] = t
	}
	rules := make([][2]string, len(m.rules))
	for i, r := range m.rules {
		rules[i] = [2]string{r.Left, r.Right}
	}
	return doc{
		Vocabulary:   tokens,
		MergeRules:   rules,
		TokenToIndex: tokenToIndex,
		IndexToToken: indexToToken,
		Config:       *m.reserved,
	}
}

func fromDoc(d doc) (*Model, error) {
	indexToToken := make(map[int]string, len(d.IndexToToken))
	for k, v := range d.IndexToToken {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: non-integer index_to_token key %q", bpeerr.ErrParse, k)
		}
		indexToToken[idx] = v
	}
	v, err := vocab.NewFromIndexed(indexToToken)
	if err != nil {
		return nil, err
	}
	rules := make([]Rule, len(d.MergeRules))
	for i, r := range d.MergeRules {
		rules[i] = Rule{Left: r[0], Right: r[1]}
	}
	cfg := d.Config
	return New(&cfg, v, rules), nil
}

// Save writes the model to path in the given format, overwriting any
// existing file. The write is not guaranteed atomic.
func Save(m *Model, path string, format Format) error {
	d := toDoc(m)

	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(d)
	default:
		data, err = json.MarshalIndent(d, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a model snapshot from path. The format is chosen by file
// extension (.yaml/.yml -> YAML, anything else -> JSON) since the document
// itself is not self-tagged with its encoding.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var d doc
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", bpeerr.ErrParse, err)
		}
	} else {
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", bpeerr.ErrParse, err)
		}
	}

	m, err := fromDoc(d)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
