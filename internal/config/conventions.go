package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/rewrite"
)

// Conventions are the document markers a deployment recognizes.
type Conventions struct {
	SectionTag    string `yaml:"section_tag"`
	UnnamedColumn string `yaml:"unnamed_column"`
}

func DefaultConventions() Conventions {
	return Conventions{
		SectionTag:    parser.DefaultConventions().SectionTag,
		UnnamedColumn: rewrite.DefaultUnnamedColumn,
	}
}

var tagNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

func (c Conventions) Validate() error {
	if !tagNameRe.MatchString(c.SectionTag) {
		return fmt.Errorf("section_tag %q is not a valid element name", c.SectionTag)
	}
	if c.UnnamedColumn == "" {
		return fmt.Errorf("unnamed_column must not be empty")
	}
	return nil
}

// Parser returns the classifier conventions.
func (c Conventions) Parser() parser.Conventions {
	return parser.Conventions{SectionTag: c.SectionTag}
}

// LoadConventions reads a YAML conventions file. Missing keys keep their
// defaults.
func LoadConventions(path string) (Conventions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Conventions{}, fmt.Errorf("read conventions: %w", err)
	}
	return ParseConventions(data)
}

// ParseConventions decodes YAML conventions over the defaults.
func ParseConventions(data []byte) (Conventions, error) {
	conv := DefaultConventions()
	if err := yaml.Unmarshal(data, &conv); err != nil {
		return Conventions{}, fmt.Errorf("parse conventions: %w", err)
	}
	if err := conv.Validate(); err != nil {
		return Conventions{}, err
	}
	return conv, nil
}
