package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Anchor is one entry in the trust anchors file.
type Anchor struct {
	DID    string `yaml:"did"`
	Issuer string `yaml:"issuer"`
}

type anchorsFile struct {
	Anchors []Anchor `yaml:"anchors"`
}

// LoadAnchors reads a YAML anchors file of the form
//
//	anchors:
//	  - did: did:web:example.org:root
//	    issuer: did:web:example.org
//
// An empty path returns no anchors and no error.
func LoadAnchors(path string) ([]Anchor, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read anchors file: %w", err)
	}
	return ParseAnchors(raw)
}

// ParseAnchors decodes anchor YAML. Every anchor needs a DID and DIDs must be
// unique.
func ParseAnchors(raw []byte) ([]Anchor, error) {
	var file anchorsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse anchors file: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Anchors))
	for i := range file.Anchors {
		a := &file.Anchors[i]
		a.DID = strings.TrimSpace(a.DID)
		a.Issuer = strings.TrimSpace(a.Issuer)
		if a.DID == "" {
			return nil, fmt.Errorf("anchor %d: did is required", i)
		}
		if _, dup := seen[a.DID]; dup {
			return nil, fmt.Errorf("anchor %d: duplicate did %s", i, a.DID)
		}
		seen[a.DID] = struct{}{}
	}
	return file.Anchors, nil
}
