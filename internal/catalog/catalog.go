// Package catalog: встроенные справочники: Annex A ISO/IEC 27001:2022 и OWASP Top 10.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var files embed.FS

type Control struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Guidance    string `yaml:"guidance"`
}

type Domain struct {
	Code        string    `yaml:"code"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Controls    []Control `yaml:"controls"`
}

type Vulnerability struct {
	Code                string   `yaml:"code"`
	Name                string   `yaml:"name"`
	Category            string   `yaml:"category"`
	Description         string   `yaml:"description"`
	BaseLikelihood      int      `yaml:"base_likelihood"`
	BaseImpact          int      `yaml:"base_impact"`
	CWEIDs              []string `yaml:"cwe_ids"`
	ReferenceLinks      []string `yaml:"reference_links"`
	RemediationGuidance string   `yaml:"remediation_guidance"`
}

func AnnexA() ([]Domain, error) {
	var doc struct {
		Domains []Domain `yaml:"domains"`
	}
	if err := load("data/annex_a.yaml", &doc); err != nil {
		return nil, err
	}
	return doc.Domains, nil
}

func OWASPTop10() ([]Vulnerability, error) {
	var doc struct {
		Vulnerabilities []Vulnerability `yaml:"vulnerabilities"`
	}
	if err := load("data/owasp.yaml", &doc); err != nil {
		return nil, err
	}
	return doc.Vulnerabilities, nil
}

func load(name string, out any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
