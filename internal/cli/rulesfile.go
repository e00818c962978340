package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the YAML shape of a --rules-file document: the timer
// lines to evaluate after any lines given on the command line.
//
//	lines:
//	  - --weekday Mon,Tue,Wed,Thu,Fri --time 19..24
//	  - --age-exceeds 7d
type rulesFile struct {
	Lines []string `yaml:"lines"`
}

func loadRulesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rf.Lines, nil
}
