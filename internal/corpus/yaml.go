package corpus

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlQuestion is one entry of a YAML bank:
//
//	- id: 1
//	  question: What is 2+2?
//	  options: ["3", "4", "5", "22"]
//	  answer: B
type yamlQuestion struct {
	ID       string   `yaml:"id"`
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Answer   string   `yaml:"answer"`
}

func readYAML(path string) ([]rawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseYAML(f)
}

func parseYAML(r io.Reader) ([]rawRow, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	list := doc.Content[0]
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse yaml: expected a list of questions at line %d", list.Line)
	}

	rows := make([]rawRow, 0, len(list.Content))
	for _, item := range list.Content {
		var q yamlQuestion
		if err := item.Decode(&q); err != nil {
			return nil, fmt.Errorf("parse yaml line %d: %w", item.Line, err)
		}
		rows = append(rows, rawRow{
			Line:    item.Line,
			ID:      q.ID,
			Prompt:  q.Question,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}
	return rows, nil
}
