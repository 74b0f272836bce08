package workspace

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/lumenhq/workroom/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// seedProjects returns the fixed seed dataset used when the persisted
// projects snapshot is missing or corrupt.
func seedProjects() []*Project {
	var doc struct {
		Projects []*Project `yaml:"projects"`
	}
	if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
		panic("workspace: invalid embedded seed: " + err.Error())
	}
	for _, p := range doc.Projects {
		if p.Phases == nil {
			p.Phases = []*Phase{}
		}
		if p.Notes == nil {
			p.Notes = []*Note{}
		}
		if p.Messages == nil {
			p.Messages = []models.ChatMessage{}
		}
		if p.AssignedUsers == nil {
			p.AssignedUsers = []string{}
		}
		p.recomputeProgress()
	}
	return doc.Projects
}
