// Package study holds the declarative definition of a research study: the
// project background and the ordered table of question keys with their
// titles and descriptions. Studies are data, not code, so the engine
// generalizes to any survey.
package study

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/usercue/thematic-cli/internal/model"
)

// Question is one entry in the study's question table.
type Question struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Study describes one research project.
type Study struct {
	ProjectName string     `yaml:"project_name"`
	Background  string     `yaml:"background"`
	Questions   []Question `yaml:"questions"`
}

// QuestionKeys returns the ordered question key list, the expected column
// names in the interview workbook.
func (s *Study) QuestionKeys() []string {
	keys := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		keys[i] = q.Key
	}
	return keys
}

// Question looks a question up by key.
func (s *Study) Question(key string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// ReasoningContext converts the study definition into the static reasoning
// context stored on a new project.
func (s *Study) ReasoningContext() model.ReasoningContext {
	questions := make(map[string]model.QuestionInfo, len(s.Questions))
	for _, q := range s.Questions {
		questions[q.Key] = model.QuestionInfo{
			Title:       q.Title,
			Description: q.Description,
		}
	}
	return model.ReasoningContext{
		ProjectBackground: s.Background,
		Questions:         questions,
	}
}

// Load reads a study definition from a YAML file.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "study: read %s", path)
	}

	var s Study
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "study: parse %s", path)
	}
	if s.ProjectName == "" {
		return nil, eris.Errorf("study: %s missing project_name", path)
	}
	if len(s.Questions) == 0 {
		return nil, eris.Errorf("study: %s has no questions", path)
	}
	for i, q := range s.Questions {
		if q.Key == "" {
			return nil, eris.Errorf("study: question %d missing key", i)
		}
	}
	return &s, nil
}

// Default returns the built-in consumer privacy study used when no study
// file is configured.
func Default() *Study {
	return &Study{
		ProjectName: "vpn-analysis",
		Background: "The primary goal of this research study is to understand the consumer privacy market, " +
			"specifically in the areas of network privacy (VPNs) and data deletion services. We aim to size " +
			"the market, identify key customer needs and use cases, and validate product-market fit for " +
			"CLIENT's offerings in these spaces.",
		Questions: []Question{
			{
				Key:         "vpn_selection",
				Title:       "What factors influence VPN selection decisions?",
				Description: "Understanding the criteria consumers use when choosing VPN services",
			},
			{
				Key:         "unmet_needs_private_location",
				Title:       "What are the unmet needs for private location features?",
				Description: "Identifying gaps in current VPN location privacy offerings",
			},
			{
				Key:         "unmet_needs_always_avail",
				Title:       "What are the unmet needs for VPN accessibility and reliability?",
				Description: "Understanding issues with VPN availability and consistent service",
			},
			{
				Key:         "current_vpn_feedback",
				Title:       "What feedback do users have about their current VPN services?",
				Description: "Collecting user experiences and satisfaction levels",
			},
			{
				Key:         "remove_data_steps_probe_yes",
				Title:       "How do users who want data deletion expect the process to work?",
				Description: "Understanding expectations for data deletion services",
			},
			{
				Key:         "remove_data_steps_probe_no",
				Title:       "Why do some users not want data deletion services?",
				Description: "Understanding resistance to data deletion offerings",
			},
		},
	}
}
