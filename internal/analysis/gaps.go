// Package analysis mines structured methodology records for research gaps:
// dataset and model combinations nobody has tried, and limitation phrases
// that recur across papers. It works on extracted records only and calls no
// external service.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Methodology is the structured record extracted from one paper.
type Methodology struct {
	PaperID      string   `json:"paper_id,omitempty"`
	Model        string   `json:"model"`
	Datasets     []string `json:"datasets"`
	Results      string   `json:"results,omitempty"`
	Contribution string   `json:"contribution,omitempty"`
	Metrics      []string `json:"metrics,omitempty"`
}

// Combination pairs one dataset with one model.
type Combination struct {
	Dataset string `json:"dataset"`
	Model   string `json:"model"`
}

// CombinationReport lists what the analyzed papers cover and which
// dataset and model pairings none of them evaluated.
type CombinationReport struct {
	Datasets []string      `json:"unique_datasets"`
	Models   []string      `json:"unique_models"`
	Existing []Combination `json:"existing_combinations"`
	Missing  []Combination `json:"missing_combinations"`
}

// AnalyzeCombinations builds the dataset and model cross product over the
// given methodologies and reports which pairs appear in no paper. All
// output slices are sorted so the report is stable across runs.
func AnalyzeCombinations(methodologies []Methodology) CombinationReport {
	datasets := make(map[string]struct{})
	models := make(map[string]struct{})
	existing := make(map[Combination]struct{})

	for _, m := range methodologies {
		model := strings.TrimSpace(m.Model)
		if model != "" {
			models[model] = struct{}{}
		}
		for _, d := range m.Datasets {
			dataset := strings.TrimSpace(d)
			if dataset == "" {
				continue
			}
			datasets[dataset] = struct{}{}
			if model != "" {
				existing[Combination{Dataset: dataset, Model: model}] = struct{}{}
			}
		}
	}

	report := CombinationReport{
		Datasets: sortedKeys(datasets),
		Models:   sortedKeys(models),
	}
	for combo := range existing {
		report.Existing = append(report.Existing, combo)
	}
	sortCombinations(report.Existing)

	for _, dataset := range report.Datasets {
		for _, model := range report.Models {
			if _, ok := existing[Combination{Dataset: dataset, Model: model}]; !ok {
				report.Missing = append(report.Missing, Combination{Dataset: dataset, Model: model})
			}
		}
	}
	return report
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// ExtractCommonLimitations mines the results, contribution, and metrics
// text for 4 to 6 word phrases that recur across papers. A phrase must
// appear in at least half of the methodologies to count; at most 15
// phrases are returned, most frequent first.
func ExtractCommonLimitations(methodologies []Methodology) []string {
	var texts []string
	for _, m := range methodologies {
		for _, field := range []string{m.Results, m.Contribution, strings.Join(m.Metrics, " ")} {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				texts = append(texts, strings.ToLower(trimmed))
			}
		}
	}
	if len(texts) == 0 {
		return nil
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	for _, text := range texts {
		words := wordRe.FindAllString(text, -1)
		for _, n := range []int{4, 5, 6} {
			for i := 0; i+n <= len(words); i++ {
				phrase := strings.Join(words[i:i+n], " ")
				if len(phrase) <= 15 {
					continue
				}
				if _, seen := counts[phrase]; !seen {
					order[phrase] = len(order)
				}
				counts[phrase]++
			}
		}
	}

	phrases := make([]string, 0, len(counts))
	for p := range counts {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return order[phrases[i]] < order[phrases[j]]
	})
	if len(phrases) > 30 {
		phrases = phrases[:30]
	}

	threshold := max(1, len(methodologies)/2)
	var common []string
	for _, p := range phrases {
		if counts[p] >= threshold {
			common = append(common, p)
		}
	}
	if len(common) > 15 {
		common = common[:15]
	}
	return common
}

// LoadMethodologies reads an exported methodology file: a JSON array of
// records.
func LoadMethodologies(path string) ([]Methodology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read methodologies: %w", err)
	}

	var methodologies []Methodology
	if err := json.Unmarshal(data, &methodologies); err != nil {
		return nil, fmt.Errorf("parse methodologies %s: %w", path, err)
	}
	return methodologies, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortCombinations(combos []Combination) {
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Dataset != combos[j].Dataset {
			return combos[i].Dataset < combos[j].Dataset
		}
		return combos[i].Model < combos[j].Model
	})
}
