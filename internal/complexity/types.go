// Package complexity scores functions by cognitive complexity: a weighted
// count of control-flow constructs that grows with nesting depth.
package complexity

// Language represents a source grammar the engine can be asked to evaluate.
type Language string

const (
	LangRust   Language = "rust"
	LangGo     Language = "go"
	LangPython Language = "python"
)

// FunctionComplexity is the score of a single top-level function.
type FunctionComplexity struct {
	// Function is the declared name
	Function string `json:"function" yaml:"function"`

	// Value is the cognitive complexity, always >= 0
	Value int `json:"value" yaml:"value"`

	// StartLine is the line number where the function starts
	StartLine int `json:"startLine,omitempty" yaml:"startLine,omitempty"`

	// EndLine is the line number where the function ends
	EndLine int `json:"endLine,omitempty" yaml:"endLine,omitempty"`

	// Risk is low, medium or high depending on the analyzer thresholds
	Risk string `json:"risk,omitempty" yaml:"risk,omitempty"`
}

// FileComplexity contains complexity metrics for an entire file.
type FileComplexity struct {
	// Path is the file path
	Path string `json:"path" yaml:"path"`

	// Language is the detected language
	Language Language `json:"language" yaml:"language"`

	// Functions contains one entry per top-level function, in declaration order
	Functions []FunctionComplexity `json:"functions" yaml:"functions"`

	// Total is the sum of all function scores
	Total int `json:"total" yaml:"total"`

	// Max is the highest function score in the file
	Max int `json:"max" yaml:"max"`

	// Average is the mean function score
	Average float64 `json:"average" yaml:"average"`

	// FunctionCount is the number of functions analyzed
	FunctionCount int `json:"functionCount" yaml:"functionCount"`
}

// Aggregate computes aggregate metrics from function results.
func (fc *FileComplexity) Aggregate() {
	fc.FunctionCount = len(fc.Functions)
	fc.Total, fc.Max, fc.Average = 0, 0, 0
	if fc.FunctionCount == 0 {
		return
	}

	for _, f := range fc.Functions {
		fc.Total += f.Value
		if f.Value > fc.Max {
			fc.Max = f.Value
		}
	}

	fc.Average = float64(fc.Total) / float64(fc.FunctionCount)
}

// RiskThresholds are the cognitive scores at which a function becomes
// medium or high risk.
type RiskThresholds struct {
	Medium int `json:"medium" mapstructure:"medium" toml:"medium"`
	High   int `json:"high" mapstructure:"high" toml:"high"`
}

// DefaultRiskThresholds returns the thresholds used when none are configured.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Medium: 15, High: 30}
}

// ClassifyRisk maps a score onto low, medium or high.
func ClassifyRisk(value int, t RiskThresholds) string {
	switch {
	case t.High > 0 && value > t.High:
		return "high"
	case t.Medium > 0 && value > t.Medium:
		return "medium"
	default:
		return "low"
	}
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".rs":
		return LangRust, true
	case ".go":
		return LangGo, true
	case ".py", ".pyw":
		return LangPython, true
	default:
		return "", false
	}
}

// IsImplemented reports whether an evaluator exists for the language.
func IsImplemented(lang Language) bool {
	return lang == LangRust
}
