package entities

import "strings"

// skillDictionary maps lowercase aliases to canonical skill names. The list is
// intentionally curated; unknown technologies are simply not extracted.
var skillDictionary = map[string]string{
	"go":         "Go",
	"golang":     "Go",
	"python":     "Python",
	"java":       "Java",
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"c++":        "C++",
	"c#":         "C#",
	"ruby":       "Ruby",
	"php":        "PHP",
	"swift":      "Swift",
	"kotlin":     "Kotlin",
	"rust":       "Rust",
	"scala":      "Scala",
	"sql":        "SQL",
	"postgresql": "PostgreSQL",
	"postgres":   "PostgreSQL",
	"mysql":      "MySQL",
	"mongodb":    "MongoDB",
	"redis":      "Redis",
	"kafka":      "Kafka",
	"docker":     "Docker",
	"kubernetes": "Kubernetes",
	"k8s":        "Kubernetes",
	"aws":        "AWS",
	"gcp":        "GCP",
	"azure":      "Azure",
	"terraform":  "Terraform",
	"linux":      "Linux",
	"git":        "Git",
	"react":      "React",
	"angular":    "Angular",
	"vue":        "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"django":     "Django",
	"flask":      "Flask",
	"spring":     "Spring",
	"graphql":    "GraphQL",
	"rest":       "REST",
	"grpc":       "gRPC",
	"html":       "HTML",
	"css":        "CSS",
	"excel":      "Excel",
	"tableau":    "Tableau",
	"spark":      "Spark",
	"hadoop":     "Hadoop",
}

// extractSkills tokenizes the text and looks up each token in the dictionary.
// Tokens keep +, # and . so "c++", "c#" and "node.js" survive splitting.
func extractSkills(text string) ([]string, error) {
	var out []string

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case '+', '#', '.':
			return false
		}
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".")
		if canonical, ok := skillDictionary[tok]; ok {
			out = append(out, canonical)
		}
	}

	return out, nil
}
