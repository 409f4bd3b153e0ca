package elicitation

import "fmt"

// FourW holds the Who/What/When/Where clarification questions for a
// requirement.
type FourW struct {
	Who   string `json:"who"`
	What  string `json:"what"`
	When  string `json:"when"`
	Where string `json:"where"`
}

// AnalyzeFourW builds the fixed 4W checklist around a requirement statement.
func AnalyzeFourW(requirement string) FourW {
	return FourW{
		Who:   fmt.Sprintf("WHO: Who will use this feature or be affected by '%s'?", requirement),
		What:  fmt.Sprintf("WHAT: What specific actions or data are involved in '%s'?", requirement),
		When:  fmt.Sprintf("WHEN: When should '%s' occur or be available?", requirement),
		Where: fmt.Sprintf("WHERE: Where in the system will '%s' be implemented?", requirement),
	}
}
