package knowledge

import "strings"

// Class is the coarse intent of a free-text question.
type Class string

const (
	ClassIdentity     Class = "identity"
	ClassProject      Class = "project"
	ClassResearch     Class = "research"
	ClassCapability   Class = "capability"
	ClassVerification Class = "verification"
	ClassMeta         Class = "meta"
	ClassExperience   Class = "experience"
	ClassNavigation   Class = "navigation"
)

// classKeywords is evaluated in order; on equal counts the earlier class wins.
var classKeywords = []struct {
	class    Class
	keywords []string
}{
	{ClassIdentity, []string{"who", "about", "background", "yourself", "profile", "bio"}},
	{ClassProject, []string{"project", "built", "build", "system", "platform", "tool", "framework"}},
	{ClassResearch, []string{"research", "article", "deep dive", "intent", "phenomenology", "geometry"}},
	{ClassCapability, []string{"stack", "skills", "language", "aws", "python", "typescript", "agent architecture"}},
	{ClassVerification, []string{"verify", "prove", "evidence", "source", "confirm", "real"}},
	{ClassMeta, []string{"how", "query", "protocol", "instructions", "system prompt"}},
	{ClassExperience, []string{"experience", "role", "work", "career"}},
	{ClassNavigation, []string{"open", "show", "go to", "navigate", "app", "module"}},
}

// Classify returns the class whose keywords occur most often in query.
// A query matching nothing is treated as an identity question.
func Classify(query string) Class {
	q := strings.ToLower(query)
	best, bestScore := ClassIdentity, 0
	for _, ck := range classKeywords {
		score := 0
		for _, kw := range ck.keywords {
			if strings.Contains(q, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = ck.class, score
		}
	}
	return best
}
