package formschema

import (
	"fmt"
	"strings"
)

// Snapshot copies the selected personal fields out of the live profile.
func Snapshot(s Schema, profile map[string]string) map[string]string {
	out := make(map[string]string, len(s.PersonalFields))
	for _, f := range s.PersonalFields {
		out[f] = strings.TrimSpace(profile[f])
	}
	return out
}

// MissingRequired lists the labels of every personal field without a value
// and every required question without an answer, in form order.
func MissingRequired(s Schema, personal, answers map[string]string) []string {
	var missing []string
	for _, f := range s.PersonalFields {
		if strings.TrimSpace(personal[f]) == "" {
			missing = append(missing, FieldLabel(f))
		}
	}
	for _, q := range s.CustomQuestions {
		if q.Required && strings.TrimSpace(answers[q.ID]) == "" {
			missing = append(missing, q.Label)
		}
	}
	return missing
}

// CleanAnswers trims answers and rejects ids that are not in the schema.
// A select answer must match one of the options when options exist.
func CleanAnswers(s Schema, answers map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(answers))
	for id, raw := range answers {
		q, ok := s.Question(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAnswer, id)
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if q.Type == QuestionSelect && len(q.Options) > 0 && !contains(q.Options, v) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOption, q.Label)
		}
		out[id] = v
	}
	return out, nil
}

// MergeAnswers keeps answers to questions removed from the schema since the
// registration was made and overlays the new ones.
func MergeAnswers(previous, updated map[string]string) map[string]string {
	out := make(map[string]string, len(previous)+len(updated))
	for k, v := range previous {
		out[k] = v
	}
	for k, v := range updated {
		out[k] = v
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
