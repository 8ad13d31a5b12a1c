package formschema

import "fmt"

// QuestionPatch carries the fields an edit changes; nil means unchanged.
type QuestionPatch struct {
	Label    *string   `json:"label"`
	Type     *string   `json:"type"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options"`
}

// TogglePersonalField adds the field when absent and removes it when present.
func (s *Schema) TogglePersonalField(field string) error {
	if !IsPersonalField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	for i, f := range s.PersonalFields {
		if f == field {
			s.PersonalFields = append(s.PersonalFields[:i], s.PersonalFields[i+1:]...)
			return nil
		}
	}
	s.PersonalFields = append(s.PersonalFields, field)
	return nil
}

// AddQuestion appends a blank text question with a fresh id.
func (s *Schema) AddQuestion() Question {
	q := Question{
		ID:   newQuestionID(),
		Type: QuestionText,
	}
	s.CustomQuestions = append(s.CustomQuestions, q)
	return q
}

// UpdateQuestion merges patch into the question with the given id.
func (s *Schema) UpdateQuestion(id string, patch QuestionPatch) (Question, error) {
	for i := range s.CustomQuestions {
		q := &s.CustomQuestions[i]
		if q.ID != id {
			continue
		}
		if patch.Type != nil {
			if !IsQuestionType(*patch.Type) {
				return Question{}, fmt.Errorf("%w: %s", ErrInvalidQuestionType, *patch.Type)
			}
			q.Type = *patch.Type
		}
		if patch.Label != nil {
			q.Label = *patch.Label
		}
		if patch.Required != nil {
			q.Required = *patch.Required
		}
		if patch.Options != nil {
			q.Options = append([]string{}, (*patch.Options)...)
		}
		if q.Type != QuestionSelect {
			q.Options = nil
		}
		return *q, nil
	}
	return Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// DeleteQuestion removes the question with the given id.
func (s *Schema) DeleteQuestion(id string) error {
	for i, q := range s.CustomQuestions {
		if q.ID == id {
			s.CustomQuestions = append(s.CustomQuestions[:i], s.CustomQuestions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}
