// Package formschema holds the registration form contract shared by the
// schema editor, the registration form and the registrant export.
package formschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	FieldName      = "name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldStudentID = "student_id"
	FieldSchool    = "school"
	FieldIDNumber  = "id_number"
)

const (
	QuestionText     = "text"
	QuestionTextarea = "textarea"
	QuestionSelect   = "select"
)

// PersonalFields is the allowed vocabulary in display order.
var PersonalFields = []string{FieldName, FieldEmail, FieldPhone, FieldStudentID, FieldSchool, FieldIDNumber}

var personalFieldLabels = map[string]string{
	FieldName:      "Name",
	FieldEmail:     "Email",
	FieldPhone:     "Phone",
	FieldStudentID: "Student ID",
	FieldSchool:    "School",
	FieldIDNumber:  "ID Number",
}

var (
	ErrEmptySchema         = errors.New("select at least one personal field or add a custom question")
	ErrBlankLabel          = errors.New("custom question label cannot be empty")
	ErrUnknownField        = errors.New("unknown personal field")
	ErrDuplicateField      = errors.New("duplicate personal field")
	ErrDuplicateQuestionID = errors.New("duplicate question id")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrUnknownAnswer       = errors.New("answer does not match any question")
	ErrInvalidOption       = errors.New("answer is not one of the options")
)

type Question struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type Schema struct {
	PersonalFields  []string   `json:"personalFields"`
	CustomQuestions []Question `json:"customQuestions"`
}

// Empty is the schema every new event starts with.
func Empty() Schema {
	return Schema{PersonalFields: []string{}, CustomQuestions: []Question{}}
}

func IsPersonalField(field string) bool {
	_, ok := personalFieldLabels[field]
	return ok
}

func IsQuestionType(t string) bool {
	return t == QuestionText || t == QuestionTextarea || t == QuestionSelect
}

// FieldLabel returns the display label of a personal field.
func FieldLabel(field string) string {
	if label, ok := personalFieldLabels[field]; ok {
		return label
	}
	return field
}

// Clone returns a deep copy so drafts never alias the saved document.
func (s Schema) Clone() Schema {
	out := Schema{
		PersonalFields:  append([]string{}, s.PersonalFields...),
		CustomQuestions: make([]Question, len(s.CustomQuestions)),
	}
	for i, q := range s.CustomQuestions {
		q.Options = append([]string(nil), q.Options...)
		out.CustomQuestions[i] = q
	}
	return out
}

func (s Schema) HasPersonalField(field string) bool {
	for _, f := range s.PersonalFields {
		if f == field {
			return true
		}
	}
	return false
}

func (s Schema) Question(id string) (Question, bool) {
	for _, q := range s.CustomQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ValidateForSave checks what must hold before the schema document is
// written. Select questions without options are accepted.
func (s Schema) ValidateForSave() error {
	if len(s.PersonalFields) == 0 && len(s.CustomQuestions) == 0 {
		return ErrEmptySchema
	}

	seenFields := make(map[string]bool, len(s.PersonalFields))
	for _, f := range s.PersonalFields {
		if !IsPersonalField(f) {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		if seenFields[f] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, f)
		}
		seenFields[f] = true
	}

	seenIDs := make(map[string]bool, len(s.CustomQuestions))
	for i, q := range s.CustomQuestions {
		if strings.TrimSpace(q.Label) == "" {
			return fmt.Errorf("%w (question %d)", ErrBlankLabel, i+1)
		}
		if q.ID == "" || seenIDs[q.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateQuestionID, q.ID)
		}
		seenIDs[q.ID] = true
		if !IsQuestionType(q.Type) {
			return fmt.Errorf("%w: %s", ErrInvalidQuestionType, q.Type)
		}
	}
	return nil
}

// Normalize trims labels and options and drops options from non-select questions.
func (s Schema) Normalize() Schema {
	out := s.Clone()
	if out.PersonalFields == nil {
		out.PersonalFields = []string{}
	}
	for i := range out.CustomQuestions {
		q := &out.CustomQuestions[i]
		q.Label = strings.TrimSpace(q.Label)
		if q.Type != QuestionSelect {
			q.Options = nil
			continue
		}
		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		q.Options = opts
	}
	return out
}

func newQuestionID() string {
	return uuid.NewString()
}
