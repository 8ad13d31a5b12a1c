package dto

import "anoa.com/eventhub/internal/formschema"

type SchemaResponse struct {
	Schema formschema.Schema `json:"schema"`
}

// DraftResponse is the editor's working copy. Unsaved is true while a
// draft is held that registrants do not see yet.
type DraftResponse struct {
	Schema  formschema.Schema `json:"schema"`
	Unsaved bool              `json:"unsaved"`
}

type SaveSchemaRequest struct {
	PersonalFields  []string              `json:"personalFields"`
	CustomQuestions []formschema.Question `json:"customQuestions"`
}

func (r SaveSchemaRequest) Schema() formschema.Schema {
	return formschema.Schema{
		PersonalFields:  r.PersonalFields,
		CustomQuestions: r.CustomQuestions,
	}
}

type UpdateQuestionRequest struct {
	Label    *string   `json:"label" binding:"omitempty,max=500"`
	Type     *string   `json:"type" binding:"omitempty,oneof=text textarea select"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options"`
}

func (r UpdateQuestionRequest) Patch() formschema.QuestionPatch {
	return formschema.QuestionPatch{
		Label:    r.Label,
		Type:     r.Type,
		Required: r.Required,
		Options:  r.Options,
	}
}
