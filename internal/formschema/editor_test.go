package formschema

import (
	"errors"
	"testing"
)

func TestTogglePersonalFieldFlipsMembership(t *testing.T) {
	s := Empty()
	if err := s.TogglePersonalField(FieldSchool); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.HasPersonalField(FieldSchool) {
		t.Fatal("expected school to be selected")
	}
	if err := s.TogglePersonalField(FieldSchool); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.HasPersonalField(FieldSchool) || len(s.PersonalFields) != 0 {
		t.Fatalf("expected school to be removed, got %v", s.PersonalFields)
	}
	if err := s.TogglePersonalField("nickname"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestAddQuestionGeneratesUniqueIDs(t *testing.T) {
	s := Empty()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		q := s.AddQuestion()
		if q.ID == "" || seen[q.ID] {
			t.Fatalf("duplicate or empty id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Type != QuestionText || q.Required || q.Label != "" {
			t.Fatalf("unexpected defaults %+v", q)
		}
	}
	if len(s.CustomQuestions) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(s.CustomQuestions))
	}
}

func TestUpdateQuestionMergesPatch(t *testing.T) {
	s := Empty()
	q := s.AddQuestion()

	label := "T-shirt size"
	typ := QuestionSelect
	opts := []string{"S", "M", "L"}
	got, err := s.UpdateQuestion(q.ID, QuestionPatch{Label: &label, Type: &typ, Options: &opts})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Label != label || got.Type != QuestionSelect || len(got.Options) != 3 {
		t.Fatalf("unexpected question %+v", got)
	}

	required := true
	got, err = s.UpdateQuestion(q.ID, QuestionPatch{Required: &required})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Required || got.Label != label || len(got.Options) != 3 {
		t.Fatalf("partial patch lost fields: %+v", got)
	}

	text := QuestionText
	got, _ = s.UpdateQuestion(q.ID, QuestionPatch{Type: &text})
	if got.Options != nil {
		t.Fatalf("options kept after leaving select: %v", got.Options)
	}

	if _, err := s.UpdateQuestion("missing", QuestionPatch{Label: &label}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	bad := "radio"
	if _, err := s.UpdateQuestion(q.ID, QuestionPatch{Type: &bad}); !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("expected ErrInvalidQuestionType, got %v", err)
	}
}

func TestDeleteQuestionKeepsOrder(t *testing.T) {
	s := Empty()
	a := s.AddQuestion()
	b := s.AddQuestion()
	c := s.AddQuestion()

	if err := s.DeleteQuestion(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.CustomQuestions) != 2 || s.CustomQuestions[0].ID != a.ID || s.CustomQuestions[1].ID != c.ID {
		t.Fatalf("unexpected questions %+v", s.CustomQuestions)
	}
	if err := s.DeleteQuestion(b.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := Schema{
		PersonalFields:  []string{FieldName},
		CustomQuestions: []Question{{ID: "a", Label: "Size", Type: QuestionSelect, Options: []string{"S"}}},
	}
	c := s.Clone()
	c.PersonalFields[0] = FieldEmail
	c.CustomQuestions[0].Options[0] = "XL"
	if s.PersonalFields[0] != FieldName || s.CustomQuestions[0].Options[0] != "S" {
		t.Fatal("clone shares memory with the original")
	}
}
