package formschema

import (
	"errors"
	"reflect"
	"testing"
)

func sampleSchema() Schema {
	return Schema{
		PersonalFields: []string{FieldName, FieldStudentID},
		CustomQuestions: []Question{
			{ID: "q-size", Label: "T-shirt size", Type: QuestionSelect, Required: true, Options: []string{"S", "M"}},
			{ID: "q-diet", Label: "Dietary needs", Type: QuestionTextarea},
		},
	}
}

func TestMissingRequiredNamesEveryGap(t *testing.T) {
	s := sampleSchema()
	missing := MissingRequired(s, map[string]string{FieldName: "Mei"}, map[string]string{"q-size": "  "})
	want := []string{"Student ID", "T-shirt size"}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("got %v, want %v", missing, want)
	}

	complete := MissingRequired(s,
		map[string]string{FieldName: "Mei", FieldStudentID: "B1234"},
		map[string]string{"q-size": "M"})
	if len(complete) != 0 {
		t.Fatalf("expected nothing missing, got %v", complete)
	}
}

func TestSnapshotIsPointInTime(t *testing.T) {
	s := sampleSchema()
	profile := map[string]string{FieldName: "Mei", FieldStudentID: "B1234", FieldPhone: "0912"}
	snap := Snapshot(s, profile)

	profile[FieldName] = "Mei Lin"
	if snap[FieldName] != "Mei" {
		t.Fatalf("snapshot followed the profile: %q", snap[FieldName])
	}
	if _, ok := snap[FieldPhone]; ok {
		t.Fatal("snapshot copied an unselected field")
	}
}

func TestCleanAnswers(t *testing.T) {
	s := sampleSchema()

	got, err := CleanAnswers(s, map[string]string{"q-size": " M ", "q-diet": ""})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]string{"q-size": "M"}) {
		t.Fatalf("unexpected answers %v", got)
	}

	if _, err := CleanAnswers(s, map[string]string{"q-gone": "x"}); !errors.Is(err, ErrUnknownAnswer) {
		t.Fatalf("expected ErrUnknownAnswer, got %v", err)
	}
	if _, err := CleanAnswers(s, map[string]string{"q-size": "XXL"}); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestMergeAnswersKeepsOrphans(t *testing.T) {
	prev := map[string]string{"q-old": "kept", "q-size": "S"}
	got := MergeAnswers(prev, map[string]string{"q-size": "M"})
	want := map[string]string{"q-old": "kept", "q-size": "M"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
