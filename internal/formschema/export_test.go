package formschema

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestColumnsFollowSchemaOrder(t *testing.T) {
	s := Schema{
		PersonalFields: []string{FieldSchool, FieldName},
		CustomQuestions: []Question{
			{ID: "b", Label: "Second"},
			{ID: "a", Label: "First"},
		},
	}
	want := []string{"School", "Name", "Second", "First"}
	if got := Columns(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteCSVQuotesEveryCell(t *testing.T) {
	s := Schema{
		PersonalFields: []string{FieldName, FieldEmail},
		CustomQuestions: []Question{
			{ID: "q1", Label: "Team"},
			{ID: "q2", Label: `Say "hi"`},
		},
	}
	records := []Record{
		{
			Snapshot: map[string]string{FieldName: "Mei", FieldEmail: "mei@example.com"},
			Answers:  map[string]string{"q1": "Red, Blue", "orphan": "ignored"},
		},
		{
			Snapshot: map[string]string{FieldName: "Kai"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatal("missing BOM")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\ufeff"), "\r\n"), "\r\n")
	want := []string{
		`"Name","Email","Team","Say ""hi"""`,
		`"Mei","mei@example.com","Red, Blue",""`,
		`"Kai","","",""`,
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got\n%q\nwant\n%q", lines, want)
	}
}
