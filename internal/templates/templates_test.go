package templates

import (
	"strings"
	"testing"
	"time"
)

func TestInvitationEmailEscapesInput(t *testing.T) {
	email, err := InvitationEmail("friend@example.com", InvitationData{
		EventTitle:  "<script>x</script> Fair",
		InviterName: "Mei",
		Deadline:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Link:        "https://hub.example.com/events/1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(email.HTML, "<script>") {
		t.Fatal("event title was not escaped")
	}
	if !strings.Contains(email.HTML, "2026-05-01 12:00 UTC") {
		t.Fatalf("deadline missing from %q", email.HTML)
	}
	if email.To != "friend@example.com" || !strings.HasPrefix(email.Subject, "Invitation: ") {
		t.Fatalf("unexpected email %+v", email)
	}
}

func TestEventCardOptionalFields(t *testing.T) {
	now := time.Now()
	card := EventCard("U1", "Fair", nil, "", now, now, "https://hub.example.com")
	if len(card.Fields) != 2 || card.CoverURL != "" {
		t.Fatalf("unexpected card %+v", card)
	}
	cover := "https://img.example.com/c.jpg"
	card = EventCard("U1", "Fair", &cover, "Hall A", now, now, "https://hub.example.com")
	if len(card.Fields) != 3 || card.CoverURL != cover {
		t.Fatalf("unexpected card %+v", card)
	}
}
