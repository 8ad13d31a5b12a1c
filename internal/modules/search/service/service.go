package search

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const eventsIndex = "events"

type MeiliSearchService interface {
	IndexEvent(event *entity.Event) error
	DeleteEvent(id string) error
	SearchEvents(query string, q Query) (*Result, error)
	GenerateSearchToken() (string, error)
}

// Query narrows a full-text search over public events.
type Query struct {
	Category string
	SortBy   string
	Page     int
	Limit    int
}

type Result struct {
	IDs   []uuid.UUID
	Total int64
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager, masterKey string) MeiliSearchService {
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "EventSearchSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens for event search",
		Name:        "EventSearchSigner",
		Actions:     []string{"search"},
		Indexes:     []string{eventsIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"is_public", "categories"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(eventsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update events filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "views", "deadline"}
	if _, err := s.client.Index(eventsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update events sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliEventDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Categories  []string `json:"categories"`
	IsPublic    bool     `json:"is_public"`
	Views       int64    `json:"views"`
	Deadline    int64    `json:"deadline"`
	CreatedAt   int64    `json:"created_at"`
}

// cleanContentForIndex strips markup so only readable words are indexed.
func (s *meiliSearchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexEvent(event *entity.Event) error {
	doc := meiliEventDoc{
		ID:          event.ID.String(),
		Title:       event.Title,
		Description: s.cleanContentForIndex(event.Description),
		Location:    event.Location,
		Categories:  []string(event.Categories),
		IsPublic:    event.IsPublic,
		Views:       event.Views,
		Deadline:    event.Deadline.Unix(),
		CreatedAt:   event.CreatedAt.Unix(),
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}

	task, err := s.client.Index(eventsIndex).AddDocuments([]meiliEventDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed event %s, task id: %d", event.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteEvent(id string) error {
	_, err := s.client.Index(eventsIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchEvents(query string, q Query) (*Result, error) {
	req := &meilisearch.SearchRequest{
		Filter:               BuildFilter(q.Category),
		Sort:                 SortRules(q.SortBy),
		Limit:                int64(q.Limit),
		Offset:               int64((q.Page - 1) * q.Limit),
		AttributesToRetrieve: []string{"id"},
	}

	raw, err := s.client.Index(eventsIndex).SearchRaw(query, req)
	if err != nil {
		return nil, err
	}
	return decodeHits(*raw)
}

func (s *meiliSearchService) GenerateSearchToken() (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		eventsIndex: map[string]any{"filter": "is_public = true"},
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

// BuildFilter always restricts to public events.
func BuildFilter(category string) string {
	filter := "is_public = true"
	if category != "" {
		filter += fmt.Sprintf(" AND categories = %q", category)
	}
	return filter
}

func SortRules(sortBy string) []string {
	switch sortBy {
	case "popular":
		return []string{"views:desc"}
	case "deadline":
		return []string{"deadline:asc"}
	default:
		return []string{"created_at:desc"}
	}
}

func decodeHits(raw []byte) (*Result, error) {
	var body struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
		EstimatedTotalHits int64 `json:"estimatedTotalHits"`
		TotalHits          int64 `json:"totalHits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	res := &Result{Total: body.EstimatedTotalHits}
	if body.TotalHits > 0 {
		res.Total = body.TotalHits
	}
	for _, h := range body.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		res.IDs = append(res.IDs, id)
	}
	return res, nil
}

func strPtr(s string) *string {
	return &s
}
