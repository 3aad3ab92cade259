package service

import (
	"fmt"

	"finlit-service/internal/catalog"
	"finlit-service/internal/models"
)

// CatalogService serves read-only content views.
type CatalogService struct {
	Catalog *catalog.Catalog
}

func NewCatalogService(cat *catalog.Catalog) *CatalogService {
	return &CatalogService{Catalog: cat}
}

func (s *CatalogService) Topics() []models.Topic {
	return s.Catalog.Topics()
}

func (s *CatalogService) Topic(id int) (models.Topic, bool) {
	return s.Catalog.Topic(id)
}

func (s *CatalogService) SubLevel(topicID int, subLevelID string) (models.SubLevel, bool) {
	return s.Catalog.SubLevel(topicID, subLevelID)
}

// DisplayLabel names a topic/sublevel for presentation. A catalog miss
// degrades to a generic label instead of failing the caller.
func (s *CatalogService) DisplayLabel(topicID int, subLevelID string) string {
	topic, ok := s.Catalog.Topic(topicID)
	if !ok {
		return fmt.Sprintf("Topic %d - Level %s", topicID, subLevelID)
	}
	for _, sub := range topic.SubLevels {
		if sub.ID == subLevelID {
			return fmt.Sprintf("%s - %s", topic.Title, sub.Title)
		}
	}
	return fmt.Sprintf("%s - Level %s", topic.Title, subLevelID)
}
