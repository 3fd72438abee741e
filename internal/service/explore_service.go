package service

import (
	"strings"

	"fundocs-be/internal/dto"
	"fundocs-be/pkg/catalog"
	"fundocs-be/pkg/pagination"
)

type IExploreService interface {
	Find(q dto.ExploreQuery) pagination.Page[catalog.Entry]
	Categories() []string
}

type exploreService struct {
	catalog *catalog.Catalog
}

func NewExploreService(c *catalog.Catalog) IExploreService {
	return &exploreService{catalog: c}
}

func (s *exploreService) Find(q dto.ExploreQuery) pagination.Page[catalog.Entry] {
	var cats []string
	for _, c := range strings.Split(q.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	return s.catalog.Find(catalog.Query{
		Search:     q.Search,
		Categories: cats,
		Sort:       catalog.ParseSort(q.Sort),
		Page:       q.Page,
	})
}

func (s *exploreService) Categories() []string {
	return s.catalog.Categories()
}
