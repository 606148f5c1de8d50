package services

import (
	"grivyzom/internal/domain"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
)

// GalleryService reads the community gallery. Listing failures degrade to
// empty collections the same way the catalog does.
type GalleryService struct {
	Gallery *repos.GalleryRepo
}

func NewGalleryService(gallery *repos.GalleryRepo) *GalleryService {
	return &GalleryService{Gallery: gallery}
}

func (s *GalleryService) Categories() []domain.GalleryCategory {
	out, err := s.Gallery.Categories()
	if err != nil {
		applog.Job("gallery.categories.fail", err, nil)
		return []domain.GalleryCategory{}
	}
	return out
}

func (s *GalleryService) Images(categorySlug string, featuredOnly bool, limit int) []domain.GalleryImage {
	out, err := s.Gallery.Images(categorySlug, featuredOnly, limit)
	if err != nil {
		applog.Job("gallery.images.fail", err, nil)
		return []domain.GalleryImage{}
	}
	return out
}

func (s *GalleryService) Image(id string) (domain.GalleryImage, error) {
	return s.Gallery.Image(id)
}
