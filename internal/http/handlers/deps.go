package handlers

import (
	"github.com/jmoiron/sqlx"

	"grivyzom/internal/config"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	StoreHandler   *StoreHandler
	CartHandler    *CartHandler
	GrovsHandler   *GrovsHandler
	EventHandler   *EventHandler
	ForumHandler   *ForumHandler
	GalleryHandler *GalleryHandler
	AdminHandler   *AdminHandler

	Grovs *services.GrovsService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	userRepo := auth.Users
	prodRepo := repos.NewProductRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	offerRepo := repos.NewOfferRepo(db)
	grovsRepo := repos.NewGrovsRepo(db)
	eventRepo := repos.NewEventRepo(db)
	postRepo := repos.NewPostRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	draftRepo := repos.NewDraftRepo(db)
	galleryRepo := repos.NewGalleryRepo(db)

	grovsSvc := services.NewGrovsService(grovsRepo, userRepo, eventRepo)
	catalogSvc := services.NewCatalogService(prodRepo, catRepo, offerRepo)
	cartSvc := services.NewCartService(prodRepo, orderRepo, grovsSvc, cfg.CheckoutURL)
	eventSvc := services.NewEventService(eventRepo, grovsRepo)
	forumSvc := services.NewForumService(postRepo)
	statusSvc := services.NewStatusService(cfg.StatusURL)
	gallerySvc := services.NewGalleryService(galleryRepo)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: auth},
		StoreHandler:   &StoreHandler{Catalog: catalogSvc, Status: statusSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		GrovsHandler:   &GrovsHandler{Grovs: grovsSvc},
		EventHandler:   &EventHandler{Events: eventSvc},
		ForumHandler:   &ForumHandler{Forum: forumSvc},
		GalleryHandler: &GalleryHandler{Gallery: gallerySvc},
		AdminHandler: &AdminHandler{
			Products: prodRepo,
			Offers:   offerRepo,
			Events:   eventRepo,
			Orders:   orderRepo,
			Users:    userRepo,
			Drafts:   draftRepo,
			Grovs:    grovsSvc,
		},
		Grovs: grovsSvc,
	}
}
