package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/app"
	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/config"
	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/controllers"
	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/routes"
	"github.com/poofware/mono-repo/backend/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()
	defer cfg.Close()

	// 2) Core application (DB, services)
	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize app")
	}
	defer application.Close()

	// 3) Controllers
	healthCtrl := controllers.NewHealthController(application)
	bookCtrl := controllers.NewBookController(application.BookService)

	// 4) Router
	router := mux.NewRouter()
	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Books, bookCtrl.CreateBookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Books, bookCtrl.ListBooksHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Book, bookCtrl.GetBookHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Book, bookCtrl.UpdateBookHandler).Methods(http.MethodPatch)
	router.HandleFunc(routes.Book, bookCtrl.DeleteBookHandler).Methods(http.MethodDelete)
	router.HandleFunc(routes.BookTouch, bookCtrl.TouchBookHandler).Methods(http.MethodPost)

	// 5) CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, c.Handler(router)); err != nil {
		utils.Logger.Fatal("Server error:", err)
	}
}
