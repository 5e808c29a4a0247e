package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/elisajuliana12/finzense/config"
	"github.com/elisajuliana12/finzense/controllers"
	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/middleware"
	"github.com/elisajuliana12/finzense/services"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/gorilla/mux"
)

// healthHandler отвечает на проверку работоспособности
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Инициализируем сервис email
	emailService := services.NewEmailService(cfg)

	// Создаем роутер
	router := mux.NewRouter()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, emailService, cfg)
	transactionController := controllers.NewTransactionController(db, emailService)
	budgetController := controllers.NewBudgetController(db, emailService)
	savingController := controllers.NewSavingController(db)
	summaryController := controllers.NewSummaryController(db, emailService)
	notificationController := controllers.NewNotificationController(db)
	categoryController := controllers.NewCategoryController(db)

	// Ограничение частоты запросов по IP
	limiter := utils.NewRateLimiter(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	router.Use(middleware.Recovery)
	router.Use(middleware.CORSMiddleware)
	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Публичные маршруты для аутентификации
	router.HandleFunc("/api/auth/register", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/login", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)
	protected.Use(middleware.RateLimit(limiter, cfg.RateLimit.Requests))

	// Профиль пользователя
	protected.HandleFunc("/profile", authController.Profile).Methods("GET", "PUT")

	// Маршруты для работы с операциями
	protected.HandleFunc("/transactions", transactionController.Create).Methods("POST")
	protected.HandleFunc("/transactions", transactionController.List).Methods("GET")
	protected.HandleFunc("/transactions/{id}", transactionController.Update).Methods("PUT")
	protected.HandleFunc("/transactions/{id}", transactionController.Delete).Methods("DELETE")
	protected.HandleFunc("/balance", transactionController.Balance).Methods("GET")

	// Маршруты для работы с бюджетами
	protected.HandleFunc("/budgets", budgetController.Create).Methods("POST")
	protected.HandleFunc("/budgets", budgetController.List).Methods("GET")
	protected.HandleFunc("/budgets/{id}", budgetController.Update).Methods("PUT")
	protected.HandleFunc("/budgets/{id}", budgetController.Delete).Methods("DELETE")

	// Маршруты для работы с целями накопления
	protected.HandleFunc("/savings", savingController.Create).Methods("POST")
	protected.HandleFunc("/savings", savingController.List).Methods("GET")
	protected.HandleFunc("/savings/{id}", savingController.Adjust).Methods("PUT")
	protected.HandleFunc("/savings/{id}", savingController.Delete).Methods("DELETE")

	// Сводка, уведомления и справочник категорий
	protected.HandleFunc("/summary", summaryController.Summary).Methods("GET")
	protected.HandleFunc("/notifications", notificationController.List).Methods("GET")
	protected.HandleFunc("/categories", categoryController.List).Methods("GET")

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
