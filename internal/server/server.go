package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"UniTrack-backend/internal/database"
)

// MyServer holds the database instance used by route handlers.
type MyServer struct {
	DB *database.DBinstanceStruct
}

// NewServer construct new http.Server instance bound to the configured port
func NewServer() (*http.Server, error) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		return nil, fmt.Errorf("database failed to initialize: %w", err)
	}

	s := &MyServer{DB: db}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server, nil
}
