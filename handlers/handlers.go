package handlers

import (
	"github.com/mcwa24/bilbord-expo/database"
)

// DB is the shared store handle; set once at startup.
var DB *database.DB

// InitializeHandlers wires the handlers to the database.
func InitializeHandlers(db *database.DB) {
	DB = db
}
