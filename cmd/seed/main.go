// Command main runs the database seeder for TaskHive.
package main

import (
	"flag"
	"log"

	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 40, "Number of users to create (split between clients and providers)")
	numOrders := flag.Int("orders", 120, "Number of orders to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d orders, clean=%v\n", *numUsers, *numOrders, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumOrders:   *numOrders,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
