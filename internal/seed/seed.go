package seed

import (
	"fmt"
	"log"
	"time"
	"unicode"

	"taskhive/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumOrders   int
	ShouldClean bool
}

var catalogFixture = map[string][]string{
	"web-development":  {"Landing Page", "REST API", "Full-Stack App", "Bug Fixing"},
	"design":           {"Logo Design", "Brand Identity", "UI Mockups"},
	"writing":          {"Blog Post", "Technical Documentation", "Copywriting"},
	"marketing":        {"SEO Audit", "Ad Campaign Setup", "Social Media Plan"},
	"data-engineering": {"ETL Pipeline", "Dashboard Build", "Data Cleanup"},
}

var planFixture = []models.SubscriptionPlan{
	{Name: "Starter", PricePerMo: 900, MaxProposals: 10},
	{Name: "Pro", PricePerMo: 2900, MaxProposals: 50},
	{Name: "Agency", PricePerMo: 9900, MaxProposals: 250},
}

// Seed populates the database with demo marketplace data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d orders...", opts.NumUsers, opts.NumOrders)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db)

	services, err := createCatalog(db)
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	log.Printf("✓ %d catalog services available", len(services))

	if err := createPlans(db); err != nil {
		return fmt.Errorf("failed to create plans: %w", err)
	}
	log.Printf("✓ %d subscription plans available", len(planFixture))

	clients, providers, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d clients and %d providers created", len(clients), len(providers))

	if err := createOrders(f, clients, providers, services, opts.NumOrders); err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}
	log.Printf("✓ %d orders created", opts.NumOrders)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE reviews, payments, messages, chat_rooms, proposals, orders,
		user_subscriptions, subscription_plans, device_tokens, admin_actions,
		services, service_categories, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createCatalog(db *gorm.DB) ([]models.Service, error) {
	var services []models.Service
	for slug, names := range catalogFixture {
		category := models.ServiceCategory{Name: titleFromSlug(slug), Slug: slug}
		if err := db.Where(models.ServiceCategory{Slug: slug}).
			FirstOrCreate(&category).Error; err != nil {
			return nil, err
		}
		for _, name := range names {
			svc := models.Service{
				CategoryID: category.ID,
				Name:       name,
				BasePrice:  int64(5000 + len(name)*700),
			}
			if err := db.Where(models.Service{CategoryID: category.ID, Name: name}).
				FirstOrCreate(&svc).Error; err != nil {
				return nil, err
			}
			services = append(services, svc)
		}
	}
	return services, nil
}

func createPlans(db *gorm.DB) error {
	for _, plan := range planFixture {
		p := plan
		if err := db.Where(models.SubscriptionPlan{Name: p.Name}).
			FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(f *Factory, total int) ([]*models.User, []*models.User, error) {
	if total < 4 {
		total = 4
	}

	var clients, providers []*models.User
	for i := 0; i < total/2; i++ {
		client, err := f.CreateUser(models.RoleClient)
		if err != nil {
			return nil, nil, err
		}
		clients = append(clients, client)
	}
	for i := 0; i < total-total/2; i++ {
		provider, err := f.CreateUser(models.RoleProvider)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, provider)
	}
	return clients, providers, nil
}

// createOrders spreads orders across the status machine: roughly a third
// stay pending with open proposals, a third get accepted with a chat
// backlog, and a third run to completion with a review.
func createOrders(f *Factory, clients, providers []*models.User, services []models.Service, total int) error {
	for i := 0; i < total; i++ {
		client := clients[f.r.Intn(len(clients))]
		svc := services[f.r.Intn(len(services))]

		order, err := f.CreateOrder(client, &svc)
		if err != nil {
			return err
		}

		provider := providers[f.r.Intn(len(providers))]
		proposal, err := f.CreateProposal(order, provider)
		if err != nil {
			return err
		}

		switch i % 3 {
		case 0:
			// stays pending
		case 1:
			room, err := f.AcceptProposal(order, proposal)
			if err != nil {
				return err
			}
			for m := 0; m < f.r.Intn(6)+2; m++ {
				sender := order.ClientID
				if m%2 == 1 {
					sender = proposal.ProviderID
				}
				if _, err := f.CreateMessage(room, sender); err != nil {
					return err
				}
			}
		case 2:
			if _, err := f.AcceptProposal(order, proposal); err != nil {
				return err
			}
			now := time.Now().UTC()
			order.Status = models.OrderStatusCompleted
			order.CompletedAt = &now
			if err := f.db.Save(order).Error; err != nil {
				return err
			}
			if _, err := f.CreateReview(order, order.ClientID); err != nil {
				return err
			}
		}
	}
	return nil
}

func titleFromSlug(slug string) string {
	out := make([]rune, 0, len(slug))
	upper := true
	for _, r := range slug {
		if r == '-' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper {
			out = append(out, unicode.ToUpper(r))
			upper = false
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
