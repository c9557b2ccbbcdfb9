package database

import "taskhive/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.Order{},
		&models.Proposal{},
		&models.Payment{},
		&models.Review{},
		&models.ChatRoom{},
		&models.Message{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.DeviceToken{},
		&models.AdminAction{},
	}
}
