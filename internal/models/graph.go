package models

import "taskhive/internal/softdelete"

// The ownership graph is static and registered once, before any lifecycle
// operation can run. Cascade edges follow containment (an order's proposals
// die with the order); protect edges guard records other aggregates still
// reference.
func init() {
	softdelete.Register(
		// Order owns its workflow artifacts.
		softdelete.Edge{Owner: &Order{}, Dependent: &Proposal{}, ForeignKey: "order_id", Kind: softdelete.Cascade},
		softdelete.Edge{Owner: &Order{}, Dependent: &Payment{}, ForeignKey: "order_id", Kind: softdelete.Cascade},
		softdelete.Edge{Owner: &Order{}, Dependent: &Review{}, ForeignKey: "order_id", Kind: softdelete.Cascade},
		softdelete.Edge{Owner: &Order{}, Dependent: &ChatRoom{}, ForeignKey: "order_id", Kind: softdelete.Cascade},

		// Rooms own their messages, users own their device registrations.
		softdelete.Edge{Owner: &ChatRoom{}, Dependent: &Message{}, ForeignKey: "room_id", Kind: softdelete.Cascade},
		softdelete.Edge{Owner: &User{}, Dependent: &DeviceToken{}, ForeignKey: "user_id", Kind: softdelete.Cascade},

		// Records other aggregates still point at block removal.
		softdelete.Edge{Owner: &SubscriptionPlan{}, Dependent: &UserSubscription{}, ForeignKey: "plan_id", Kind: softdelete.Protect},
		softdelete.Edge{Owner: &ServiceCategory{}, Dependent: &Service{}, ForeignKey: "category_id", Kind: softdelete.Protect},
		softdelete.Edge{Owner: &User{}, Dependent: &Order{}, ForeignKey: "client_id", Kind: softdelete.Protect},
		softdelete.Edge{Owner: &User{}, Dependent: &Proposal{}, ForeignKey: "provider_id", Kind: softdelete.Protect},
	)
}
