package domain

import (
	"testing"
	"time"
)

func TestIsRecurringService(t *testing.T) {
	for _, serviceType := range []string{"Fibre", "LTE", "ADSL", "Web Hosting", "Domain Hosting"} {
		if !IsRecurringService(serviceType) {
			t.Errorf("Expected %s to be recurring", serviceType)
		}
	}

	if IsRecurringService("Consultation") {
		t.Error("Expected Consultation to be non-recurring")
	}
}

func TestNewSubscriptionFromOrder(t *testing.T) {
	order := NewOrder(testClient(), "Fibre", "Fibre 100/100", "", "admin")
	order.Status = OrderStatusCompleted

	subscription := NewSubscriptionFromOrder(order, 599)

	if subscription.ClientID != order.Client.Email {
		t.Errorf("Expected client id %s, got %s", order.Client.Email, subscription.ClientID)
	}
	if subscription.OrderID != order.ID {
		t.Errorf("Expected order id %s, got %s", order.ID, subscription.OrderID)
	}
	if subscription.Status != SubscriptionStatusActive {
		t.Errorf("Expected status %s, got %s", SubscriptionStatusActive, subscription.Status)
	}
	if subscription.Cycle != BillingCycleMonthly {
		t.Errorf("Expected monthly cycle, got %s", subscription.Cycle)
	}
	if subscription.RenewalDate == nil || !subscription.RenewalDate.After(time.Now()) {
		t.Error("Expected a future renewal date")
	}
}

func TestNewSubscriptionFromOrder_HostingBillsAnnually(t *testing.T) {
	order := NewOrder(testClient(), "Web Hosting", "Hosting Basic", "", "admin")

	subscription := NewSubscriptionFromOrder(order, 129)

	if subscription.Cycle != BillingCycleAnnually {
		t.Errorf("Expected annual cycle, got %s", subscription.Cycle)
	}
}

func TestSubscription_SetStatusClearsRenewalOnTerminal(t *testing.T) {
	order := NewOrder(testClient(), "Fibre", "Fibre 100/100", "", "admin")
	subscription := NewSubscriptionFromOrder(order, 599)

	subscription.SetStatus(SubscriptionStatusPendingCancellation)
	if subscription.RenewalDate == nil {
		t.Error("Expected pending cancellation to keep the renewal date")
	}

	subscription.SetStatus(SubscriptionStatusCancelled)
	if subscription.RenewalDate != nil {
		t.Error("Expected cancellation to clear the renewal date")
	}
}
