package domain

import (
	"fmt"
	"strings"
	"testing"
)

func testClient() Client {
	return Client{
		Name:          "Jane Smith",
		Email:         "jane@example.com",
		ContactNumber: "0821234567",
		Address:       "12 Main Road, Cape Town",
	}
}

func TestNewOrder(t *testing.T) {
	client := testClient()

	order := NewOrder(client, "Fibre", "Fibre 100/100", "install ASAP", "admin")

	if order.Status != OrderStatusNew {
		t.Errorf("Expected status %s, got %s", OrderStatusNew, order.Status)
	}

	if order.Client.Email != client.Email {
		t.Errorf("Expected client email %s, got %s", client.Email, order.Client.Email)
	}

	if order.Version != 1 {
		t.Errorf("Expected version 1, got %d", order.Version)
	}

	if len(order.ActivityLog) != 1 {
		t.Fatalf("Expected 1 activity entry, got %d", len(order.ActivityLog))
	}

	expected := fmt.Sprintf("Order created by %s.", client.Name)
	if order.ActivityLog[0].Text != expected {
		t.Errorf("Expected activity text %q, got %q", expected, order.ActivityLog[0].Text)
	}
}

func TestOrder_ApplyStatusChange(t *testing.T) {
	order := NewOrder(testClient(), "Fibre", "Fibre 100/100", "", "admin")

	status := OrderStatusUnderReview
	changed := order.Apply(OrderUpdate{Status: &status}, "admin")

	if changed != 1 {
		t.Errorf("Expected 1 changed field, got %d", changed)
	}

	if order.Status != OrderStatusUnderReview {
		t.Errorf("Expected status %s, got %s", OrderStatusUnderReview, order.Status)
	}

	last := order.ActivityLog[len(order.ActivityLog)-1]
	if last.Text != "Status changed from NEW to UNDER_REVIEW." {
		t.Errorf("Unexpected activity text %q", last.Text)
	}
}

func TestOrder_ApplyPerFieldEntries(t *testing.T) {
	order := NewOrder(testClient(), "Fibre", "Fibre 100/100", "", "admin")
	before := len(order.ActivityLog)

	name := "Jane Doe"
	contact := "0837654321"
	notes := "client called"
	ref := "VISP-8812"
	changed := order.Apply(OrderUpdate{
		ClientName:          &name,
		ClientContactNumber: &contact,
		Notes:               &notes,
		VISPReferenceID:     &ref,
	}, "staff")

	if changed != 4 {
		t.Errorf("Expected 4 changed fields, got %d", changed)
	}

	if len(order.ActivityLog) != before+4 {
		t.Fatalf("Expected %d activity entries, got %d", before+4, len(order.ActivityLog))
	}

	texts := make([]string, 0, 4)
	for _, entry := range order.ActivityLog[before:] {
		texts = append(texts, entry.Text)
	}
	joined := strings.Join(texts, "\n")

	for _, want := range []string{
		`Client name updated from "Jane Smith" to "Jane Doe".`,
		"Client contact number updated.",
		"Notes updated.",
		"VISP Reference ID updated to VISP-8812.",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected activity entry %q, got:\n%s", want, joined)
		}
	}
}

func TestOrder_ApplyNoOp(t *testing.T) {
	order := NewOrder(testClient(), "Fibre", "Fibre 100/100", "some notes", "admin")
	before := len(order.ActivityLog)
	updatedAt := order.UpdatedAt

	sameName := order.Client.Name
	sameNotes := order.Notes
	sameStatus := order.Status
	changed := order.Apply(OrderUpdate{
		ClientName: &sameName,
		Notes:      &sameNotes,
		Status:     &sameStatus,
	}, "admin")

	if changed != 0 {
		t.Errorf("Expected 0 changed fields, got %d", changed)
	}

	if len(order.ActivityLog) != before {
		t.Errorf("Expected activity log untouched, grew from %d to %d", before, len(order.ActivityLog))
	}

	if !order.UpdatedAt.Equal(updatedAt) {
		t.Error("Expected UpdatedAt to stay untouched on no-op update")
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusNew, OrderStatusUnderReview, OrderStatusSubmittedToVISP,
		OrderStatusCompleted, OrderStatusCancelled,
	} {
		if !status.Valid() {
			t.Errorf("Expected status %s to be valid", status)
		}
	}

	if OrderStatus("PENDING").Valid() {
		t.Error("Expected unknown status to be invalid")
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	if !OrderStatusCompleted.Terminal() || !OrderStatusCancelled.Terminal() {
		t.Error("Expected COMPLETED and CANCELLED to be terminal")
	}

	if OrderStatusNew.Terminal() || OrderStatusUnderReview.Terminal() || OrderStatusSubmittedToVISP.Terminal() {
		t.Error("Expected open statuses to be non-terminal")
	}
}
