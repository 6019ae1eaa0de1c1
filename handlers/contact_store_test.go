package handlers

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestContactStore_List(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE user_id = $1 AND name ILIKE`)).
		WithArgs(7, "", "", "", 0, 100).
		WillReturnRows(contactRows().
			AddRow(1, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "", time.Now(), time.Now(), 7).
			AddRow(2, "Peter", "Parker", "peter@example.com", "+380507654321", birthday, "neighbor", time.Now(), time.Now(), 7))

	contacts, err := store.List(context.Background(), 7, ContactFilter{Limit: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(contacts) != 2 {
		t.Fatalf("Expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].Name != "Wade" {
		t.Errorf("Expected first contact 'Wade', got '%s'", contacts[0].Name)
	}
	if contacts[1].Info != "neighbor" {
		t.Errorf("Expected info 'neighbor', got '%s'", contacts[1].Info)
	}
}

func TestContactStore_ListEmpty(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE user_id = $1`)).
		WithArgs(7, "", "", "", 0, 100).
		WillReturnRows(contactRows())

	contacts, err := store.List(context.Background(), 7, ContactFilter{Limit: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// The empty result must serialize as [] rather than null
	if contacts == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(contacts) != 0 {
		t.Errorf("Expected no contacts, got %d", len(contacts))
	}
}

func TestContactStore_ListFilters(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE user_id = $1`)).
		WithArgs(7, "wa", "", "wilson", 10, 25).
		WillReturnRows(contactRows())

	_, err := store.List(context.Background(), 7, ContactFilter{
		Name:  "wa",
		Email: "wilson",
		Skip:  10,
		Limit: 25,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := tc.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Filter arguments not passed through: %v", err)
	}
}

func TestContactStore_GetByID(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE id = $1 AND user_id = $2`)).
		WithArgs(5, 7).
		WillReturnRows(contactRows().
			AddRow(5, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "", time.Now(), time.Now(), 7))

	contact, err := store.GetByID(context.Background(), 7, 5)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if contact == nil {
		t.Fatal("Expected contact, got nil")
	}
	if contact.ID != 5 {
		t.Errorf("Expected contact ID 5, got %d", contact.ID)
	}
}

func TestContactStore_GetByID_OtherUser(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)

	// The query scopes by user, so another user's contact yields no rows
	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE id = $1 AND user_id = $2`)).
		WithArgs(5, 99).
		WillReturnRows(contactRows())

	contact, err := store.GetByID(context.Background(), 99, 5)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if contact != nil {
		t.Errorf("Expected nil for another user's contact, got %+v", contact)
	}
}

func TestContactStore_Create(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO contacts`)).
		WithArgs("Wade", "Wilson", "wade@example.com", "+380501234567", sqlmock.AnyArg(), "", 7).
		WillReturnRows(contactRows().
			AddRow(1, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "", time.Now(), time.Now(), 7))

	contact, err := store.Create(context.Background(), 7, ContactData{
		Name:     "Wade",
		Surname:  "Wilson",
		Email:    "wade@example.com",
		Phone:    "+380501234567",
		Birthday: birthday,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if contact.ID != 1 {
		t.Errorf("Expected contact ID 1, got %d", contact.ID)
	}
	if contact.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", contact.UserID)
	}
}

func TestContactStore_Update_KeepsInfoWhenNil(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectBegin()
	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(5, 7).
		WillReturnRows(contactRows().
			AddRow(5, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "old note", time.Now(), time.Now(), 7))

	// Nil Info carries the stored value into the update
	tc.Mock.ExpectQuery(regexp.QuoteMeta(`UPDATE contacts`)).
		WithArgs("Wade", "Wilson", "new@example.com", "+380501234567", sqlmock.AnyArg(), "old note", 5, 7).
		WillReturnRows(contactRows().
			AddRow(5, "Wade", "Wilson", "new@example.com", "+380501234567", birthday, "old note", time.Now(), time.Now(), 7))
	tc.Mock.ExpectCommit()

	contact, err := store.Update(context.Background(), 7, 5, ContactData{
		Name:     "Wade",
		Surname:  "Wilson",
		Email:    "new@example.com",
		Phone:    "+380501234567",
		Birthday: birthday,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if contact.Email != "new@example.com" {
		t.Errorf("Expected updated email, got '%s'", contact.Email)
	}
	if contact.Info != "old note" {
		t.Errorf("Expected info to be kept, got '%s'", contact.Info)
	}
}

func TestContactStore_Update_NotFound(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)

	tc.Mock.ExpectBegin()
	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(5, 7).
		WillReturnRows(contactRows())
	tc.Mock.ExpectCommit()

	contact, err := store.Update(context.Background(), 7, 5, ContactData{Name: "Wade"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if contact != nil {
		t.Errorf("Expected nil for missing contact, got %+v", contact)
	}
}

func TestContactStore_Delete(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectBegin()
	tc.Mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(5, 7).
		WillReturnRows(contactRows().
			AddRow(5, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "", time.Now(), time.Now(), 7))
	tc.Mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM contacts WHERE id = $1 AND user_id = $2`)).
		WithArgs(5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	tc.Mock.ExpectCommit()

	contact, err := store.Delete(context.Background(), 7, 5)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if contact == nil || contact.ID != 5 {
		t.Errorf("Expected deleted contact to be returned, got %+v", contact)
	}
}

func TestContactStore_Exists(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(7, "wade@example.com", "+380501234567").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.Exists(context.Background(), 7, "wade@example.com", "+380501234567")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected exists to be true")
	}
}

func TestContactStore_UpcomingBirthdays(t *testing.T) {
	tc := SetupTest(t)
	defer tc.Cleanup()

	store := NewContactStore(tc.DB)
	birthday := time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)

	tc.Mock.ExpectQuery(regexp.QuoteMeta(`date_part('doy', birthday)`)).
		WithArgs(7, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(contactRows().
			AddRow(1, "Wade", "Wilson", "wade@example.com", "+380501234567", birthday, "", time.Now(), time.Now(), 7))

	contacts, err := store.UpcomingBirthdays(context.Background(), 7, 7)
	if err != nil {
		t.Fatalf("UpcomingBirthdays failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("Expected 1 contact, got %d", len(contacts))
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	d := NewDate(time.Date(1991, 2, 4, 15, 30, 0, 0, time.UTC))

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"1991-02-04"` {
		t.Errorf(`Expected "1991-02-04", got %s`, data)
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"1991-02-04"`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if d.Year() != 1991 || d.Month() != time.February || d.Day() != 4 {
		t.Errorf("Expected 1991-02-04, got %v", d.Time)
	}

	if err := json.Unmarshal([]byte(`"04.02.1991"`), &d); err == nil {
		t.Error("Expected error for wrong date format")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(1991, 2, 4, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan from time.Time failed: %v", err)
	}
	if d.Day() != 4 {
		t.Errorf("Expected day 4, got %d", d.Day())
	}

	if err := d.Scan([]byte("1991-02-04")); err != nil {
		t.Fatalf("Scan from bytes failed: %v", err)
	}

	if err := d.Scan(12345); err == nil {
		t.Error("Expected error scanning unsupported type")
	}
}
