package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"orangefrog/internal/database"
	"orangefrog/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createContractor(t *testing.T, repo *ContractorRepository, email string, status models.ContractorStatus) *models.Contractor {
	t.Helper()
	c, err := repo.CreateContractor(context.Background(), &models.Contractor{
		Email:        email,
		Name:         email,
		PasswordHash: "hash",
		HourlyRate:   25,
		Status:       status,
		Allergies:    []string{"peanuts", "latex"},
	})
	if err != nil {
		t.Fatalf("CreateContractor(%s) error = %v", email, err)
	}
	return c
}

func TestContractorRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewContractorRepository(db)
	ctx := context.Background()

	alice := createContractor(t, repo, "alice@example.com", models.ContractorActive)
	bob := createContractor(t, repo, "bob@example.com", models.ContractorInactive)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateContractor(ctx, &models.Contractor{
			Email:        "alice@example.com",
			Name:         "Alice Again",
			PasswordHash: "hash",
			Status:       models.ContractorPending,
		})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("CreateContractor(duplicate) error = %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := repo.GetContractorByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetContractorByEmail() error = %v", err)
		}
		if got == nil || got.ID != alice.ID {
			t.Fatalf("GetContractorByEmail() = %+v, want id %d", got, alice.ID)
		}
		if len(got.Allergies) != 2 || got.Allergies[1] != "latex" {
			t.Errorf("Allergies = %v", got.Allergies)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		got, err := repo.GetContractorByEmail(ctx, "nobody@example.com")
		if err != nil || got != nil {
			t.Errorf("GetContractorByEmail() = %v, %v, want nil, nil", got, err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateContractor(ctx, &models.Contractor{Email: "alice@example.com", Name: "A", PasswordHash: "x", Status: models.ContractorPending})
		if err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("find active", func(t *testing.T) {
		got, err := repo.FindActiveByIDs(ctx, []int64{alice.ID, bob.ID, 999})
		if err != nil {
			t.Fatalf("FindActiveByIDs() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != alice.ID {
			t.Errorf("FindActiveByIDs() = %+v, want only alice", got)
		}
	})

	t.Run("find by ids", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, []int64{bob.ID, alice.ID})
		if err != nil {
			t.Fatalf("FindByIDs() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != alice.ID {
			t.Errorf("FindByIDs() = %+v", got)
		}
		none, err := repo.FindByIDs(ctx, nil)
		if err != nil || none != nil {
			t.Errorf("FindByIDs(nil) = %v, %v", none, err)
		}
	})

	t.Run("update status", func(t *testing.T) {
		ok, err := repo.UpdateContractorStatus(ctx, bob.ID, models.ContractorActive)
		if err != nil || !ok {
			t.Fatalf("UpdateContractorStatus() = %v, %v", ok, err)
		}
		got, _ := repo.GetContractorByID(ctx, bob.ID)
		if got.Status != models.ContractorActive {
			t.Errorf("Status = %s, want active", got.Status)
		}
		ok, err = repo.UpdateContractorStatus(ctx, 999, models.ContractorActive)
		if err != nil || ok {
			t.Errorf("UpdateContractorStatus(missing) = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := repo.DeleteContractor(ctx, bob.ID)
		if err != nil || !ok {
			t.Fatalf("DeleteContractor() = %v, %v", ok, err)
		}
		all, err := repo.GetAllContractors(ctx)
		if err != nil {
			t.Fatalf("GetAllContractors() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("GetAllContractors() len = %d, want 1", len(all))
		}
	})
}

func newEvent(id string, loadIn time.Time, members map[int64]models.Membership) *models.Event {
	return &models.Event{
		ID:       id,
		Name:     "Concert " + id,
		Location: "Hall",
		LoadIn:   loadIn,
		LoadOut:  loadIn.Add(6 * time.Hour),
		Hours:    6,
		Status:   models.EventPublished,
		Members:  members,
	}
}

func TestEventRepository(t *testing.T) {
	db := openTestDB(t)
	contractors := NewContractorRepository(db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	a := createContractor(t, contractors, "a@example.com", models.ContractorActive)
	b := createContractor(t, contractors, "b@example.com", models.ContractorActive)

	loadIn := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	ev := newEvent("ev-1", loadIn, map[int64]models.Membership{
		a.ID: {Status: models.MemberInvited},
	})
	if err := repo.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if ev.Version != 1 {
		t.Fatalf("Version = %d, want 1", ev.Version)
	}

	t.Run("get round trip", func(t *testing.T) {
		got, err := repo.GetEventByID(ctx, "ev-1")
		if err != nil {
			t.Fatalf("GetEventByID() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetEventByID() = nil")
		}
		if !got.LoadIn.Equal(loadIn) {
			t.Errorf("LoadIn = %v, want %v", got.LoadIn, loadIn)
		}
		if m, ok := got.Member(a.ID); !ok || m.Status != models.MemberInvited {
			t.Errorf("Member(a) = %+v, %v", m, ok)
		}
	})

	t.Run("missing", func(t *testing.T) {
		got, err := repo.GetEventByID(ctx, "nope")
		if err != nil || got != nil {
			t.Errorf("GetEventByID(nope) = %v, %v, want nil, nil", got, err)
		}
	})

	t.Run("save bumps version", func(t *testing.T) {
		got, _ := repo.GetEventByID(ctx, "ev-1")
		decided := time.Now().UTC().Truncate(time.Second)
		got.Members[a.ID] = models.Membership{Status: models.MemberDeclined, DecidedAt: &decided}
		got.Members[b.ID] = models.Membership{Status: models.MemberInvited}
		if err := repo.SaveEvent(ctx, got); err != nil {
			t.Fatalf("SaveEvent() error = %v", err)
		}
		if got.Version != 2 {
			t.Errorf("Version = %d, want 2", got.Version)
		}

		reloaded, _ := repo.GetEventByID(ctx, "ev-1")
		if reloaded.Version != 2 {
			t.Errorf("stored Version = %d, want 2", reloaded.Version)
		}
		m := reloaded.Members[a.ID]
		if m.Status != models.MemberDeclined || m.DecidedAt == nil || !m.DecidedAt.Equal(decided) {
			t.Errorf("Member(a) = %+v", m)
		}
		if len(reloaded.Invited()) != 2 {
			t.Errorf("Invited() = %v, want two", reloaded.Invited())
		}
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		stale := newEvent("ev-1", loadIn, map[int64]models.Membership{})
		stale.Version = 1
		err := repo.SaveEvent(ctx, stale)
		if !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("SaveEvent(stale) error = %v, want ErrVersionConflict", err)
		}
		if stale.Version != 1 {
			t.Errorf("stale Version changed to %d", stale.Version)
		}
		reloaded, _ := repo.GetEventByID(ctx, "ev-1")
		if len(reloaded.Members) != 2 {
			t.Errorf("conflicting save wrote memberships: %+v", reloaded.Members)
		}
	})

	t.Run("list for contractor", func(t *testing.T) {
		other := newEvent("ev-2", loadIn.Add(time.Hour), map[int64]models.Membership{
			b.ID: {Status: models.MemberApplied},
		})
		if err := repo.CreateEvent(ctx, other); err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}

		forA, err := repo.GetEventsForContractor(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetEventsForContractor() error = %v", err)
		}
		if len(forA) != 1 || forA[0].ID != "ev-1" {
			t.Errorf("events for a = %+v", forA)
		}

		forB, err := repo.GetEventsForContractor(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetEventsForContractor() error = %v", err)
		}
		if len(forB) != 2 {
			t.Errorf("events for b len = %d, want 2", len(forB))
		}
		// Memberships of other contractors are loaded too
		if len(forB[0].Members) != 2 {
			t.Errorf("ev-1 members = %+v", forB[0].Members)
		}

		all, err := repo.GetAllEvents(ctx)
		if err != nil || len(all) != 2 {
			t.Errorf("GetAllEvents() = %d events, %v", len(all), err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := repo.DeleteEvent(ctx, "ev-2")
		if err != nil || !ok {
			t.Fatalf("DeleteEvent() = %v, %v", ok, err)
		}
		ok, err = repo.DeleteEvent(ctx, "ev-2")
		if err != nil || ok {
			t.Errorf("DeleteEvent(again) = %v, %v, want false, nil", ok, err)
		}
	})
}

func TestDeleteContractorInvalidatesLoadedEvents(t *testing.T) {
	db := openTestDB(t)
	contractors := NewContractorRepository(db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	a := createContractor(t, contractors, "a@example.com", models.ContractorActive)
	b := createContractor(t, contractors, "b@example.com", models.ContractorActive)

	loadIn := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	ev := newEvent("ev-del", loadIn, map[int64]models.Membership{
		a.ID: {Status: models.MemberInvited},
		b.ID: {Status: models.MemberInvited},
	})
	if err := repo.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	untouched := newEvent("ev-other", loadIn, map[int64]models.Membership{
		b.ID: {Status: models.MemberInvited},
	})
	if err := repo.CreateEvent(ctx, untouched); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	inFlight, err := repo.GetEventByID(ctx, "ev-del")
	if err != nil || inFlight == nil {
		t.Fatalf("GetEventByID() = %v, %v", inFlight, err)
	}

	found, err := contractors.DeleteContractor(ctx, a.ID)
	if err != nil || !found {
		t.Fatalf("DeleteContractor() = %v, %v", found, err)
	}

	inFlight.Members[b.ID] = models.Membership{Status: models.MemberApplied, UpdatedAt: time.Now().UTC()}
	if err := repo.SaveEvent(ctx, inFlight); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("SaveEvent(stale copy) error = %v, want ErrVersionConflict", err)
	}

	reloaded, err := repo.GetEventByID(ctx, "ev-del")
	if err != nil {
		t.Fatalf("GetEventByID() error = %v", err)
	}
	if reloaded.Version != 2 {
		t.Errorf("Version = %d, want 2", reloaded.Version)
	}
	if _, ok := reloaded.Member(a.ID); ok {
		t.Error("deleted contractor still has a membership")
	}
	if err := repo.SaveEvent(ctx, reloaded); err != nil {
		t.Errorf("SaveEvent(reloaded) error = %v", err)
	}

	other, err := repo.GetEventByID(ctx, "ev-other")
	if err != nil {
		t.Fatalf("GetEventByID() error = %v", err)
	}
	if other.Version != 1 {
		t.Errorf("unrelated event Version = %d, want 1", other.Version)
	}
}

func TestIncidentRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewIncidentRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for _, name := range []string{"first", "second"} {
		if _, err := repo.CreateIncident(ctx, &models.Incident{
			Name:        name,
			StartDate:   start,
			EndDate:     start.Add(time.Hour),
			Description: "cable across walkway",
		}); err != nil {
			t.Fatalf("CreateIncident() error = %v", err)
		}
	}

	got, err := repo.GetAllIncidents(ctx)
	if err != nil {
		t.Fatalf("GetAllIncidents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetAllIncidents() len = %d, want 2", len(got))
	}
	if got[0].Name != "second" {
		t.Errorf("first incident = %s, want newest first", got[0].Name)
	}
}

func TestRepositoryErrorsAreWrapped(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, database.NewSQLiteDialect())
	driverErr := errors.New("connection reset")

	mock.ExpectQuery("SELECT").WillReturnError(driverErr)
	_, err = NewEventRepository(db).GetEventByID(context.Background(), "ev-1")
	if !errors.Is(err, driverErr) {
		t.Errorf("GetEventByID() error = %v, want wrapped driver error", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err = NewEventRepository(db).SaveEvent(context.Background(), newEvent("ev-1", time.Now(), nil))
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("SaveEvent() error = %v, want ErrVersionConflict", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
