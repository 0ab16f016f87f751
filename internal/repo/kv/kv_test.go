package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

func TestUsersRepoCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo(storage.NewMemory())

	alice := &domain.User{Username: "alice", Email: "alice@uni.edu", Role: domain.RoleParticipant, IsActive: true}
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &domain.User{Username: "alice"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("duplicate username err = %v", err)
	}
	if err := repo.Create(ctx, &domain.User{Username: "alice2", Email: "ALICE@uni.edu"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("duplicate email err = %v", err)
	}

	u, err := repo.FindByIdentifier(ctx, "Alice@Uni.edu")
	if err != nil || u.Username != "alice" {
		t.Errorf("FindByIdentifier(email) = %+v, %v", u, err)
	}
	if _, err := repo.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByUsername(bob) err = %v", err)
	}
}

func TestUsersRepoUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo(storage.NewMemory())
	_ = repo.Create(ctx, &domain.User{Username: "alice"})

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "alice", func(u *domain.User) error {
		u.AddRegistration(1)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	u, _ := repo.FindByUsername(ctx, "alice")
	if len(u.RegisteredEvents) != 0 {
		t.Errorf("failed update was persisted: %v", u.RegisteredEvents)
	}

	if _, err := repo.Update(ctx, "ghost", func(*domain.User) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update of missing user err = %v", err)
	}
}

func TestUsersRepoRemoveEventRegistrations(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo(storage.NewMemory())
	_ = repo.Create(ctx, &domain.User{Username: "a", RegisteredEvents: []int64{1, 2}})
	_ = repo.Create(ctx, &domain.User{Username: "b", RegisteredEvents: []int64{2}})
	_ = repo.Create(ctx, &domain.User{Username: "c", RegisteredEvents: []int64{3}})

	n, err := repo.RemoveEventRegistrations(ctx, 2)
	if err != nil || n != 2 {
		t.Fatalf("RemoveEventRegistrations = %d, %v", n, err)
	}
	a, _ := repo.FindByUsername(ctx, "a")
	if len(a.RegisteredEvents) != 1 || a.RegisteredEvents[0] != 1 {
		t.Errorf("a.RegisteredEvents = %v", a.RegisteredEvents)
	}
}

func TestEventsRepoIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	repo := NewEventsRepo(storage.NewMemory())

	e1, _ := repo.Create(ctx, &domain.Event{Title: "one"})
	e2, _ := repo.Create(ctx, &domain.Event{Title: "two"})
	if e1.ID != 1 || e2.ID != 2 {
		t.Fatalf("ids = %d, %d", e1.ID, e2.ID)
	}
	if err := repo.Delete(ctx, e2.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	e3, _ := repo.Create(ctx, &domain.Event{Title: "three"})
	if e3.ID != 3 {
		t.Errorf("id after delete = %d, want 3", e3.ID)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(99) err = %v", err)
	}
}

func TestEventsRepoSeedsSequenceFromExistingIDs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Put(ctx, KeyEvents, []byte(`[{"id":5,"title":"legacy"}]`))

	e, err := NewEventsRepo(store).Create(ctx, &domain.Event{Title: "new"})
	if err != nil || e.ID != 6 {
		t.Fatalf("Create = %+v, %v", e, err)
	}
	seq, _ := store.Get(ctx, KeyEventSeq)
	if string(seq) != "6" {
		t.Errorf("seq-events = %s", seq)
	}
}

func TestEventsRepoUpdateMissingWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewEventsRepo(store)
	if _, err := repo.Update(ctx, 7, func(*domain.Event) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := store.Get(ctx, KeyEvents); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("events key should not have been written, err = %v", err)
	}
}

func TestFeedbackRepoUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewFeedbackRepo(storage.NewMemory())

	first, created, err := repo.Upsert(ctx, &domain.Feedback{ID: "f1", EventID: 1, UserID: "alice", Rating: 3})
	if err != nil || !created {
		t.Fatalf("first Upsert = %v, %v", created, err)
	}
	for range 2 {
		if _, err := repo.AddHelpfulVote(ctx, 1, first.ID, "bob"); err != nil {
			t.Fatalf("AddHelpfulVote: %v", err)
		}
	}
	if _, err := repo.AddHelpfulVote(ctx, 1, "missing", "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("vote on missing entry err = %v", err)
	}
	again, created, err := repo.Upsert(ctx, &domain.Feedback{ID: "f2", EventID: 1, UserID: "alice", Rating: 5})
	if err != nil || created {
		t.Fatalf("second Upsert = %v, %v", created, err)
	}
	if again.ID != "f1" || again.Helpful != 1 || len(again.HelpfulBy) != 1 || again.Rating != 5 {
		t.Errorf("replaced entry = %+v", again)
	}
	list, _ := repo.List(ctx, 1)
	if len(list) != 1 {
		t.Errorf("len = %d, want 1", len(list))
	}

	_ = repo.DeleteEvent(ctx, 1)
	if list, _ := repo.List(ctx, 1); len(list) != 0 {
		t.Errorf("after delete len = %d", len(list))
	}
}

func TestSessionsRepoPrunesExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(storage.NewMemory())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_ = repo.Create(ctx, &domain.Session{ID: "old", Username: "a", ExpiresAt: now.Add(-time.Minute)}, now.Add(-time.Hour))
	_ = repo.Create(ctx, &domain.Session{ID: "new", Username: "a", ExpiresAt: now.Add(time.Hour)}, now)

	if _, err := repo.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expired session kept: %v", err)
	}
	if err := repo.Delete(ctx, "new"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "new"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted session still present: %v", err)
	}
	if err := repo.Delete(ctx, "never"); err != nil {
		t.Errorf("Delete(unknown) = %v", err)
	}
}

func TestQRCodesRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewQRCodesRepo(storage.NewMemory())
	now := time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	q, created, err := repo.CreatePending(ctx, &domain.QRCode{ID: "q1", EventID: 1, UserID: "a", QRCodeData: "d1", CheckInStatus: domain.CheckInPending, ExpiresAt: &later}, now)
	if err != nil || !created || q.ID != "q1" {
		t.Fatalf("CreatePending = %+v, %v, %v", q, created, err)
	}
	q, created, _ = repo.CreatePending(ctx, &domain.QRCode{ID: "q2", EventID: 1, UserID: "a", QRCodeData: "d2", CheckInStatus: domain.CheckInPending}, now)
	if created || q.ID != "q1" {
		t.Errorf("valid pending code was replaced: %+v", q)
	}

	// Once q1 has lapsed it is settled and a fresh code is stored.
	q, created, _ = repo.CreatePending(ctx, &domain.QRCode{ID: "q3", EventID: 1, UserID: "a", QRCodeData: "d3", CheckInStatus: domain.CheckInPending}, later.Add(time.Minute))
	if !created || q.ID != "q3" {
		t.Fatalf("stale code not replaced: %+v", q)
	}
	if old, _ := repo.Get(ctx, "q1"); old.CheckInStatus != domain.CheckInExpired {
		t.Errorf("stale status = %s", old.CheckInStatus)
	}

	if _, err := repo.Update(ctx, "q3", func(q *domain.QRCode) error {
		q.CheckIn(now)
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if q, _ := repo.FindByPayload(ctx, "d3"); q.CheckInStatus != domain.CheckInCheckedIn {
		t.Errorf("status = %s", q.CheckInStatus)
	}
	if codes, _ := repo.ListByEvent(ctx, 1); len(codes) != 2 {
		t.Errorf("codes = %d, want 2", len(codes))
	}
}

func TestCertificatesRepoCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewCertificatesRepo(storage.NewMemory())

	c, created, err := repo.CreateIfAbsent(ctx, &domain.Certificate{ID: "c1", EventID: 1, ParticipantID: "a", VerificationCode: "AAAA1111"})
	if err != nil || !created || c.ID != "c1" {
		t.Fatalf("CreateIfAbsent = %+v, %v, %v", c, created, err)
	}
	c, created, _ = repo.CreateIfAbsent(ctx, &domain.Certificate{ID: "c2", EventID: 1, ParticipantID: "a", VerificationCode: "BBBB2222"})
	if created || c.ID != "c1" {
		t.Errorf("duplicate stored: %+v", c)
	}
	if _, _, err := repo.CreateIfAbsent(ctx, &domain.Certificate{ID: "c3", EventID: 2, ParticipantID: "a", VerificationCode: "AAAA1111"}); !errors.Is(err, domain.ErrVerificationCodeTaken) {
		t.Errorf("code clash = %v", err)
	}
	if certs, _ := repo.ListByParticipant(ctx, "a"); len(certs) != 1 {
		t.Errorf("certificates = %d, want 1", len(certs))
	}
}
