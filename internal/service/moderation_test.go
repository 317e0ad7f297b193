package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

func TestBanUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ban.BanUser(f.ctx, f.admin, 999, &models.BanRequest{Reason: "spam", Days: 5})
	expectKind(t, err, service.KindNotFound)

	_, err = f.svc.Ban.BanUser(f.ctx, f.manager, f.reader.UserID, &models.BanRequest{Reason: "spam", Days: 5})
	expectKind(t, err, service.KindForbidden)

	_, err = f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "spam"})
	expectKind(t, err, service.KindValidation)

	ban, err := f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "spam", Days: 5})
	if err != nil {
		t.Fatalf("ban: %v", err)
	}
	if want := f.now.AddDate(0, 0, 5); !ban.Expires.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, ban.Expires)
	}

	_, err = f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "again", Days: 1})
	expectKind(t, err, service.KindConflict)

	// An expired ban on record is replaced by a new one
	f.now = f.now.AddDate(0, 0, 6)
	again, err := f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "again", Days: 1})
	if err != nil {
		t.Fatalf("ban after expiry: %v", err)
	}
	if again.ID != ban.ID || again.Reason != "again" {
		t.Errorf("expected the expired ban to be replaced, got id %d reason %q", again.ID, again.Reason)
	}
}

func TestRenewBan(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    time.Duration
		wantExpiry func(start, now time.Time) time.Time
	}{
		{
			name:       "active ban extends from old expiry",
			elapsed:    0,
			wantExpiry: func(start, now time.Time) time.Time { return start.AddDate(0, 0, 15) },
		},
		{
			name:       "expired ban restarts from now",
			elapsed:    11 * 24 * time.Hour,
			wantExpiry: func(start, now time.Time) time.Time { return now.AddDate(0, 0, 5) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			start := f.now
			if _, err := f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "spam", Days: 10}); err != nil {
				t.Fatalf("ban: %v", err)
			}

			f.now = f.now.Add(tt.elapsed)
			renewed, err := f.svc.Ban.RenewBan(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: "more spam", Days: 5})
			if err != nil {
				t.Fatalf("renew: %v", err)
			}
			if want := tt.wantExpiry(start, f.now); !renewed.Expires.Equal(want) {
				t.Errorf("expected expiry %v, got %v", want, renewed.Expires)
			}
			if renewed.Reason != "spam\nmore spam" {
				t.Errorf("expected appended reason, got %q", renewed.Reason)
			}
		})
	}
}

func TestRenewBanErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ban.RenewBan(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Days: 5})
	expectKind(t, err, service.KindNotFound)

	_, err = f.svc.Ban.RenewBan(f.ctx, f.admin, 999, &models.BanRequest{Days: 5})
	expectKind(t, err, service.KindNotFound)

	long := strings.Repeat("x", models.MaxBanReasonLength+1)
	_, err = f.svc.Ban.RenewBan(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Reason: long, Days: 5})
	expectKind(t, err, service.KindValidation)
}

func TestUnbanAndDeleteBan(t *testing.T) {
	f := newFixture(t)

	expectKind(t, f.svc.Ban.Unban(f.ctx, f.admin, f.reader.UserID), service.KindNotFound)
	expectKind(t, f.svc.Ban.DeleteBan(f.ctx, f.admin, 999), service.KindNotFound)

	f.svc.Ban.BanUser(f.ctx, f.admin, f.reader.UserID, &models.BanRequest{Days: 1})
	if err := f.svc.Ban.Unban(f.ctx, f.admin, f.reader.UserID); err != nil {
		t.Fatalf("unban: %v", err)
	}
	_, err := f.svc.Ban.Get(f.ctx, f.admin, f.reader.UserID)
	expectKind(t, err, service.KindNotFound)

	ban, _ := f.svc.Ban.BanUser(f.ctx, f.admin, f.author.UserID, &models.BanRequest{Days: 1})
	if err := f.svc.Ban.DeleteBan(f.ctx, f.admin, ban.ID); err != nil {
		t.Fatalf("delete ban: %v", err)
	}
	bans, err := f.svc.Ban.List(f.ctx, f.admin)
	if err != nil || len(bans) != 0 {
		t.Errorf("expected no bans, got %v %v", bans, err)
	}
}

func TestBannedUserCannotPost(t *testing.T) {
	f := newFixture(t)
	m := f.submit("Before the ban")
	f.svc.Material.Approve(f.ctx, f.manager, m.ID)

	f.svc.Ban.BanUser(f.ctx, f.admin, f.author.UserID, &models.BanRequest{Reason: "abuse", Days: 2})

	_, err := f.svc.Material.Create(f.ctx, f.author, &models.CreateMaterialRequest{
		Title: "During the ban", Content: "x", CategoryID: f.category.ID,
	})
	expectKind(t, err, service.KindForbidden)
	if !strings.Contains(err.Error(), "abuse") {
		t.Errorf("expected ban reason in message, got %q", err.Error())
	}

	_, err = f.svc.Comment.Create(f.ctx, f.author, m.ID, &models.CreateCommentRequest{Content: "hi"})
	expectKind(t, err, service.KindForbidden)

	f.now = f.now.AddDate(0, 0, 3)
	if _, err := f.svc.Comment.Create(f.ctx, f.author, m.ID, &models.CreateCommentRequest{Content: "back"}); err != nil {
		t.Errorf("expired ban should not block: %v", err)
	}
}

func TestCommentThreads(t *testing.T) {
	f := newFixture(t)
	m := f.submit("Discussed material")
	other := f.submit("Other material")
	f.svc.Material.Approve(f.ctx, f.manager, m.ID)

	top, err := f.svc.Comment.Create(f.ctx, f.reader, m.ID, &models.CreateCommentRequest{Content: "First!"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if top.AuthorName != "reader" {
		t.Errorf("expected author name, got %q", top.AuthorName)
	}

	f.now = f.now.Add(time.Minute)
	reply, err := f.svc.Comment.Create(f.ctx, f.author, m.ID, &models.CreateCommentRequest{Content: "Thanks", ParentID: &top.ID})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	f.now = f.now.Add(time.Minute)
	second, _ := f.svc.Comment.Create(f.ctx, f.manager, m.ID, &models.CreateCommentRequest{Content: "Second"})

	_, err = f.svc.Comment.Create(f.ctx, f.reader, m.ID, &models.CreateCommentRequest{Content: "Deep", ParentID: &reply.ID})
	expectKind(t, err, service.KindValidation)

	_, err = f.svc.Comment.Create(f.ctx, f.author, other.ID, &models.CreateCommentRequest{Content: "Cross", ParentID: &top.ID})
	expectKind(t, err, service.KindValidation)

	_, err = f.svc.Comment.Create(f.ctx, f.reader, other.ID, &models.CreateCommentRequest{Content: "Hidden"})
	expectKind(t, err, service.KindNotFound)

	_, err = f.svc.Comment.Create(f.ctx, f.reader, m.ID, &models.CreateCommentRequest{Content: strings.Repeat("a", models.MaxCommentLength+1)})
	expectKind(t, err, service.KindValidation)

	threads, err := f.svc.Comment.ListThreads(f.ctx, nil, m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].ID != top.ID || threads[1].ID != second.ID {
		t.Errorf("threads out of order: %d, %d", threads[0].ID, threads[1].ID)
	}
	if len(threads[0].Replies) != 1 || threads[0].Replies[0].ID != reply.ID {
		t.Errorf("expected reply under first thread, got %v", threads[0].Replies)
	}
	if threads[1].Replies == nil || len(threads[1].Replies) != 0 {
		t.Errorf("expected empty replies slice, got %v", threads[1].Replies)
	}
}

func TestCommentEditAndDelete(t *testing.T) {
	f := newFixture(t)
	m := f.submit("Commented material")
	f.svc.Material.Approve(f.ctx, f.manager, m.ID)

	top, _ := f.svc.Comment.Create(f.ctx, f.reader, m.ID, &models.CreateCommentRequest{Content: "Parent"})
	reply, _ := f.svc.Comment.Create(f.ctx, f.author, m.ID, &models.CreateCommentRequest{Content: "Child", ParentID: &top.ID})

	_, err := f.svc.Comment.Edit(f.ctx, f.author, top.ID, &models.UpdateCommentRequest{Content: "Not mine"})
	expectKind(t, err, service.KindForbidden)

	edited, err := f.svc.Comment.Edit(f.ctx, f.reader, top.ID, &models.UpdateCommentRequest{Content: "Parent, edited"})
	if err != nil || edited.Content != "Parent, edited" {
		t.Fatalf("edit: %v %v", edited, err)
	}

	expectKind(t, f.svc.Comment.Delete(f.ctx, f.manager, reply.ID), service.KindForbidden)
	expectKind(t, f.svc.Comment.Delete(f.ctx, f.reader, top.ID), service.KindConflict)

	if err := f.svc.Comment.Delete(f.ctx, f.admin, reply.ID); err != nil {
		t.Fatalf("admin delete reply: %v", err)
	}
	if err := f.svc.Comment.Delete(f.ctx, f.reader, top.ID); err != nil {
		t.Fatalf("delete parent without replies: %v", err)
	}
	expectKind(t, f.svc.Comment.Delete(f.ctx, f.reader, top.ID), service.KindNotFound)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Category.Create(f.ctx, f.admin, &models.CategoryRequest{Title: "science"})
	expectKind(t, err, service.KindConflict)

	_, err = f.svc.Category.Create(f.ctx, f.manager, &models.CategoryRequest{Title: "History"})
	expectKind(t, err, service.KindForbidden)

	_, err = f.svc.Category.Create(f.ctx, f.admin, &models.CategoryRequest{Title: "   "})
	expectKind(t, err, service.KindValidation)

	history, err := f.svc.Category.Create(f.ctx, f.admin, &models.CategoryRequest{Title: "History"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Category.Rename(f.ctx, f.admin, history.ID, &models.CategoryRequest{Title: "Science"})
	expectKind(t, err, service.KindConflict)

	renamed, err := f.svc.Category.Rename(f.ctx, f.admin, history.ID, &models.CategoryRequest{Title: "HISTORY"})
	if err != nil || renamed.Title != "HISTORY" {
		t.Fatalf("case-only rename: %v %v", renamed, err)
	}

	f.submit("Uses science")
	expectKind(t, f.svc.Category.Delete(f.ctx, f.admin, f.category.ID), service.KindConflict)

	if err := f.svc.Category.Delete(f.ctx, f.admin, history.ID); err != nil {
		t.Fatalf("delete unused: %v", err)
	}
	expectKind(t, f.svc.Category.Delete(f.ctx, f.admin, history.ID), service.KindNotFound)

	categories, _ := f.svc.Category.List(f.ctx)
	if len(categories) != 1 || categories[0].Title != "Science" {
		t.Errorf("unexpected categories: %v", categories)
	}
}

func TestRoles(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.User.GrantRole(f.ctx, f.manager, f.reader.UserID, models.RoleManager)
	expectKind(t, err, service.KindForbidden)

	_, err = f.svc.User.GrantRole(f.ctx, f.admin, f.reader.UserID, "Owner")
	expectKind(t, err, service.KindValidation)

	user, err := f.svc.User.GrantRole(f.ctx, f.admin, f.reader.UserID, models.RoleManager)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !user.HasRole(models.RoleManager) {
		t.Errorf("expected Manager role, got %v", user.Roles)
	}

	user, _ = f.svc.User.RevokeRole(f.ctx, f.admin, f.reader.UserID, models.RoleManager)
	if user.HasRole(models.RoleManager) {
		t.Errorf("expected Manager revoked, got %v", user.Roles)
	}

	_, err = f.svc.User.RevokeRole(f.ctx, f.admin, f.admin.UserID, models.RoleAdmin)
	expectKind(t, err, service.KindConflict)

	_, err = f.svc.User.GrantRole(f.ctx, f.admin, 999, models.RoleManager)
	expectKind(t, err, service.KindNotFound)

	users, err := f.svc.User.List(f.ctx, f.admin)
	if err != nil || len(users) != 4 {
		t.Errorf("expected 4 users, got %d %v", len(users), err)
	}
	_, err = f.svc.User.List(f.ctx, f.reader)
	expectKind(t, err, service.KindForbidden)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	m := f.submit("Counted material")
	f.svc.Material.Approve(f.ctx, f.manager, m.ID)
	f.svc.Comment.Create(f.ctx, f.reader, m.ID, &models.CreateCommentRequest{Content: "one"})

	stats, err := f.svc.System.Stats(f.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Users != 4 || stats.Materials != 1 || stats.Comments != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if err := f.svc.System.Health(f.ctx); err != nil {
		t.Errorf("health: %v", err)
	}
}
