package validation

import (
	"strings"
	"testing"

	"github.com/text-materials-api/internal/models"
)

func fields(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateMaterialRequest(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		req        *models.CreateMaterialRequest
		wantFields []string
	}{
		{
			name: "valid material",
			req:  &models.CreateMaterialRequest{Title: "First article", Content: "Body", CategoryID: 1},
		},
		{
			name:       "title shorter than five characters",
			req:        &models.CreateMaterialRequest{Title: "abcd", Content: "Body", CategoryID: 1},
			wantFields: []string{"title"},
		},
		{
			name: "title exactly five characters",
			req:  &models.CreateMaterialRequest{Title: "abcde", Content: "Body", CategoryID: 1},
		},
		{
			name:       "title longer than one hundred characters",
			req:        &models.CreateMaterialRequest{Title: strings.Repeat("a", 101), Content: "Body", CategoryID: 1},
			wantFields: []string{"title"},
		},
		{
			name:       "missing content and category",
			req:        &models.CreateMaterialRequest{Title: "Valid title"},
			wantFields: []string{"content", "category_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.Struct(tt.req)
			got := fields(errs)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %v (%v)", tt.wantFields, got, errs)
			}
			for i, f := range tt.wantFields {
				if got[i] != f {
					t.Errorf("field %d: expected %s, got %s", i, f, got[i])
				}
			}
		})
	}
}

func TestValidateCommentRequest(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"one character", "a", false},
		{"at the limit", strings.Repeat("a", models.MaxCommentLength), false},
		{"over the limit", strings.Repeat("a", models.MaxCommentLength+1), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.Struct(&models.CreateCommentRequest{Content: tt.content})
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidateRegisterRequest(t *testing.T) {
	validator := NewValidator()

	errs := validator.Struct(&models.RegisterRequest{
		Username: "bad name!",
		Email:    "not-an-email",
		Password: "123",
	})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	if errs[1].Message != "invalid email format" {
		t.Errorf("unexpected email message: %s", errs[1].Message)
	}
	if errs[1].Value != "not-an-email" {
		t.Errorf("expected offending value echoed, got %v", errs[1].Value)
	}
	if !strings.Contains(errs[2].Message, "at least 6 characters") {
		t.Errorf("unexpected password message: %s", errs[2].Message)
	}
}

func TestValidateRoleRequest(t *testing.T) {
	validator := NewValidator()

	if errs := validator.Struct(&models.RoleRequest{Role: models.RoleManager}); errs != nil {
		t.Errorf("expected Manager to be valid, got %v", errs)
	}
	errs := validator.Struct(&models.RoleRequest{Role: "Owner"})
	if len(errs) != 1 || errs[0].Field != "role" {
		t.Fatalf("expected role error, got %v", errs)
	}
	if errs[0].Message != "role must be one of: Admin, Manager" {
		t.Errorf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateBanRequest(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		req        models.BanRequest
		wantFields []string
	}{
		{"valid", models.BanRequest{Reason: "spam", Days: 5}, nil},
		{"no reason", models.BanRequest{Days: 1}, nil},
		{"zero days", models.BanRequest{Reason: "spam"}, []string{"days"}},
		{"reason too long", models.BanRequest{Reason: strings.Repeat("x", models.MaxBanReasonLength+1), Days: 1}, []string{"reason"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(validator.Struct(&tt.req))
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("expected %v, got %v", tt.wantFields, got)
			}
		})
	}
}

func TestValidateNotificationSettings(t *testing.T) {
	validator := NewValidator()

	if errs := validator.Struct(&models.NotificationSettingsRequest{}); len(errs) != 1 {
		t.Errorf("expected missing flag to fail, got %v", errs)
	}
	off := false
	if errs := validator.Struct(&models.NotificationSettingsRequest{ReceiveNotifications: &off}); errs != nil {
		t.Errorf("expected explicit false to pass, got %v", errs)
	}
}

func TestVar(t *testing.T) {
	validator := NewValidator()

	if errs := validator.Var("format", "pdf", "oneof=txt html json"); len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	} else if errs[0].Field != "format" {
		t.Errorf("expected field format, got %s", errs[0].Field)
	}
	if errs := validator.Var("format", "html", "oneof=txt html json"); errs != nil {
		t.Errorf("expected html to pass, got %v", errs)
	}
}

func TestSummary(t *testing.T) {
	got := Summary([]ValidationError{
		{Field: "title", Message: "title is required"},
		{Field: "content", Message: "content is required"},
	})
	if got != "title is required; content is required" {
		t.Errorf("unexpected summary: %s", got)
	}
}
