package remote

import (
	"time"

	"github.com/colloki/console/internal/files"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/settings"
	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed replaces tenantID's data with the sample directory, audit trail, files and settings.
func (g *Gateway) Seed(tenantID string) {
	data := &tenantData{
		users: []users.User{
			{ID: "user-1", Name: "Admin User", Email: "admin@colloki.com", Role: rbac.RoleTenantAdmin, TenantID: tenantID, CreatedAt: at("2023-10-26T10:00:00Z"), AvatarURL: "https://i.pravatar.cc/150?u=user-1"},
			{ID: "user-2", Name: "Jane Doe", Email: "jane.doe@colloki.com", Role: rbac.RoleUser, TenantID: tenantID, CreatedAt: at("2023-10-25T11:30:00Z"), AvatarURL: "https://i.pravatar.cc/150?u=user-2"},
			{ID: "user-3", Name: "John Smith", Email: "john.smith@colloki.com", Role: rbac.RoleUser, TenantID: tenantID, CreatedAt: at("2023-10-24T15:00:00Z"), AvatarURL: "https://i.pravatar.cc/150?u=user-3"},
		},
		roles: rbac.DefaultRoles(),
		logs: []shared.AuditLog{
			{ID: "log-1", UserID: "user-1", UserName: "Admin User", Action: shared.ActionUserLogin, Details: "User logged in successfully.", Timestamp: at("2023-10-27T09:00:00Z")},
			{ID: "log-2", UserID: "user-2", UserName: "Jane Doe", Action: "FILE_UPLOAD", Details: `Uploaded file "report.pdf".`, Timestamp: at("2023-10-27T09:05:00Z")},
			{ID: "log-3", UserID: "user-1", UserName: "Admin User", Action: shared.ActionUserUpdate, Details: "Updated profile for user John Smith.", Timestamp: at("2023-10-27T09:10:00Z")},
			{ID: "log-4", UserID: "user-3", UserName: "John Smith", Action: shared.ActionUserLogin, Details: "User logged in successfully.", Timestamp: at("2023-10-27T09:12:00Z")},
		},
		files: []files.TenantFile{
			{ID: "file-1", Name: "Q3 Financial Report.pdf", Type: "application/pdf", Size: 1234567, UploadedAt: at("2023-10-26T14:00:00Z"), URL: "#"},
			{ID: "file-2", Name: "Marketing Campaign.jpg", Type: "image/jpeg", Size: 876543, UploadedAt: at("2023-10-25T16:30:00Z"), URL: "#"},
			{ID: "file-3", Name: "Onboarding Guide.docx", Type: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Size: 45678, UploadedAt: at("2023-10-24T10:15:00Z"), URL: "#"},
		},
		settings: seedSettings(tenantID),
	}
	g.mu.Lock()
	g.tenants[tenantID] = data
	g.mu.Unlock()
}

func seedSettings(tenantID string) settings.TenantSettings {
	s := settings.Defaults(tenantID)
	s.PrimaryColor = "#4f46e5"
	s.SecondaryColor = "#0ea5e9"
	s.CustomDomain = "app.colloki.com"
	s.SupportEmail = "support@colloki.com"
	s.EmailHeaderText = "Welcome!"
	s.EmailFooterText = "© 2024 Colloki Inc."
	return s
}
