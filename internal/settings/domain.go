package settings

// Theme is the console colour scheme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips light and dark. Unknown values become dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Notifications is the e-mail preference sub-record.
type Notifications struct {
	WeeklySummary  bool `json:"weeklySummary"`
	ProductUpdates bool `json:"productUpdates"`
}

// TenantSettings is the per-tenant configuration record. Empty LogoURL and FaviconURL mean none.
type TenantSettings struct {
	TenantID        string        `json:"tenantId"`
	AppName         string        `json:"appName"`
	LogoURL         string        `json:"logoUrl"`
	FaviconURL      string        `json:"faviconUrl"`
	PrimaryColor    string        `json:"primaryColor"`
	SecondaryColor  string        `json:"secondaryColor"`
	CustomDomain    string        `json:"customDomain"`
	SupportEmail    string        `json:"supportEmail"`
	HidePoweredBy   bool          `json:"hidePoweredBy"`
	EmailHeaderText string        `json:"emailHeaderText"`
	EmailFooterText string        `json:"emailFooterText"`
	Timezone        string        `json:"timezone"`
	Language        string        `json:"language"`
	SessionTimeout  int           `json:"sessionTimeout"`
	Enforce2FA      bool          `json:"enforce2FA"`
	Notifications   Notifications `json:"notifications"`
}

// Defaults returns the hard default table for tenantID.
func Defaults(tenantID string) TenantSettings {
	return TenantSettings{
		TenantID:        tenantID,
		AppName:         "Colloki",
		PrimaryColor:    "#3b82f6",
		SecondaryColor:  "#64748b",
		EmailHeaderText: "Welcome to our platform!",
		EmailFooterText: "© 2024 Colloki. All rights reserved.",
		Timezone:        "UTC",
		Language:        "en",
		SessionTimeout:  60,
		Notifications: Notifications{
			WeeklySummary:  true,
			ProductUpdates: true,
		},
	}
}

// Patch is a partial update. Nil fields are left untouched. Notifications replaces the
// nested record as a unit. TenantID is never patchable. Optional strings accept "" so a
// field can be cleared.
type Patch struct {
	AppName         *string        `json:"appName,omitempty" validate:"omitempty,min=1,max=80"`
	LogoURL         *string        `json:"logoUrl,omitempty" validate:"omitempty,url|len=0"`
	FaviconURL      *string        `json:"faviconUrl,omitempty" validate:"omitempty,url|len=0"`
	PrimaryColor    *string        `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor  *string        `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	CustomDomain    *string        `json:"customDomain,omitempty" validate:"omitempty,fqdn|len=0"`
	SupportEmail    *string        `json:"supportEmail,omitempty" validate:"omitempty,email|len=0"`
	HidePoweredBy   *bool          `json:"hidePoweredBy,omitempty"`
	EmailHeaderText *string        `json:"emailHeaderText,omitempty" validate:"omitempty,max=200"`
	EmailFooterText *string        `json:"emailFooterText,omitempty" validate:"omitempty,max=200"`
	Timezone        *string        `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Language        *string        `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	SessionTimeout  *int           `json:"sessionTimeout,omitempty" validate:"omitempty,min=1,max=1440"`
	Enforce2FA      *bool          `json:"enforce2FA,omitempty"`
	Notifications   *Notifications `json:"notifications,omitempty"`
}

// PatchFrom builds a patch carrying every field of s.
func PatchFrom(s TenantSettings) Patch {
	n := s.Notifications
	return Patch{
		AppName:         &s.AppName,
		LogoURL:         &s.LogoURL,
		FaviconURL:      &s.FaviconURL,
		PrimaryColor:    &s.PrimaryColor,
		SecondaryColor:  &s.SecondaryColor,
		CustomDomain:    &s.CustomDomain,
		SupportEmail:    &s.SupportEmail,
		HidePoweredBy:   &s.HidePoweredBy,
		EmailHeaderText: &s.EmailHeaderText,
		EmailFooterText: &s.EmailFooterText,
		Timezone:        &s.Timezone,
		Language:        &s.Language,
		SessionTimeout:  &s.SessionTimeout,
		Enforce2FA:      &s.Enforce2FA,
		Notifications:   &n,
	}
}

// Apply returns s with the patch merged in.
func (p Patch) Apply(s TenantSettings) TenantSettings {
	setString(&s.AppName, p.AppName)
	setString(&s.LogoURL, p.LogoURL)
	setString(&s.FaviconURL, p.FaviconURL)
	setString(&s.PrimaryColor, p.PrimaryColor)
	setString(&s.SecondaryColor, p.SecondaryColor)
	setString(&s.CustomDomain, p.CustomDomain)
	setString(&s.SupportEmail, p.SupportEmail)
	setString(&s.EmailHeaderText, p.EmailHeaderText)
	setString(&s.EmailFooterText, p.EmailFooterText)
	setString(&s.Timezone, p.Timezone)
	setString(&s.Language, p.Language)
	if p.HidePoweredBy != nil {
		s.HidePoweredBy = *p.HidePoweredBy
	}
	if p.SessionTimeout != nil {
		s.SessionTimeout = *p.SessionTimeout
	}
	if p.Enforce2FA != nil {
		s.Enforce2FA = *p.Enforce2FA
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	return s
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Diff lists the JSON names of fields that differ between a and b.
func Diff(a, b TenantSettings) []string {
	var out []string
	add := func(changed bool, name string) {
		if changed {
			out = append(out, name)
		}
	}
	add(a.TenantID != b.TenantID, "tenantId")
	add(a.AppName != b.AppName, "appName")
	add(a.LogoURL != b.LogoURL, "logoUrl")
	add(a.FaviconURL != b.FaviconURL, "faviconUrl")
	add(a.PrimaryColor != b.PrimaryColor, "primaryColor")
	add(a.SecondaryColor != b.SecondaryColor, "secondaryColor")
	add(a.CustomDomain != b.CustomDomain, "customDomain")
	add(a.SupportEmail != b.SupportEmail, "supportEmail")
	add(a.HidePoweredBy != b.HidePoweredBy, "hidePoweredBy")
	add(a.EmailHeaderText != b.EmailHeaderText, "emailHeaderText")
	add(a.EmailFooterText != b.EmailFooterText, "emailFooterText")
	add(a.Timezone != b.Timezone, "timezone")
	add(a.Language != b.Language, "language")
	add(a.SessionTimeout != b.SessionTimeout, "sessionTimeout")
	add(a.Enforce2FA != b.Enforce2FA, "enforce2FA")
	add(a.Notifications.WeeklySummary != b.Notifications.WeeklySummary, "notifications.weeklySummary")
	add(a.Notifications.ProductUpdates != b.Notifications.ProductUpdates, "notifications.productUpdates")
	return out
}
