package domain

import "testing"

func artistTemplate() Profile {
	return Profile{
		Name:     "Luna Eclipse",
		Avatar:   "https://example.com/luna.png",
		Location: "Brooklyn, NY",
		Role:     RoleArtist,
		Verified: true,
		Bio:      "Ambient techno.",
		Genres:   []string{"Techno", "Ambient"},
		XP:       450,
		Level:    2,
		Stats:    Stats{GigsCompleted: 3, ActiveGigs: 1, Rating: 4.9, ResponseTime: "< 2 hrs"},
	}
}

func TestHydrateProfile_RecordWins(t *testing.T) {
	rec := UserRecord{
		ID:            "u_1",
		Name:          "Jane",
		Location:      "Berlin",
		Role:          RoleArtist,
		Email:         "jane@example.com",
		WalletAddress: "0xabc",
		Rating:        3.5,
	}

	p := HydrateProfile(artistTemplate(), rec)

	if p.ID != "u_1" || p.Name != "Jane" || p.Location != "Berlin" {
		t.Errorf("record fields not applied: %+v", p)
	}
	if p.Email != "jane@example.com" || p.WalletAddress != "0xabc" {
		t.Errorf("contact fields not applied: %+v", p)
	}
	if p.Rating != 3.5 {
		t.Errorf("expected record rating 3.5, got %v", p.Rating)
	}
	if p.Verified {
		t.Error("verified must come from the record")
	}
}

func TestHydrateProfile_TemplateFillsGaps(t *testing.T) {
	rec := UserRecord{ID: "u_2", Role: RoleArtist}

	p := HydrateProfile(artistTemplate(), rec)

	if p.Name != "Luna Eclipse" || p.Avatar == "" || p.Location != "Brooklyn, NY" {
		t.Errorf("template fields missing: %+v", p)
	}
	if p.Bio != "Ambient techno." || p.XP != 450 || p.Level != 2 {
		t.Errorf("template-only fields missing: %+v", p)
	}
	if p.Rating != 4.9 {
		t.Errorf("expected template stats rating 4.9, got %v", p.Rating)
	}
}

func TestHydrateProfile_DoesNotAliasTemplateGenres(t *testing.T) {
	tmpl := artistTemplate()
	p := HydrateProfile(tmpl, UserRecord{ID: "u_3", Role: RoleArtist})

	p.Genres[0] = "Polka"
	if tmpl.Genres[0] != "Techno" {
		t.Error("mutating a hydrated profile changed the template")
	}
}

func TestUserPatch_ApplyAndEmpty(t *testing.T) {
	if !(UserPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}

	name := "New Name"
	done := true
	patch := UserPatch{Name: &name, OnboardingComplete: &done}
	if patch.Empty() {
		t.Fatal("patch with fields must not be empty")
	}

	u := UserRecord{Name: "Old", Location: "Paris"}
	patch.Apply(&u)
	if u.Name != "New Name" || !u.OnboardingComplete {
		t.Errorf("patch not applied: %+v", u)
	}
	if u.Location != "Paris" {
		t.Errorf("untouched field changed: %q", u.Location)
	}
}

func TestUserRecord_HasEmail(t *testing.T) {
	u := UserRecord{Email: "Luna@Example.com"}
	if !u.HasEmail(" luna@example.COM ") {
		t.Error("expected case-insensitive match")
	}
	if (UserRecord{}).HasEmail("") {
		t.Error("empty email must never match")
	}
}

func TestEmailLocalPart(t *testing.T) {
	if got := EmailLocalPart("dj.luna@example.com"); got != "dj.luna" {
		t.Errorf("expected dj.luna, got %q", got)
	}
	if got := EmailLocalPart("nobody"); got != "nobody" {
		t.Errorf("expected input back, got %q", got)
	}
}
