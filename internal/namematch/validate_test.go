package namematch

import "testing"

func TestValidateSubmissionValid(t *testing.T) {
	cleaned, errs, ok := ValidateSubmission(Submission{
		Name:  "  Ramesh Kumar ",
		Phone: "+91 98765-43210",
		Email: " Ramesh@Example.COM ",
	})
	if !ok {
		t.Fatalf("want valid, got errors %v", errs)
	}
	if cleaned.Name != "Ramesh Kumar" {
		t.Errorf("name = %q, want trimmed", cleaned.Name)
	}
	if cleaned.Phone != "9876543210" {
		t.Errorf("phone = %q, want 9876543210", cleaned.Phone)
	}
	if cleaned.Email != "ramesh@example.com" {
		t.Errorf("email = %q, want lowercased", cleaned.Email)
	}
}

func TestValidateSubmissionShortName(t *testing.T) {
	_, errs, ok := ValidateSubmission(Submission{Name: "R", Phone: "9876543210"})
	if ok || len(errs) == 0 {
		t.Fatalf("single-character name should fail validation")
	}
}

func TestValidateSubmissionNoIdentifier(t *testing.T) {
	_, errs, ok := ValidateSubmission(Submission{Name: "Ramesh"})
	if ok {
		t.Fatalf("submission without phone or email should fail, errs=%v", errs)
	}
}

func TestValidateSubmissionBadPhone(t *testing.T) {
	_, _, ok := ValidateSubmission(Submission{Name: "Ramesh", Phone: "12345"})
	if ok {
		t.Fatalf("5-digit phone should fail validation")
	}
}

func TestValidateSubmissionBadEmailButGoodPhone(t *testing.T) {
	cleaned, _, ok := ValidateSubmission(Submission{Name: "Ramesh", Phone: "9876543210", Email: "not-an-email"})
	if ok {
		t.Fatalf("malformed email should be reported even when phone is valid")
	}
	if cleaned.Email != "" {
		t.Errorf("malformed email should not survive cleaning, got %q", cleaned.Email)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+91 98765 43210", "9876543210"},
		{"09876543210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"9876543210", "9876543210"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractServiceType(t *testing.T) {
	tests := []struct {
		name, business, want string
		wantOK               bool
	}{
		{"Ramesh the plumber", "", "plumber", true},
		{"Suresh", "City Electrician Works", "electrician", true},
		{"Anita", "Glamour Hair Stylist Studio", "hair_stylist", true},
		{"Vikram", "Sharma Property Dealer", "property_dealer", true},
		{"Ramesh Kumar", "", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractServiceType(tt.name, tt.business)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractServiceType(%q, %q) = (%q, %v), want (%q, %v)",
				tt.name, tt.business, got, ok, tt.want, tt.wantOK)
		}
	}
}
