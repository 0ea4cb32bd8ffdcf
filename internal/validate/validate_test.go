package validate_test

import (
	"testing"

	"storefront/internal/validate"
)

func TestID(t *testing.T) {
	for _, ok := range []string{"cat-mens-clothing", "u-admin", "0b7c1c2e-8f43-4e63-9d1a-3f4b2c6d7e8f"} {
		if _, valid := validate.ID(ok); !valid {
			t.Errorf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "../etc", "a b", "x;DROP"} {
		if _, valid := validate.ID(bad); valid {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestSlug(t *testing.T) {
	if _, ok := validate.Slug("red-shirt-1"); !ok {
		t.Fatal("red-shirt-1 should be a slug")
	}
	for _, bad := range []string{"", "Red-Shirt", "red--shirt", "-red", "red_shirt"} {
		if _, ok := validate.Slug(bad); ok {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestQAndPage(t *testing.T) {
	if q, ok := validate.Q("  café hoodie "); !ok || q != "café hoodie" {
		t.Fatalf("got %q %v", q, ok)
	}
	if _, ok := validate.Q("<script>"); ok {
		t.Fatal("markup should be rejected")
	}
	if validate.Page("") != 1 || validate.Page("-3") != 1 || validate.Page("4") != 4 {
		t.Fatal("unexpected page parsing")
	}
}

func TestEmailAndPassword(t *testing.T) {
	if _, ok := validate.Email("admin@storefront.test"); !ok {
		t.Fatal("email should be valid")
	}
	if _, ok := validate.Email("admin@"); ok {
		t.Fatal("email should be invalid")
	}
	if !validate.Password("Passw0rd!") || validate.Password("password") {
		t.Fatal("unexpected password check")
	}
}
