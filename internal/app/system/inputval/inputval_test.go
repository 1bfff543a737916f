package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		pwd  string
		want bool
	}{
		{"Passw0rd!", true},
		{"Abcdefg1@", true},
		{"Sh0rt!", false},      // too short
		{"password1!", false},  // no uppercase
		{"Password!!", false},  // no digit
		{"Password11", false},  // no symbol
		{"Passw0rd!#", false},  // '#' not allowed
		{"Pass word1!", false}, // space not allowed
		{"ABCDEFGH1$", true},   // lowercase not required
	}
	for _, tt := range tests {
		t.Run(tt.pwd, func(t *testing.T) {
			if got := IsStrongPassword(tt.pwd); got != tt.want {
				t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.pwd, got, tt.want)
			}
		})
	}
}

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpwd"`
	Owner    string `json:"userId" validate:"omitempty,objectid"`
}

func TestStructMessages(t *testing.T) {
	tests := []struct {
		name string
		in   signup
		want string
	}{
		{"missing name", signup{Email: "a@b.co", Password: "Passw0rd!"}, "name is required"},
		{"bad email", signup{Name: "A", Email: "nope", Password: "Passw0rd!"}, MsgInvalidEmail},
		{"weak password", signup{Name: "A", Email: "a@b.co", Password: "password"}, MsgWeakPassword},
		{"bad id", signup{Name: "A", Email: "a@b.co", Password: "Passw0rd!", Owner: "xyz"}, "userId must be a valid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := Message(err); got != tt.want {
				t.Errorf("Message: got %q, want %q", got, tt.want)
			}
		})
	}

	ok := signup{Name: "A", Email: "a@b.co", Password: "Passw0rd!", Owner: "65a000000000000000000001"}
	if err := Struct(ok); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
}

func TestDetails(t *testing.T) {
	d := Details(Struct(signup{}))
	for _, f := range []string{"name", "email", "password"} {
		if d[f] == "" {
			t.Errorf("Details missing %q: %v", f, d)
		}
	}
}
