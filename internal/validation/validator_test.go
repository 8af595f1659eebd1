package validation

import (
	"errors"
	"testing"
)

func TestLoginForm(t *testing.T) {
	tests := []struct {
		name string
		form LoginForm
		want []string
	}{
		{"valid", LoginForm{Email: "viewer@example.com", Password: "secret1"}, nil},
		{"bad email", LoginForm{Email: "viewer", Password: "secret1"}, []string{"Invalid email address"}},
		{"short password", LoginForm{Email: "viewer@example.com", Password: "abc"}, []string{"Incorrect password (min. 6 characters)"}},
		{"both", LoginForm{}, []string{"Invalid email address", "Incorrect password (min. 6 characters)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Messages(ValidateStruct(&tt.form))
			if len(got) != len(tt.want) {
				t.Fatalf("messages = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("messages[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRegisterFormPasswordsMustMatch(t *testing.T) {
	form := RegisterForm{Email: "viewer@example.com", Password: "secret1", ConfirmPassword: "secret2"}
	err := ValidateStruct(&form)

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() error = %v, want *Error", err)
	}
	msgs := verr.Messages()
	if len(msgs) != 1 || msgs[0] != "Passwords must be the same" {
		t.Errorf("messages = %v", msgs)
	}

	form.ConfirmPassword = "secret1"
	if err := ValidateStruct(&form); err != nil {
		t.Errorf("ValidateStruct() on matching passwords = %v", err)
	}
}

func TestCustomTags(t *testing.T) {
	type request struct {
		Type   string `validate:"mediatype"`
		Avatar string `validate:"dataurl"`
	}

	if err := ValidateStruct(&request{Type: "tv", Avatar: "data:image/png;base64,AAAA"}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	err := ValidateStruct(&request{Type: "person", Avatar: "AAAA"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("fields = %+v, want 2 failures", verr.Fields)
	}
	if verr.Fields[0].Message != "Type must be movie or tv" {
		t.Errorf("message = %q", verr.Fields[0].Message)
	}
}
