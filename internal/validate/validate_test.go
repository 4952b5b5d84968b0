package validate

import (
	"errors"
	"testing"
)

type signup struct {
	Email    string `label:"Email" validate:"required,email"`
	Password string `label:"Mật khẩu" validate:"required,min=6"`
	Confirm  string `label:"Xác nhận mật khẩu" validate:"eqfield=Password"`
	Phone    string `label:"Số điện thoại" validate:"omitempty,phone"`
}

func TestStruct_ReportsLabelledFields(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "123", Confirm: "321", Phone: "12ab"})
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *Error", err)
	}
	for _, field := range []string{"Email", "Mật khẩu", "Xác nhận mật khẩu", "Số điện thoại"} {
		if !ve.Has(field) {
			t.Fatalf("missing failure for %q in %v", field, ve.Fields)
		}
	}
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Email: "a@b.vn", Password: "secret1", Confirm: "secret1", Phone: "+84901234567"})
	if err != nil {
		t.Fatalf("Struct returned error: %v", err)
	}
}
