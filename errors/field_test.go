package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Declare errors upfront so that DeepEqual can be used for comparison.
	var (
		unauthorizedOwnerErr = Field("Owner", ErrUnauthorized, "a")
		emptyOwnerErr        = Field("Owner", ErrEmpty, "b")
		emptyBackupErr       = Field("Backup", ErrEmpty, "backup is required")
		vaultErr             = Field("Vault", Append(
			emptyOwnerErr,
			Append(emptyBackupErr, ErrState),
		), "vault data invalid")
	)

	cases := map[string]struct {
		Err   error
		Field string
		Want  []error
	}{
		"a single error found by the name": {
			Err:   unauthorizedOwnerErr,
			Field: "Owner",
			Want:  []error{unauthorizedOwnerErr},
		},
		"two error found by the name": {
			Err:   Append(unauthorizedOwnerErr, emptyOwnerErr),
			Field: "Owner",
			Want:  []error{unauthorizedOwnerErr, emptyOwnerErr},
		},
		"field can contain a collection of errors": {
			Err:   vaultErr,
			Field: "Vault",
			Want:  []error{vaultErr},
		},
		"field can inspect errors tree to find match": {
			Err:   vaultErr,
			Field: "Backup",
			Want:  []error{emptyBackupErr},
		},
		"nil error returns nothing": {
			Err:   nil,
			Field: "foo",
			Want:  nil,
		},
		"not matching field name": {
			Err:   emptyBackupErr,
			Field: "UnlockTime",
			Want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := FieldErrors(tc.Err, tc.Field)
			if !reflect.DeepEqual(tc.Want, got) {
				t.Logf("want %q", tc.Want)
				t.Logf(" got %q", got)
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Append(nil, ErrEmpty, nil); err != ErrEmpty {
		t.Fatalf("single error must be returned unchanged, got %v", err)
	}
	err := Append(Append(ErrEmpty, ErrState), ErrType)
	list, ok := err.(unpacker)
	if !ok {
		t.Fatalf("want a collection, got %T", err)
	}
	if n := len(list.Unpack()); n != 3 {
		t.Fatalf("want a flat collection of 3 errors, got %d", n)
	}
}
