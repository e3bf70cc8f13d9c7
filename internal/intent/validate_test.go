package intent

import (
	"strings"
	"testing"

	"github.com/payagent/payagent/internal/catalog"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		kind       catalog.ActionKind
		params     map[string]string
		valid      bool
		errorCount int
	}{
		{
			name:   "transfer with all required params",
			kind:   catalog.ActionTransfer,
			params: map[string]string{"recipient": "0xABC", "amount": "50"},
			valid:  true,
		},
		{
			name:       "transfer missing both required params",
			kind:       catalog.ActionTransfer,
			params:     map[string]string{},
			valid:      false,
			errorCount: 2,
		},
		{
			name:       "empty value counts as missing",
			kind:       catalog.ActionTransfer,
			params:     map[string]string{"recipient": "", "amount": "50"},
			valid:      false,
			errorCount: 1,
		},
		{
			name:       "stream missing duration",
			kind:       catalog.ActionCreateStream,
			params:     map[string]string{"recipient": "0xABC", "amount": "300"},
			valid:      false,
			errorCount: 1,
		},
		{
			name:   "optional params may be absent",
			kind:   catalog.ActionPayInvoice,
			params: map[string]string{"invoice_id": "INV-1042"},
			valid:  true,
		},
		{
			name:   "read action with no params",
			kind:   catalog.ActionGetBalance,
			params: map[string]string{},
			valid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(Intent{Kind: tt.kind, Params: tt.params})
			if v.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (errors: %v)", v.Valid, tt.valid, v.Errors)
			}
			if len(v.Errors) != tt.errorCount {
				t.Errorf("got %d errors %v, want %d", len(v.Errors), v.Errors, tt.errorCount)
			}
		})
	}
}

func TestValidateErrorNamesTheParam(t *testing.T) {
	v := Validate(Intent{Kind: catalog.ActionTransfer, Params: map[string]string{"amount": "50"}})
	if v.Valid {
		t.Fatal("expected invalid")
	}
	if len(v.Errors) != 1 || !strings.Contains(v.Errors[0], "recipient") {
		t.Errorf("error should name the missing param, got %v", v.Errors)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	v := Validate(Unknown("???", nil))
	if v.Valid {
		t.Error("unknown intents must not validate")
	}
}
