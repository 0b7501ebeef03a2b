package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{name: "valid simple", login: "admin", wantErr: false},
		{name: "valid with digits and underscore", login: "admin_01", wantErr: false},
		{name: "minimal length", login: "abc", wantErr: false},
		{name: "maximal length", login: strings.Repeat("a", 32), wantErr: false},
		{name: "empty", login: "", wantErr: true},
		{name: "too short", login: "ab", wantErr: true},
		{name: "too long", login: strings.Repeat("a", 33), wantErr: true},
		{name: "space", login: "ad min", wantErr: true},
		{name: "unicode", login: "адмін", wantErr: true},
		{name: "dash", login: "ad-min", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.login)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
