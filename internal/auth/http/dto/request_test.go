package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIssueTokenRequest_Validate(t *testing.T) {
	validID := uuid.Must(uuid.NewV7()).String()

	tests := []struct {
		name    string
		req     IssueTokenRequest
		wantErr bool
	}{
		{name: "Valid", req: IssueTokenRequest{ClientID: validID, ClientSecret: "bps_secret"}},
		{name: "MissingClientID", req: IssueTokenRequest{ClientSecret: "bps_secret"}, wantErr: true},
		{name: "InvalidClientID", req: IssueTokenRequest{ClientID: "client-1", ClientSecret: "x"}, wantErr: true},
		{name: "MissingSecret", req: IssueTokenRequest{ClientID: validID}, wantErr: true},
		{name: "BlankSecret", req: IssueTokenRequest{ClientID: validID, ClientSecret: "   "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIssueTokenRequest_ToInput(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	req := IssueTokenRequest{ClientID: id.String(), ClientSecret: "bps_secret"}

	input := req.ToInput()

	assert.Equal(t, id, input.ClientID)
	assert.Equal(t, "bps_secret", input.ClientSecret)
}
