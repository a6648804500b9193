package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"booking-service/internal/domain"
	"booking-service/internal/validator"
)

func TestReserveRequest_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		req     ReserveRequest
		wantErr bool
	}{
		{name: "optimistic", req: ReserveRequest{UserID: 1, Strategy: "optimistic"}},
		{name: "pessimistic", req: ReserveRequest{UserID: 1, Strategy: "pessimistic"}},
		{name: "default strategy", req: ReserveRequest{UserID: 1}},
		{name: "missing user", req: ReserveRequest{Strategy: "optimistic"}, wantErr: true},
		{name: "negative user", req: ReserveRequest{UserID: -5}, wantErr: true},
		{name: "unknown strategy", req: ReserveRequest{UserID: 1, Strategy: "eventual"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReserveRequest_StrategyOrDefault(t *testing.T) {
	assert.Equal(t, domain.StrategyOptimistic, (&ReserveRequest{}).StrategyOrDefault())
	assert.Equal(t, domain.StrategyPessimistic, (&ReserveRequest{Strategy: "pessimistic"}).StrategyOrDefault())
}
