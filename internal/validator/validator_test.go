package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type paymentForm struct {
	Amount string `binding:"required,money"`
	Fee    string `binding:"omitempty,money_nonneg"`
	Type   string `binding:"omitempty,payment_type"`
	Mode   string `binding:"omitempty,allocation_mode"`
}

func TestRegister(t *testing.T) {
	Register()

	tests := []struct {
		name  string
		form  paymentForm
		valid bool
	}{
		{"whole_amount", paymentForm{Amount: "100"}, true},
		{"cents", paymentForm{Amount: "33.33"}, true},
		{"trailing_zero", paymentForm{Amount: "12.500"}, true},
		{"three_places", paymentForm{Amount: "10.005"}, false},
		{"zero", paymentForm{Amount: "0"}, false},
		{"negative", paymentForm{Amount: "-5"}, false},
		{"not_a_number", paymentForm{Amount: "ten"}, false},
		{"zero_fee", paymentForm{Amount: "1", Fee: "0"}, true},
		{"negative_fee", paymentForm{Amount: "1", Fee: "-1"}, false},
		{"known_type", paymentForm{Amount: "1", Type: "check"}, true},
		{"unknown_type", paymentForm{Amount: "1", Type: "barter"}, false},
		{"single_mode", paymentForm{Amount: "1", Mode: "single_assessment"}, true},
		{"unknown_mode", paymentForm{Amount: "1", Mode: "round_robin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
