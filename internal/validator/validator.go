// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"firedues/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("payment_type", validatePaymentType)
		_ = v.RegisterValidation("allocation_mode", validateAllocationMode)
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("money_nonneg", validateNonNegativeMoney)
	}
}

func validatePaymentType(fl validator.FieldLevel) bool {
	return models.PaymentType(fl.Field().String()).Valid()
}

func validateAllocationMode(fl validator.FieldLevel) bool {
	return models.AllocationMode(fl.Field().String()).Valid()
}

// validateMoney accepts a positive decimal string with at most two places.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := parseMoney(fl.Field().String())
	return ok && d.IsPositive()
}

func validateNonNegativeMoney(fl validator.FieldLevel) bool {
	d, ok := parseMoney(fl.Field().String())
	return ok && !d.IsNegative()
}

func parseMoney(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, d.Equal(d.Round(2))
}
