package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amberfield/storefront-client/internal/gateway"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
)

// Payment methods the gateway accepts.
const (
	PaymentCreditCard     = "credit_card"
	PaymentPaypal         = "paypal"
	PaymentBankTransfer   = "bank_transfer"
	PaymentCashOnDelivery = "cod"
)

// Form collects the shipping and payment details for an order. Only
// address line 2 and notes are optional.
type Form struct {
	ShippingName         string `json:"shipping_name" validate:"required"`
	ShippingAddressLine1 string `json:"shipping_address_line1" validate:"required"`
	ShippingAddressLine2 string `json:"shipping_address_line2"`
	ShippingCity         string `json:"shipping_city" validate:"required"`
	ShippingState        string `json:"shipping_state" validate:"required"`
	ShippingPostalCode   string `json:"shipping_postal_code" validate:"required"`
	ShippingCountry      string `json:"shipping_country" validate:"required"`
	ShippingPhone        string `json:"shipping_phone" validate:"required"`
	PaymentMethod        string `json:"payment_method" validate:"required,oneof=credit_card paypal bank_transfer cod"`
	Notes                string `json:"notes"`
}

// NewForm returns an empty form with the default payment method
// preselected, matching what the UI shows.
func NewForm() *Form {
	return &Form{PaymentMethod: PaymentCreditCard}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the required fields and returns a VALIDATION_ERROR
// with per-field details when any are blank.
func (f *Form) Validate() error {
	trimmed := *f
	trimmed.trimSpace()
	if err := validate.Struct(&trimmed); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func (f *Form) trimSpace() {
	f.ShippingName = strings.TrimSpace(f.ShippingName)
	f.ShippingAddressLine1 = strings.TrimSpace(f.ShippingAddressLine1)
	f.ShippingCity = strings.TrimSpace(f.ShippingCity)
	f.ShippingState = strings.TrimSpace(f.ShippingState)
	f.ShippingPostalCode = strings.TrimSpace(f.ShippingPostalCode)
	f.ShippingCountry = strings.TrimSpace(f.ShippingCountry)
	f.ShippingPhone = strings.TrimSpace(f.ShippingPhone)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
}

// SetField mutates one field by its json name, the shape UI bindings
// deliver input in. No validation happens until submit.
func (f *Form) SetField(name, value string) error {
	switch name {
	case "shipping_name":
		f.ShippingName = value
	case "shipping_address_line1":
		f.ShippingAddressLine1 = value
	case "shipping_address_line2":
		f.ShippingAddressLine2 = value
	case "shipping_city":
		f.ShippingCity = value
	case "shipping_state":
		f.ShippingState = value
	case "shipping_postal_code":
		f.ShippingPostalCode = value
	case "shipping_country":
		f.ShippingCountry = value
	case "shipping_phone":
		f.ShippingPhone = value
	case "payment_method":
		f.PaymentMethod = value
	case "notes":
		f.Notes = value
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown field %q", name))
	}
	return nil
}

func (f *Form) orderInput() gateway.CreateOrderInput {
	return gateway.CreateOrderInput{
		ShippingName:         f.ShippingName,
		ShippingAddressLine1: f.ShippingAddressLine1,
		ShippingAddressLine2: f.ShippingAddressLine2,
		ShippingCity:         f.ShippingCity,
		ShippingState:        f.ShippingState,
		ShippingPostalCode:   f.ShippingPostalCode,
		ShippingCountry:      f.ShippingCountry,
		ShippingPhone:        f.ShippingPhone,
		PaymentMethod:        f.PaymentMethod,
		Notes:                f.Notes,
	}
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout form is incomplete").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout form is invalid")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "is invalid"
}
