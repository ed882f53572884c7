// Package validation checks user-entered form fields before they reach the
// store. The store itself does not enforce these formats.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-Z\s]{2,}$`)
	skuPattern      = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
)

// FormErrors maps a field name to its message. Empty means valid.
type FormErrors map[string]string

func (e FormErrors) Valid() bool {
	return len(e) == 0
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidateFullName accepts two or more ASCII letters and spaces.
func ValidateFullName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 2 && fullNamePattern.MatchString(name)
}

func ValidateSKU(sku string) bool {
	return skuPattern.MatchString(strings.TrimSpace(sku))
}

func ValidateProductName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 2
}

// ValidatePrice requires a positive decimal.
func ValidatePrice(price string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// ValidateQuantity requires a non-negative integer.
func ValidateQuantity(quantity string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(quantity))
	return err == nil && n >= 0
}

func UserForm(email, fullName string) FormErrors {
	errs := FormErrors{}

	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "Email is required"
	case !ValidateEmail(email):
		errs["email"] = "Please enter a valid email address"
	}

	switch {
	case strings.TrimSpace(fullName) == "":
		errs["fullName"] = "Full name is required"
	case !ValidateFullName(fullName):
		errs["fullName"] = "Full name must be at least 2 characters and contain only letters"
	}

	return errs
}

func ProductForm(sku, name, price, quantity string) FormErrors {
	errs := FormErrors{}

	switch {
	case strings.TrimSpace(sku) == "":
		errs["sku"] = "SKU is required"
	case !ValidateSKU(sku):
		errs["sku"] = "SKU must be 3-20 alphanumeric characters"
	}

	switch {
	case strings.TrimSpace(name) == "":
		errs["name"] = "Product name is required"
	case !ValidateProductName(name):
		errs["name"] = "Product name must be at least 2 characters"
	}

	switch {
	case strings.TrimSpace(price) == "":
		errs["price"] = "Price is required"
	case !ValidatePrice(price):
		errs["price"] = "Price must be a positive number"
	}

	switch {
	case strings.TrimSpace(quantity) == "":
		errs["quantity"] = "Quantity is required"
	case !ValidateQuantity(quantity):
		errs["quantity"] = "Quantity must be a non-negative integer"
	}

	return errs
}
