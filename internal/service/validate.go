package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/summerbooks/backend/internal/domain"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// Recipient validation bounds. Lengths are counted in runes so accented
// Vietnamese characters count as one.
const (
	nameMinLen    = 5
	nameMaxLen    = 50
	addressMinLen = 10
	addressMaxLen = 100
	phoneLen      = 10
)

var (
	namePattern    = regexp.MustCompile(`^[\p{L} ]+$`)
	addressPattern = regexp.MustCompile(`^[\p{L}\p{N} ,./]+$`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// Error codes and product-facing messages for recipient validation. The
// Vietnamese text is asserted on by storefront clients; the codes are the
// stable machine contract.
var (
	ErrEmptyCart = apperrors.FieldError("CART_EMPTY", apperrors.FieldCart,
		"Giỏ hàng trống")
	ErrLineQuantity = apperrors.FieldError("CART_ITEM_QUANTITY", apperrors.FieldCart,
		"Số lượng sản phẩm không hợp lệ")
	ErrLinePrice = apperrors.FieldError("CART_ITEM_PRICE", apperrors.FieldCart,
		"Đơn giá sản phẩm không hợp lệ")

	ErrNameRequired = apperrors.FieldError("NAME_REQUIRED", apperrors.FieldName,
		"Vui lòng nhập họ tên")
	ErrNameFormat = apperrors.FieldError("NAME_FORMAT", apperrors.FieldName,
		"Họ tên chỉ được chứa chữ cái và khoảng trắng")
	ErrNameLength = apperrors.FieldError("NAME_LENGTH", apperrors.FieldName,
		"Họ tên phải từ 5 đến 50 ký tự")

	ErrPhoneRequired = apperrors.FieldError("PHONE_REQUIRED", apperrors.FieldPhone,
		"Vui lòng nhập số điện thoại")
	ErrPhoneFormat = apperrors.FieldError("PHONE_FORMAT", apperrors.FieldPhone,
		"Số điện thoại chỉ được chứa chữ số")
	ErrPhoneLength = apperrors.FieldError("PHONE_LENGTH", apperrors.FieldPhone,
		"Số điện thoại phải có đúng 10 chữ số")
	ErrPhonePrefix = apperrors.FieldError("PHONE_PREFIX", apperrors.FieldPhone,
		"Số điện thoại phải bắt đầu bằng số 0")

	ErrAddressRequired = apperrors.FieldError("ADDRESS_REQUIRED", apperrors.FieldAddress,
		"Vui lòng nhập địa chỉ")
	ErrAddressFormat = apperrors.FieldError("ADDRESS_FORMAT", apperrors.FieldAddress,
		"Địa chỉ chứa ký tự không hợp lệ")
	ErrAddressLength = apperrors.FieldError("ADDRESS_LENGTH", apperrors.FieldAddress,
		"Địa chỉ phải từ 10 đến 100 ký tự")
)

// ValidateRecipient checks the delivery contact against the storefront's
// format rules. Pure function, first failure wins, rules run in a fixed
// order so clients always see the same message for the same input.
func ValidateRecipient(r domain.Recipient) error {
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		return ErrNameRequired
	case !namePattern.MatchString(name):
		return ErrNameFormat
	case utf8.RuneCountInString(name) < nameMinLen || utf8.RuneCountInString(name) > nameMaxLen:
		return ErrNameLength
	}

	phone := strings.TrimSpace(r.Phone)
	switch {
	case phone == "":
		return ErrPhoneRequired
	case !digitsPattern.MatchString(phone):
		return ErrPhoneFormat
	case len(phone) != phoneLen:
		return ErrPhoneLength
	case phone[0] != '0':
		return ErrPhonePrefix
	}

	address := strings.TrimSpace(r.Address)
	switch {
	case address == "":
		return ErrAddressRequired
	case !addressPattern.MatchString(address):
		return ErrAddressFormat
	case utf8.RuneCountInString(address) < addressMinLen || utf8.RuneCountInString(address) > addressMaxLen:
		return ErrAddressLength
	}

	return nil
}

// ValidateCheckout runs the full pre-checkout validation: cart non-empty
// first, then every line well-formed, then the recipient rules. Line prices
// and quantities arrive from the client as cart snapshots, so they are not
// trusted; a quantity below one or a negative price would otherwise surface
// only as a constraint violation deep in the commit transaction.
func ValidateCheckout(lines []domain.CartLine, r domain.Recipient) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range lines {
		switch {
		case line.Quantity < 1:
			return ErrLineQuantity
		case line.UnitPrice < 0:
			return ErrLinePrice
		}
	}
	return ValidateRecipient(r)
}

// NormalizeRecipient trims the surrounding whitespace the validator ignores,
// so the stored order carries exactly what was validated.
func NormalizeRecipient(r domain.Recipient) domain.Recipient {
	return domain.Recipient{
		Name:    strings.TrimSpace(r.Name),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
	}
}
