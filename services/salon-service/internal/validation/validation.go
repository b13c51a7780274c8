package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldNote  = "note"

	MaxNameLength = 50
	MaxNoteLength = 500
)

const (
	msgNameRequired  = "お名前を入力してください"
	msgNameTooLong   = "お名前は50文字以内で入力してください"
	msgPhoneRequired = "電話番号を入力してください"
	msgPhoneFormat   = "電話番号の形式が正しくありません"
	msgNoteTooLong   = "備考は500文字以内で入力してください"
)

// Japanese landline or mobile number, hyphens optional.
var phonePattern = regexp.MustCompile(`^0\d{1,4}-?\d{1,4}-?\d{3,4}$`)

// FieldErrors maps a form field to its first failing message.
type FieldErrors map[string]string

// Err flattens the errors for logging; nil when there are none.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return errors.New("invalid customer: " + strings.Join(parts, "; "))
}

// ValidateCustomer checks every field and reports all failing ones together.
func ValidateCustomer(c model.Customer) FieldErrors {
	errs := FieldErrors{}

	switch {
	case c.Name == "":
		errs[FieldName] = msgNameRequired
	case utf8.RuneCountInString(c.Name) > MaxNameLength:
		errs[FieldName] = msgNameTooLong
	}

	switch {
	case c.Phone == "":
		errs[FieldPhone] = msgPhoneRequired
	case !phonePattern.MatchString(c.Phone):
		errs[FieldPhone] = msgPhoneFormat
	}

	if utf8.RuneCountInString(c.Note) > MaxNoteLength {
		errs[FieldNote] = msgNoteTooLong
	}
	return errs
}

// HasErrors reports whether the booking must be held back. A note that is too
// long is shown to the customer but does not block confirmation.
func HasErrors(errs FieldErrors) bool {
	return errs[FieldName] != "" || errs[FieldPhone] != ""
}
