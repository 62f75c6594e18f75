package validate

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/borderops/ingestor/internal/rowmap"
	"github.com/borderops/ingestor/internal/store"
)

// Error codes, matching spec §4.7/§7.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeDateValidationFailed = "DATE_VALIDATION_FAILED"
	CodeInvalidNumericValue  = "INVALID_NUMERIC_VALUE"
	CodeNumericValidation    = "NUMERIC_VALIDATION_FAILED"
)

// Validate applies rules to rows, returning the rows that passed every
// check and the error records for the ones that didn't. A row with any
// error is excluded from valid entirely (all-or-nothing per row); multiple
// errors on the same row are all reported.
func Validate(rows []rowmap.CanonicalRow, fileID pgtype.UUID, rules *Rules) ([]rowmap.CanonicalRow, []store.InsertValidationErrorParams) {
	if rules == nil {
		rules = Default()
	}

	var valid []rowmap.CanonicalRow
	var errs []store.InsertValidationErrorParams

	for _, row := range rows {
		rowErrs := validateRow(row, fileID, rules)
		if len(rowErrs) == 0 {
			valid = append(valid, row)
		} else {
			errs = append(errs, rowErrs...)
		}
	}
	return valid, errs
}

func validateRow(row rowmap.CanonicalRow, fileID pgtype.UUID, rules *Rules) []store.InsertValidationErrorParams {
	var errs []store.InsertValidationErrorParams
	rowIndex := int32(row.RowNumber - 1)

	for _, field := range rules.RequiredFields {
		if _, present := fieldValue(row, field); !present {
			errs = append(errs, store.InsertValidationErrorParams{
				FileID:       fileID,
				RowIndex:     rowIndex,
				ErrorCode:    CodeRequiredFieldMissing,
				ErrorMessage: field + " is required",
				FieldName:    store.NewText(field),
				FieldValue:   pgtype.Text{},
				RuleName:     "required_field",
			})
		}
	}

	for _, dr := range rules.DateRules {
		inception, hasInception := fieldDate(row, dr.InceptionField)
		expiry, hasExpiry := fieldDate(row, dr.ExpiryField)
		if !hasInception || !hasExpiry {
			continue
		}
		if inception.After(expiry) {
			errs = append(errs, store.InsertValidationErrorParams{
				FileID:       fileID,
				RowIndex:     rowIndex,
				ErrorCode:    CodeDateValidationFailed,
				ErrorMessage: dr.Message,
				FieldName:    store.NewText(dr.InceptionField),
				FieldValue:   store.NewText(inception.Format("2006-01-02")),
				RuleName:     dr.Name,
			})
		}
	}

	for _, nr := range rules.NumericRules {
		v := floatPtr(row, nr.Field)
		if v == nil {
			continue
		}
		f := *v
		if nr.MinValue != nil && f < *nr.MinValue {
			errs = append(errs, numericError(fileID, rowIndex, nr, f))
			continue
		}
		if nr.MaxValue != nil && f > *nr.MaxValue {
			errs = append(errs, numericError(fileID, rowIndex, nr, f))
		}
	}

	return errs
}

func numericError(fileID pgtype.UUID, rowIndex int32, nr NumericRule, f float64) store.InsertValidationErrorParams {
	return store.InsertValidationErrorParams{
		FileID:       fileID,
		RowIndex:     rowIndex,
		ErrorCode:    CodeNumericValidation,
		ErrorMessage: nr.Message,
		FieldName:    store.NewText(nr.Field),
		FieldValue:   store.NewText(strconv.FormatFloat(f, 'f', -1, 64)),
		RuleName:     nr.Name,
	}
}
