// Package validator provides rule-based request validation with field-level
// error reporting. Rules are plain values, so request handlers can compose a
// validation pass inline:
//
//	if err := validator.Apply(
//		validator.RequiredString("email", req.Email),
//		validator.ValidEmail("email", req.Email),
//		validator.MinLenString("password", req.Password, 8),
//	); err != nil {
//		// err is validator.ValidationErrors
//	}
package validator
