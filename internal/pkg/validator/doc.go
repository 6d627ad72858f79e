// Package validator validates request structs through struct tags.
//
// Use cases depend on the Validator interface; V10Validator implements it with
// go-playground/validator v10 and English messages keyed by snake_case field names.
package validator
