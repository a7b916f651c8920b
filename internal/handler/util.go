package handler

import (
	"github.com/labstack/echo/v4"
)

// requiredFieldErrors builds the per-field validation error map. Fields
// that are present still appear with an empty list, matching the shape
// clients already consume.
func requiredFieldErrors(missing map[string]bool) echo.Map {
	errs := echo.Map{}
	for field, isMissing := range missing {
		if isMissing {
			errs[field] = []echo.Map{{"message": "this field is required", "code": "required"}}
		} else {
			errs[field] = []echo.Map{}
		}
	}
	return errs
}
